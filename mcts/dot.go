package mcts

import (
	"fmt"
	"io"

	"github.com/awalterschulze/gographviz"
)

// DumpDOT renders the tree rooted at Root() as a Graphviz DOT graph, a
// debug aid for eyeballing search-quality regressions (visits, priors and
// proven status per edge) the way spec.md §4.7's "information leak"
// statistics are much easier to read as a picture than as text.
// gographviz's only prior appearance was an unimported go.mod entry; this
// is its first real use (see DESIGN.md).
func (t *Tree) DumpDOT(w io.Writer) error {
	graph := gographviz.NewGraph()
	if err := graph.SetName("mcts"); err != nil {
		return err
	}
	if err := graph.SetDir(true); err != nil {
		return err
	}
	if !t.root.IsValid() {
		_, err := io.WriteString(w, graph.String())
		return err
	}
	if err := t.dumpNode(graph, t.root, 0); err != nil {
		return err
	}
	_, err := io.WriteString(w, graph.String())
	return err
}

func nodeName(n Naughty) string { return fmt.Sprintf("n%d", int(n)) }

func (t *Tree) dumpNode(graph *gographviz.Graph, n Naughty, depth int) error {
	if depth > 64 {
		return nil
	}
	node := t.NodeFromNaughty(n)
	label := fmt.Sprintf("\"%v visits=%d q=%.3f p=%.3f proven=%v\"",
		node.Move(), node.Visits(), node.QSA(), node.PSA(), node.Proven())
	if err := graph.AddNode("mcts", nodeName(n), map[string]string{"label": label}); err != nil {
		return err
	}
	for _, kid := range t.Children(n) {
		if !t.NodeFromNaughty(kid).IsValid() {
			continue
		}
		if err := t.dumpNode(graph, kid, depth+1); err != nil {
			return err
		}
		if err := graph.AddEdge(nodeName(n), nodeName(kid), true, nil); err != nil {
			return err
		}
	}
	return nil
}
