package nn

import (
	"sync"
	"time"

	"github.com/renjuzero/engine/game"
	"gonum.org/v1/gonum/stat"
)

// Evaluator batches concurrent Infer calls from many MCTS search workers
// into fewer forward passes, the role Agent.inferer's channel pool played
// (agent.go's SwitchToInference/Infer), generalized from a fixed pool of
// pre-warmed Inferer values to a single shared Network plus an adaptive
// wait window (spec.md §4.8's "adaptive batch size").
type Evaluator struct {
	net       *Network
	maxBatch  int
	maxWait   time.Duration
	requests  chan evalRequest
	closeOnce sync.Once
	done      chan struct{}

	mu        sync.Mutex
	latencies []float64 // rolling window of per-batch latencies, seconds
}

type evalRequest struct {
	pos   *game.Position
	reply chan evalResult
}

type evalResult struct {
	policy []float32
	value  float32
}

// NewEvaluator starts a background batching loop over net. maxBatch caps
// how many positions are folded into one forward pass; maxWait bounds how
// long a request waits for siblings to arrive before the batch is flushed
// anyway, so a lone search worker never stalls waiting for company.
func NewEvaluator(net *Network, maxBatch int, maxWait time.Duration) *Evaluator {
	if maxBatch < 1 {
		maxBatch = 1
	}
	e := &Evaluator{
		net:      net,
		maxBatch: maxBatch,
		maxWait:  maxWait,
		requests: make(chan evalRequest, maxBatch*4),
		done:     make(chan struct{}),
	}
	go e.loop()
	return e
}

// Infer implements mcts.Inferencer by submitting pos to the batching loop
// and blocking for its result.
func (e *Evaluator) Infer(pos *game.Position) (policy []float32, value float32) {
	reply := make(chan evalResult, 1)
	e.requests <- evalRequest{pos: pos, reply: reply}
	res := <-reply
	return res.policy, res.value
}

// Close stops the batching loop. In-flight requests already queued are
// still served before shutdown.
func (e *Evaluator) Close() error {
	e.closeOnce.Do(func() { close(e.done) })
	return nil
}

func (e *Evaluator) loop() {
	var pending []evalRequest
	timer := time.NewTimer(e.adaptiveWait())
	defer timer.Stop()
	for {
		select {
		case req := <-e.requests:
			pending = append(pending, req)
			if len(pending) >= e.maxBatch {
				e.flush(pending)
				pending = nil
				timer.Reset(e.adaptiveWait())
			}
		case <-timer.C:
			if len(pending) > 0 {
				e.flush(pending)
				pending = nil
			}
			timer.Reset(e.adaptiveWait())
		case <-e.done:
			for len(e.requests) > 0 {
				pending = append(pending, <-e.requests)
			}
			if len(pending) > 0 {
				e.flush(pending)
			}
			return
		}
	}
}

func (e *Evaluator) flush(batch []evalRequest) {
	start := time.Now()
	for _, req := range batch {
		policy, value := e.net.Infer(req.pos)
		req.reply <- evalResult{policy: policy, value: value}
	}
	e.recordLatency(time.Since(start).Seconds())
}

func (e *Evaluator) recordLatency(seconds float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.latencies = append(e.latencies, seconds)
	if len(e.latencies) > 64 {
		e.latencies = e.latencies[len(e.latencies)-64:]
	}
}

// adaptiveWait sets the flush timeout to the mean recent batch latency
// (gonum/stat.Mean over the rolling latency window), capped at maxWait, so
// the timeout shortens when inference is fast and lengthens up to maxWait
// as it slows. Until four batches have been timed it is maxWait.
func (e *Evaluator) adaptiveWait() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.latencies) < 4 {
		return e.maxWait
	}
	mean := stat.Mean(e.latencies, nil)
	wait := e.maxWait
	if mean > 0 {
		scaled := time.Duration(mean * float64(time.Second))
		if scaled < wait {
			wait = scaled
		}
	}
	if wait <= 0 {
		wait = time.Millisecond
	}
	return wait
}
