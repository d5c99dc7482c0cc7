package jobs

import (
	"context"
	"hash/fnv"
	"log/slog"
	"sync"
	"time"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/model/adjustment"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/metrics"
)

const (
	// maxStoredResults bounds the in-memory result window clients can poll.
	maxStoredResults = 256

	// defaultAdjustmentWorkers is how many routes can be adjusted
	// concurrently.
	defaultAdjustmentWorkers = 4
)

// AdjustmentEngine processes real-time adjustment requests. Requests are
// sharded by route: everything targeting the same route lands on the same
// worker and runs in arrival order to completion, while different routes
// proceed concurrently. Requests without an explicit route shard by order
// id; the handler locks whatever route they resolve to, so their mutations
// stay serialized with explicitly targeted requests.
//
// Results are kept for the last maxStoredResults requests so callers can
// poll the outcome of an accepted request.
type AdjustmentEngine struct {
	handler commands.ApplyAdjustmentCommandHandler
	metrics *metrics.Metrics
	logger  *slog.Logger

	mu          sync.Mutex
	queues      [][]adjustment.Request
	depth       int
	results     map[kernel.UUID]adjustment.Result
	resultOrder []kernel.UUID

	wake []chan struct{}
	stop chan struct{}
	wg   sync.WaitGroup
}

// NewAdjustmentEngine creates the engine around the adjustment handler.
func NewAdjustmentEngine(
	handler commands.ApplyAdjustmentCommandHandler,
	m *metrics.Metrics,
	logger *slog.Logger,
) *AdjustmentEngine {
	if logger == nil {
		logger = slog.Default()
	}

	wake := make([]chan struct{}, defaultAdjustmentWorkers)
	for i := range wake {
		wake[i] = make(chan struct{}, 1)
	}

	return &AdjustmentEngine{
		handler: handler,
		metrics: m,
		logger:  logger.With("component", "adjustment_engine"),
		queues:  make([][]adjustment.Request, defaultAdjustmentWorkers),
		results: make(map[kernel.UUID]adjustment.Result),
		wake:    wake,
		stop:    make(chan struct{}),
	}
}

// Submit enqueues a request for processing and returns immediately. The
// request keeps its arrival position within its shard regardless of its
// priority field.
func (e *AdjustmentEngine) Submit(req adjustment.Request) error {
	if err := req.Validate(); err != nil {
		return err
	}

	shard := e.shardOf(req)

	e.mu.Lock()
	e.queues[shard] = append(e.queues[shard], req)
	e.depth++
	depth := e.depth
	e.mu.Unlock()

	if e.metrics != nil {
		e.metrics.AdjustmentQueueDepth.Set(float64(depth))
	}

	select {
	case e.wake[shard] <- struct{}{}:
	default:
	}
	return nil
}

// Result returns the stored outcome for a request, if it was processed
// recently enough to still be in the window.
func (e *AdjustmentEngine) Result(requestID kernel.UUID) (adjustment.Result, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	r, ok := e.results[requestID]
	return r, ok
}

// QueueDepth reports how many requests are waiting across all shards.
func (e *AdjustmentEngine) QueueDepth() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.depth
}

// Start launches the worker goroutines.
func (e *AdjustmentEngine) Start() {
	for shard := range e.queues {
		e.wg.Add(1)
		go e.run(shard)
	}
	e.logger.Info("adjustment engine started", "workers", len(e.queues))
}

// Stop signals the workers and waits for in-flight requests to finish.
// Queued requests that were not reached are discarded.
func (e *AdjustmentEngine) Stop() {
	close(e.stop)
	e.wg.Wait()
	e.logger.Info("adjustment engine stopped")
}

// shardOf maps a request onto a worker. The route id keys the shard so
// requests for one route run in arrival order; auto-resolved requests key
// by order id and serialize against their route in the handler.
func (e *AdjustmentEngine) shardOf(req adjustment.Request) int {
	var key kernel.UUID
	switch {
	case req.RouteID() != nil:
		key = *req.RouteID()
	case req.OrderID() != nil:
		key = *req.OrderID()
	default:
		key = req.ID()
	}

	h := fnv.New32a()
	_, _ = h.Write([]byte(key.String()))
	return int(h.Sum32()) % len(e.queues)
}

func (e *AdjustmentEngine) run(shard int) {
	defer e.wg.Done()
	for {
		req, ok := e.next(shard)
		if !ok {
			select {
			case <-e.wake[shard]:
				continue
			case <-e.stop:
				return
			}
		}

		e.process(req)

		select {
		case <-e.stop:
			return
		default:
		}
	}
}

func (e *AdjustmentEngine) next(shard int) (adjustment.Request, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(e.queues[shard]) == 0 {
		return adjustment.Request{}, false
	}
	req := e.queues[shard][0]
	e.queues[shard] = e.queues[shard][1:]
	e.depth--

	if e.metrics != nil {
		e.metrics.AdjustmentQueueDepth.Set(float64(e.depth))
	}
	return req, true
}

func (e *AdjustmentEngine) process(req adjustment.Request) {
	ctx := context.Background()
	started := time.Now()

	cmd, err := commands.NewApplyAdjustmentCommand(req)
	var result adjustment.Result
	if err == nil {
		result, err = e.handler.Handle(ctx, cmd)
	}

	elapsed := time.Since(started)
	if err != nil {
		e.logger.ErrorContext(ctx, "adjustment processing failed",
			"requestId", req.ID().String(), "type", string(req.Kind()), "error", err)
		result = adjustment.Failure(req.ID(), "internal error: %v", err)
	}

	e.observe(req, result, err, elapsed)
	e.store(result)

	e.logger.InfoContext(ctx, "adjustment processed",
		"requestId", req.ID().String(),
		"type", string(req.Kind()),
		"success", result.Success,
		"message", result.Message,
		"elapsed", elapsed)
}

func (e *AdjustmentEngine) observe(
	req adjustment.Request,
	result adjustment.Result,
	err error,
	elapsed time.Duration,
) {
	if e.metrics == nil {
		return
	}

	outcome := "applied"
	switch {
	case err != nil:
		outcome = "error"
	case !result.Success:
		outcome = "rejected"
	}

	e.metrics.AdjustmentsProcessed.WithLabelValues(string(req.Kind()), outcome).Inc()
	e.metrics.AdjustmentDuration.WithLabelValues(string(req.Kind())).Observe(elapsed.Seconds())
}

func (e *AdjustmentEngine) store(result adjustment.Result) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.results[result.RequestID]; !exists {
		e.resultOrder = append(e.resultOrder, result.RequestID)
	}
	e.results[result.RequestID] = result

	for len(e.resultOrder) > maxStoredResults {
		delete(e.results, e.resultOrder[0])
		e.resultOrder = e.resultOrder[1:]
	}
}
