package engine

import (
	"context"
	"errors"
	"sync"

	"github.com/syou6162/diffchunk/internal/logger"
	"github.com/syou6162/diffchunk/internal/model"
)

// Result is the outcome of a Controller request. Err is context.Canceled
// when the request was superseded or cancelled, which is distinct from an
// empty diff.
type Result struct {
	DocID string
	Diff  model.FileDiff
	Err   error
}

type job struct {
	seq    uint64
	cancel context.CancelFunc
}

// Controller runs at most one diff per document. A new request for a
// document cancels the one in flight.
type Controller struct {
	mu     sync.Mutex
	jobs   map[string]*job
	seq    uint64
	wg     sync.WaitGroup
	logger *logger.Logger

	compute func(context.Context, FileInput, Options) (model.FileDiff, error)
}

// NewController creates a controller
func NewController(log *logger.Logger) *Controller {
	if log == nil {
		log = logger.NewFromEnv()
	}
	return &Controller{
		jobs:    make(map[string]*job),
		logger:  log.Named("controller"),
		compute: ComputeFileDiff,
	}
}

// Request starts diffing in for docID. The returned channel receives
// exactly one Result and is then closed.
func (c *Controller) Request(ctx context.Context, docID string, in FileInput, opts Options) <-chan Result {
	jobCtx, cancel := context.WithCancel(ctx)

	c.mu.Lock()
	if prev, ok := c.jobs[docID]; ok {
		c.logger.Debug("superseding request %d for %s", prev.seq, docID)
		prev.cancel()
	}
	c.seq++
	j := &job{seq: c.seq, cancel: cancel}
	c.jobs[docID] = j
	c.mu.Unlock()

	out := make(chan Result, 1)
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer close(out)
		defer cancel()

		fd, err := c.compute(jobCtx, in, opts)

		c.mu.Lock()
		current := c.jobs[docID] == j
		if current {
			delete(c.jobs, docID)
		}
		c.mu.Unlock()

		if err == nil && !current {
			err = context.Canceled
		}
		if err != nil {
			if errors.Is(err, context.Canceled) {
				c.logger.Debug("request %d for %s cancelled", j.seq, docID)
			}
			out <- Result{DocID: docID, Err: err}
			return
		}
		c.logger.Debug("request %d for %s done: %d chunks", j.seq, docID, len(fd.Chunks))
		out <- Result{DocID: docID, Diff: fd}
	}()
	return out
}

// Cancel stops the computation for docID. It reports whether one was
// running.
func (c *Controller) Cancel(docID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	j, ok := c.jobs[docID]
	if !ok {
		return false
	}
	j.cancel()
	delete(c.jobs, docID)
	return true
}

// CancelAll stops every computation
func (c *Controller) CancelAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for id, j := range c.jobs {
		j.cancel()
		delete(c.jobs, id)
	}
}

// Pending returns the number of documents with a computation in flight
func (c *Controller) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.jobs)
}

// Wait blocks until every started computation has delivered its result
func (c *Controller) Wait() {
	c.wg.Wait()
}
