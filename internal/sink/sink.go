// Package sink batches projected commands and replays them against a live
// target at a bounded rate.
//
// Grounded on the teacher's internal/replica/flow_writer.go (FlowWriter):
// a channel of pending work, a batch-or-timer flush loop, and a
// golang.org/x/time/rate limiter throttling writes. Trimmed from the
// teacher's per-flow/cluster-slot-routing design (maxConcurrentWrites
// semaphores, groupByNode, writeNodeBatch recursion) down to what a
// single decode-and-replay pass needs: one channel, one flush loop, one
// limiter, one redisx.Client.
package sink

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"snap2cmd/internal/logger"
	"snap2cmd/internal/redisx"
)

// Command is a single argv-style command group, mirroring rdb.Command
// without importing the core package (the sink only moves bytes, it
// never decodes anything).
type Command = [][]byte

// Config controls batching and pacing.
type Config struct {
	BatchSize     int
	FlushInterval time.Duration
	RatePerSecond int
}

// Writer batches commands arriving via Enqueue and flushes them to a
// redisx.Client, rate-limited, grounded on the teacher's
// batchWriteLoop/flushBatch.
type Writer struct {
	client  *redisx.Client
	cfg     Config
	limiter *rate.Limiter

	cmdCh  chan Command
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu           sync.Mutex
	totalWritten int64
	lastErr      error
}

// New constructs a Writer over client. A RatePerSecond of 0 disables
// throttling.
func New(client *redisx.Client, cfg Config) *Writer {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 256
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = 50 * time.Millisecond
	}
	var limiter *rate.Limiter
	if cfg.RatePerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSecond), cfg.RatePerSecond)
	}
	ctx, cancel := context.WithCancel(context.Background())
	w := &Writer{
		client:  client,
		cfg:     cfg,
		limiter: limiter,
		cmdCh:   make(chan Command, cfg.BatchSize*4),
		ctx:     ctx,
		cancel:  cancel,
	}
	w.wg.Add(1)
	go w.loop()
	return w
}

// Enqueue submits one command group for eventual replay.
func (w *Writer) Enqueue(cmd Command) {
	select {
	case w.cmdCh <- cmd:
	case <-w.ctx.Done():
	}
}

// Stop drains remaining commands and stops the flush loop.
func (w *Writer) Stop() {
	close(w.cmdCh)
	w.wg.Wait()
	w.cancel()
}

// Stats reports the total commands written and the last flush error, if any.
func (w *Writer) Stats() (written int64, lastErr error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.totalWritten, w.lastErr
}

func (w *Writer) loop() {
	defer w.wg.Done()
	ticker := time.NewTicker(w.cfg.FlushInterval)
	defer ticker.Stop()

	batch := make([]Command, 0, w.cfg.BatchSize)
	flush := func() {
		if len(batch) == 0 {
			return
		}
		w.flush(batch)
		batch = batch[:0]
	}

	for {
		select {
		case cmd, ok := <-w.cmdCh:
			if !ok {
				flush()
				return
			}
			batch = append(batch, cmd)
			if len(batch) >= w.cfg.BatchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		}
	}
}

func (w *Writer) flush(batch []Command) {
	if w.limiter != nil {
		if err := w.limiter.WaitN(w.ctx, len(batch)); err != nil {
			w.recordErr(err)
			return
		}
	}
	if err := w.client.Pipeline(w.ctx, batch); err != nil {
		logger.Error("sink: pipeline flush failed: %v", err)
		w.recordErr(err)
		return
	}
	w.mu.Lock()
	w.totalWritten += int64(len(batch))
	w.mu.Unlock()
}

func (w *Writer) recordErr(err error) {
	w.mu.Lock()
	w.lastErr = err
	w.mu.Unlock()
}
