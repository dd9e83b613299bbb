package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"logicdoc/internal/core/ports"
	"logicdoc/internal/data/history"
	"logicdoc/internal/data/queue"
	"logicdoc/internal/shared/observability"
)

const (
	historyBatchSize     = 8
	historyFlushInterval = 250 * time.Millisecond
)

// recordRun hands run to the history worker. Without a queue the run is
// written inline; a full queue drops it with a warning.
func (a *App) recordRun(run history.Run) {
	if a.history == nil {
		return
	}
	if a.historyQueue == nil {
		a.applyHistoryBatch(context.Background(), []history.Run{run})
		return
	}
	if a.historyQueue.Enqueue(run) == ports.EnqueueDropped {
		observability.HistoryWritesTotal.WithLabelValues("dropped").Inc()
		slog.Warn("history queue full, dropping run record", "run_id", run.ID)
	}
	a.updateQueueMetrics()
}

func (a *App) startHistoryWorker() {
	if a.historyQueue == nil || a.workerCancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.workerCancel = cancel
	a.workerDone = make(chan struct{})
	go a.runHistoryWorker(ctx)
}

func (a *App) runHistoryWorker(ctx context.Context) {
	defer close(a.workerDone)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		batch, err := a.historyQueue.DequeueBatch(ctx, historyBatchSize, historyFlushInterval)
		if errors.Is(err, context.Canceled) {
			return
		}
		if err != nil && !errors.Is(err, io.EOF) {
			slog.Warn("history queue dequeue failed", "error", err)
			continue
		}
		if len(batch) > 0 {
			a.applyHistoryBatch(ctx, batch)
		}
		a.updateQueueMetrics()
		if errors.Is(err, io.EOF) {
			return
		}
	}
}

// applyHistoryBatch persists runs and then prunes runs older than the
// configured retention.
func (a *App) applyHistoryBatch(ctx context.Context, runs []history.Run) {
	ctx = context.WithoutCancel(ctx)
	for _, run := range runs {
		if _, err := a.history.RecordRun(ctx, run); err != nil {
			observability.HistoryWritesTotal.WithLabelValues("error").Inc()
			slog.Warn("failed to record run", "run_id", run.ID, "error", err)
			continue
		}
		observability.HistoryWritesTotal.WithLabelValues("ok").Inc()
	}

	if retention := a.currentConfig().DB.Retention; retention > 0 {
		cutoff := a.now().Add(-retention)
		removed, err := a.history.Prune(ctx, cutoff)
		if err != nil {
			slog.Warn("failed to prune history", "cutoff", cutoff, "error", err)
			return
		}
		if removed > 0 {
			slog.Debug("pruned history runs", "removed", removed, "cutoff", cutoff)
		}
	}
}

func (a *App) stopHistoryWorker(ctx context.Context) error {
	if a.workerCancel != nil {
		a.workerCancel()
		a.workerCancel = nil
	}
	if a.workerDone != nil {
		select {
		case <-a.workerDone:
		case <-ctx.Done():
			return ctx.Err()
		}
		a.workerDone = nil
	}
	if err := a.drainHistoryQueue(ctx); err != nil {
		return err
	}
	if a.historyQueue != nil {
		if err := a.historyQueue.Close(); err != nil {
			return err
		}
		a.historyQueue = nil
	}
	return nil
}

func (a *App) drainHistoryQueue(ctx context.Context) error {
	if a.historyQueue == nil || a.history == nil {
		return nil
	}
	for {
		batch, err := a.historyQueue.DequeueBatch(ctx, historyBatchSize, 0)
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		if len(batch) == 0 {
			return nil
		}
		a.applyHistoryBatch(ctx, batch)
	}
}

func (a *App) updateQueueMetrics() {
	if mq, ok := a.historyQueue.(*queue.MemoryQueue); ok {
		observability.HistoryQueueDepth.Set(float64(mq.Len()))
	}
}
