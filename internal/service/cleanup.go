package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/raphaelgruber/voicejournal/internal/blob"
)

// TaskStatus is the state of a background cleanup.
type TaskStatus string

const (
	TaskStatusRunning   TaskStatus = "running"
	TaskStatusCompleted TaskStatus = "completed"
	TaskStatusFailed    TaskStatus = "failed"
)

// BlobRef addresses an object in the blob store.
type BlobRef struct {
	Bucket string `json:"bucket"`
	Path   string `json:"path"`
}

// CleanupTask is a one-shot deletion of temporary audio. It runs detached
// from the request that started it.
type CleanupTask struct {
	Ref BlobRef

	mu     sync.RWMutex
	status TaskStatus
	err    error
	done   chan struct{}
}

// Done is closed when the deletion attempt has finished.
func (t *CleanupTask) Done() <-chan struct{} { return t.done }

// Wait blocks until the deletion finished or ctx ends, and returns the
// deletion error.
func (t *CleanupTask) Wait(ctx context.Context) error {
	select {
	case <-t.done:
		return t.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Status returns the current state.
func (t *CleanupTask) Status() TaskStatus {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.status
}

// Err returns the deletion error once the task is done.
func (t *CleanupTask) Err() error {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.err
}

func (t *CleanupTask) finish(err error) {
	t.mu.Lock()
	t.err = err
	if err != nil {
		t.status = TaskStatusFailed
	} else {
		t.status = TaskStatusCompleted
	}
	t.mu.Unlock()
	close(t.done)
}

// cleanupTracker runs cleanup tasks and lets shutdown wait for stragglers.
type cleanupTracker struct {
	blobs   blob.Store
	timeout time.Duration
	wg      sync.WaitGroup
}

// start deletes ref in a new goroutine. The caller's cancellation does not
// stop the deletion; it is bounded by the tracker timeout instead.
func (c *cleanupTracker) start(ctx context.Context, ref BlobRef) *CleanupTask {
	task := &CleanupTask{Ref: ref, status: TaskStatusRunning, done: make(chan struct{})}
	ctx = context.WithoutCancel(ctx)

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		ctx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()

		start := time.Now()
		err := c.blobs.Delete(ctx, ref.Bucket, ref.Path)
		if err != nil {
			slog.Warn("failed to delete temporary audio", "bucket", ref.Bucket, "path", ref.Path,
				"duration_ms", time.Since(start).Milliseconds(), "error", err)
		} else {
			slog.Debug("temporary audio deleted", "bucket", ref.Bucket, "path", ref.Path)
		}
		task.finish(err)
	}()
	return task
}

// wait blocks until all started tasks finish or ctx ends.
func (c *cleanupTracker) wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
