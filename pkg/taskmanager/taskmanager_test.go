package taskmanager

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmit_CompletesWithResult(t *testing.T) {
	tm := New(Config{})

	task, err := tm.Submit(context.Background(), "sum", func(ctx context.Context) (any, error) {
		return 42, nil
	})
	require.NoError(t, err)

	res, err := task.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42, res)
	assert.Equal(t, TaskStatusCompleted, task.Status())

	got, err := tm.GetTask(task.ID)
	require.NoError(t, err)
	assert.Same(t, task, got)
}

func TestSubmit_FailureAndPanic(t *testing.T) {
	tm := New(Config{})
	boom := errors.New("boom")

	failed, err := tm.Submit(context.Background(), "fail", func(ctx context.Context) (any, error) {
		return nil, boom
	})
	require.NoError(t, err)
	_, err = failed.Wait(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, TaskStatusFailed, failed.Status())

	panicked, err := tm.Submit(context.Background(), "panic", func(ctx context.Context) (any, error) {
		panic("oops")
	})
	require.NoError(t, err)
	_, err = panicked.Wait(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "oops")
}

func TestSubmit_DetachedFromCallerCancellation(t *testing.T) {
	tm := New(Config{})
	ctx, cancel := context.WithCancel(context.Background())

	release := make(chan struct{})
	task, err := tm.Submit(ctx, "slow", func(taskCtx context.Context) (any, error) {
		<-release
		return taskCtx.Err(), nil
	})
	require.NoError(t, err)

	cancel()
	close(release)

	res, err := task.Wait(context.Background())
	require.NoError(t, err)
	assert.Nil(t, res)
}

func TestTaskWait_ContextOnlyStopsWaiting(t *testing.T) {
	tm := New(Config{})
	release := make(chan struct{})
	var finished atomic.Bool

	task, err := tm.Submit(context.Background(), "slow", func(ctx context.Context) (any, error) {
		<-release
		finished.Store(true)
		return nil, nil
	})
	require.NoError(t, err)

	waitCtx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = task.Wait(waitCtx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	close(release)
	require.NoError(t, tm.Wait(context.Background()))
	assert.True(t, finished.Load())
}

func TestSubmit_MaxTasks(t *testing.T) {
	tm := New(Config{MaxTasks: 1})
	release := make(chan struct{})

	_, err := tm.Submit(context.Background(), "a", func(ctx context.Context) (any, error) {
		<-release
		return nil, nil
	})
	require.NoError(t, err)

	_, err = tm.Submit(context.Background(), "b", func(ctx context.Context) (any, error) { return nil, nil })
	assert.ErrorIs(t, err, ErrTooManyTasks)

	close(release)
	require.NoError(t, tm.Wait(context.Background()))

	_, err = tm.Submit(context.Background(), "c", func(ctx context.Context) (any, error) { return nil, nil })
	assert.NoError(t, err)
}

func TestShutdownAndCleanup(t *testing.T) {
	tm := New(Config{})
	task, err := tm.Submit(context.Background(), "quick", func(ctx context.Context) (any, error) { return "ok", nil })
	require.NoError(t, err)

	require.NoError(t, tm.Shutdown(context.Background()))
	_, err = tm.Submit(context.Background(), "late", func(ctx context.Context) (any, error) { return nil, nil })
	assert.ErrorIs(t, err, ErrClosed)

	tm.CleanupTasks(time.Hour)
	_, err = tm.GetTask(task.ID)
	assert.NoError(t, err)

	time.Sleep(2 * time.Millisecond)
	tm.CleanupTasks(time.Millisecond)
	_, err = tm.GetTask(task.ID)
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestWait_ConcurrentSubmit(t *testing.T) {
	tm := New(Config{MaxTasks: 100})
	var finished atomic.Int32

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				_, err := tm.Submit(context.Background(), "tick", func(ctx context.Context) (any, error) {
					time.Sleep(time.Millisecond)
					finished.Add(1)
					return nil, nil
				})
				assert.NoError(t, err)
				assert.NoError(t, tm.Wait(context.Background()))
			}
		}()
	}
	wg.Wait()

	require.NoError(t, tm.Wait(context.Background()))
	assert.Equal(t, int32(40), finished.Load())
}

func TestSubmit_PrunesExpiredTasks(t *testing.T) {
	tm := New(Config{Retention: time.Millisecond})

	first, err := tm.Submit(context.Background(), "first", func(ctx context.Context) (any, error) { return nil, nil })
	require.NoError(t, err)
	_, err = first.Wait(context.Background())
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)
	second, err := tm.Submit(context.Background(), "second", func(ctx context.Context) (any, error) { return nil, nil })
	require.NoError(t, err)

	_, err = tm.GetTask(first.ID)
	assert.ErrorIs(t, err, ErrTaskNotFound)
	_, err = tm.GetTask(second.ID)
	assert.NoError(t, err)

	time.Sleep(5 * time.Millisecond)
	require.NoError(t, tm.Wait(context.Background()))
	tm.mu.RLock()
	assert.Empty(t, tm.tasks, "Wait drops expired finished tasks")
	tm.mu.RUnlock()
}
