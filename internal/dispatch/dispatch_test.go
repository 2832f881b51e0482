package dispatch

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"tagger/internal/logging"
)

func newLoop(t *testing.T) *Loop {
	t.Helper()
	l := New(logging.NewNop())
	if err := l.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	t.Cleanup(l.Stop)
	return l
}

func TestPostRunsInOrder(t *testing.T) {
	l := newLoop(t)

	var mu sync.Mutex
	var got []int
	for i := 0; i < 20; i++ {
		i := i
		if err := l.Post(func() {
			mu.Lock()
			got = append(got, i)
			mu.Unlock()
		}); err != nil {
			t.Fatalf("post: %v", err)
		}
	}
	if err := l.PostWait(func() {}); err != nil {
		t.Fatalf("postwait: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 20 {
		t.Fatalf("ran %d tasks, want 20", len(got))
	}
	for i, v := range got {
		if v != i {
			t.Fatalf("task %d ran out of order (got %d)", i, v)
		}
	}
}

func TestPostWaitBlocksUntilRun(t *testing.T) {
	l := newLoop(t)
	ran := false
	if err := l.PostWait(func() { ran = true }); err != nil {
		t.Fatalf("postwait: %v", err)
	}
	if !ran {
		t.Fatal("PostWait returned before the task ran")
	}
}

func TestPanicIsRecovered(t *testing.T) {
	l := newLoop(t)
	if err := l.PostWait(func() { panic("kaboom") }); err != nil {
		t.Fatalf("postwait: %v", err)
	}
	// The loop must survive and keep serving tasks.
	ran := false
	if err := l.PostWait(func() { ran = true }); err != nil {
		t.Fatalf("postwait after panic: %v", err)
	}
	if !ran {
		t.Fatal("loop stopped serving after a panic")
	}
}

func TestPostAfterStop(t *testing.T) {
	l := New(logging.NewNop())
	if err := l.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	l.Stop()
	if err := l.Post(func() {}); !errors.Is(err, ErrStopped) {
		t.Fatalf("post after stop = %v, want ErrStopped", err)
	}
	if err := l.PostWait(func() {}); !errors.Is(err, ErrStopped) {
		t.Fatalf("postwait after stop = %v, want ErrStopped", err)
	}
}

func TestDoubleStart(t *testing.T) {
	l := New(logging.NewNop())
	if err := l.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer l.Stop()
	if err := l.Start(context.Background()); err == nil {
		t.Fatal("second Start should fail")
	}
}

func TestStopRunsQueuedTasks(t *testing.T) {
	l := New(logging.NewNop())
	if err := l.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}

	// Hold the loop on a blocking task so the next posts stay queued.
	started := make(chan struct{})
	release := make(chan struct{})
	if err := l.Post(func() {
		close(started)
		<-release
	}); err != nil {
		t.Fatalf("post: %v", err)
	}
	<-started

	ran := false
	done := make(chan struct{})
	if err := l.Post(func() {
		ran = true
		close(done)
	}); err != nil {
		t.Fatalf("post: %v", err)
	}

	stopped := make(chan struct{})
	go func() {
		l.Stop()
		close(stopped)
	}()
	time.Sleep(10 * time.Millisecond)
	close(release)
	<-stopped

	select {
	case <-done:
	default:
		t.Fatal("Stop discarded a queued task")
	}
	if !ran {
		t.Fatal("queued task did not run during shutdown")
	}
}

func TestPostWaitDuringStop(t *testing.T) {
	l := New(logging.NewNop())
	if err := l.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}

	started := make(chan struct{})
	release := make(chan struct{})
	if err := l.Post(func() {
		close(started)
		<-release
	}); err != nil {
		t.Fatalf("post: %v", err)
	}
	<-started

	waited := make(chan error, 1)
	go func() {
		waited <- l.PostWait(func() {})
	}()
	time.Sleep(10 * time.Millisecond)

	stopped := make(chan struct{})
	go func() {
		l.Stop()
		close(stopped)
	}()
	time.Sleep(10 * time.Millisecond)
	close(release)
	<-stopped

	// Whether the task ran on the loop, ran during shutdown, or was
	// rejected outright, PostWait must return.
	select {
	case err := <-waited:
		if err != nil && !errors.Is(err, ErrStopped) {
			t.Fatalf("postwait: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("PostWait never returned after Stop")
	}
}

func TestStopDrainsWithoutStart(t *testing.T) {
	l := New(logging.NewNop())
	ran := false
	if err := l.Post(func() { ran = true }); err != nil {
		t.Fatalf("post: %v", err)
	}
	l.Stop()
	if !ran {
		t.Fatal("task queued before Start was lost on Stop")
	}
}

func TestStopIsIdempotent(t *testing.T) {
	l := New(logging.NewNop())
	if err := l.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	l.Stop()
	l.Stop()
}
