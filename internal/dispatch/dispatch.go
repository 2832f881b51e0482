// Package dispatch runs the engine's single logical control thread.
//
// Every mutation of the shared object graph happens on one goroutine that
// drains a task queue. I/O callbacks (catalog fetches, tag reads) post
// their completions here instead of touching the graph directly, which is
// what makes the aggregates' bookkeeping "atomic" without locks: no two
// core tasks ever interleave.
package dispatch

import (
	"context"
	"errors"
	"log/slog"
	"runtime/debug"
	"sync"

	"tagger/internal/logging"
)

// ErrStopped is returned when posting to a loop that has shut down.
var ErrStopped = errors.New("dispatch loop stopped")

// Loop is a single-goroutine task executor. Tasks run in submission
// order; a panicking task is recovered and logged, never propagated.
type Loop struct {
	logger *slog.Logger

	mu      sync.Mutex
	queue   []func()
	wake    chan struct{}
	running bool
	stopped bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// New constructs an idle loop. Call Start before posting work.
func New(logger *slog.Logger) *Loop {
	return &Loop{
		logger: logging.NewComponentLogger(logger, "dispatch"),
		wake:   make(chan struct{}, 1),
	}
}

// Start begins draining the queue on a background goroutine.
func (l *Loop) Start(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.running {
		return errors.New("dispatch loop already running")
	}
	if l.stopped {
		return ErrStopped
	}
	runCtx, cancel := context.WithCancel(ctx)
	l.cancel = cancel
	l.running = true
	l.wg.Add(1)
	go l.run(runCtx)
	return nil
}

// Stop terminates the loop after the current task and waits for it to
// exit. Tasks still queued when the run goroutine exits are executed on
// the caller's goroutine before Stop returns, so cleanup work and
// PostWait callers racing with shutdown are never stranded.
func (l *Loop) Stop() {
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		return
	}
	cancel := l.cancel
	wasRunning := l.running
	l.running = false
	l.stopped = true
	l.cancel = nil
	l.mu.Unlock()

	if wasRunning {
		cancel()
		l.wg.Wait()
	}
	// stopped is set, so Post cannot add to the queue anymore.
	for task := l.next(); task != nil; task = l.next() {
		l.invoke(task)
	}
}

// Post queues fn for execution on the control goroutine.
func (l *Loop) Post(fn func()) error {
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		return ErrStopped
	}
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
	return nil
}

// PostWait queues fn and blocks until it has run. It must not be called
// from the control goroutine itself.
func (l *Loop) PostWait(fn func()) error {
	done := make(chan struct{})
	if err := l.Post(func() {
		defer close(done)
		fn()
	}); err != nil {
		return err
	}
	<-done
	return nil
}

func (l *Loop) run(ctx context.Context) {
	defer l.wg.Done()
	for {
		task := l.next()
		if task == nil {
			select {
			case <-ctx.Done():
				return
			case <-l.wake:
				continue
			}
		}
		l.invoke(task)
		select {
		case <-ctx.Done():
			return
		default:
		}
	}
}

func (l *Loop) next() func() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.queue) == 0 {
		return nil
	}
	task := l.queue[0]
	l.queue = l.queue[1:]
	return task
}

func (l *Loop) invoke(task func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("task panicked",
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())),
			)
		}
	}()
	task()
}
