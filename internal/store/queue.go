package store

import (
	"context"
	"sync"
	"time"
)

// SaveFunc persists note content.
type SaveFunc func(ctx context.Context, content string) error

// SaveResultFunc receives the outcome of a queued save.
type SaveResultFunc func(content string, err error)

// SaveQueue runs note saves on a single goroutine. A save pushed while
// another is running replaces any save still waiting, so the newest content
// is always written last.
type SaveQueue struct {
	save    SaveFunc
	result  SaveResultFunc
	timeout time.Duration

	mu      sync.Mutex
	pending *string
	closed  bool

	wake chan struct{}
	quit chan struct{}
	done chan struct{}
}

// NewSaveQueue starts a queue. result may be nil. Each save gets its own
// context bounded by timeout.
func NewSaveQueue(save SaveFunc, result SaveResultFunc, timeout time.Duration) *SaveQueue {
	q := &SaveQueue{
		save:    save,
		result:  result,
		timeout: timeout,
		wake:    make(chan struct{}, 1),
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go q.run()
	return q
}

// Push queues content for saving. It never blocks.
func (q *SaveQueue) Push(content string) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.pending = &content
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// Close writes any pending content and stops the queue.
func (q *SaveQueue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	q.mu.Unlock()

	close(q.quit)
	<-q.done
}

func (q *SaveQueue) run() {
	defer close(q.done)
	for {
		select {
		case <-q.wake:
			q.drain()
		case <-q.quit:
			q.drain()
			return
		}
	}
}

func (q *SaveQueue) drain() {
	for {
		q.mu.Lock()
		next := q.pending
		q.pending = nil
		q.mu.Unlock()
		if next == nil {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
		err := q.save(ctx, *next)
		cancel()

		if q.result != nil {
			q.result(*next, err)
		}
	}
}
