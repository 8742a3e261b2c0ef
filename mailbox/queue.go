// Package mailbox implements the per-mailbox message queue and the
// dispatcher that sits above it: delivery of transport messages with
// link/monitor side effects, and teardown with exit broadcast.
package mailbox

import (
	"context"
	"sync"
	"time"

	"github.com/Comcast/sheens/transport"
)

// Handler processes one dequeued message. msg is nil and ok is false
// on timeout or cancellation. The return value controls re-arming:
// true re-arms for up to repeatCount-1 further deliveries, false ends
// the async_dequeue call.
type Handler func(msg *transport.Message, ok bool) bool

// Unlimited, passed as repeatCount, re-arms an async_dequeue
// indefinitely until its handler returns false.
const Unlimited = -1

// Queue is a single-consumer, multi-producer FIFO of transport
// messages with an asynchronous dequeue API. Messages are delivered
// in enqueue order; a handler runs to completion before the next
// delivery.
type Queue struct {
	mu     sync.Mutex
	items  []*transport.Message
	signal chan struct{}

	dequeuing bool
	cancel    chan struct{}
}

// NewQueue returns an empty Queue.
func NewQueue() *Queue {
	return &Queue{signal: make(chan struct{})}
}

// IsDequeuing reports whether an AsyncDequeue consumer is currently
// registered.
func (q *Queue) IsDequeuing() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.dequeuing
}

// Enqueue appends msg to the tail of the queue. Non-blocking.
func (q *Queue) Enqueue(msg *transport.Message) {
	q.mu.Lock()
	q.items = append(q.items, msg)
	q.wakeLocked()
	q.mu.Unlock()
}

// wakeLocked must be called with q.mu held; it signals any waiter
// blocked in AsyncDequeue that queue state has changed.
func (q *Queue) wakeLocked() {
	close(q.signal)
	q.signal = make(chan struct{})
}

func (q *Queue) popFrontLocked() (*transport.Message, bool) {
	if len(q.items) == 0 {
		return nil, false
	}
	msg := q.items[0]
	q.items = q.items[1:]
	return msg, true
}

// Reset cancels any pending AsyncDequeue (delivering a cancellation to
// its handler) and drops every queued message.
func (q *Queue) Reset() {
	q.mu.Lock()
	q.items = nil
	cancel := q.cancel
	q.cancel = nil
	q.dequeuing = false
	q.wakeLocked()
	q.mu.Unlock()
	if cancel != nil {
		close(cancel)
	}
}

// AsyncDequeue registers handler as the queue's consumer. It runs in
// its own goroutine; handler invocations are serialized and each runs
// to completion before the next. timeout of zero means no deadline.
// repeatCount of Unlimited re-arms forever; otherwise handler may run
// at most repeatCount times before AsyncDequeue stops on its own.
//
// Only one AsyncDequeue may be outstanding on a Queue at a time,
// matching the single-consumer contract; a second call while one is
// active replaces the first, whose handler then observes a
// cancellation.
func (q *Queue) AsyncDequeue(ctx context.Context, handler Handler, timeout time.Duration, repeatCount int) {
	q.mu.Lock()
	if q.cancel != nil {
		close(q.cancel)
	}
	myCancel := make(chan struct{})
	q.cancel = myCancel
	q.dequeuing = true
	q.mu.Unlock()

	go q.run(ctx, handler, timeout, repeatCount, myCancel)
}

func (q *Queue) run(ctx context.Context, handler Handler, timeout time.Duration, repeatCount int, myCancel chan struct{}) {
	attemptsLeft := repeatCount
	for {
		q.mu.Lock()
		msg, ok := q.popFrontLocked()
		sig := q.signal
		q.mu.Unlock()

		var cont bool
		if ok {
			cont = handler(msg, true)
		} else {
			var timeoutCh <-chan time.Time
			var timer *time.Timer
			if timeout > 0 {
				timer = time.NewTimer(timeout)
				timeoutCh = timer.C
			}
			select {
			case <-sig:
				if timer != nil {
					timer.Stop()
				}
				continue
			case <-myCancel:
				if timer != nil {
					timer.Stop()
				}
				handler(nil, false)
				return
			case <-ctx.Done():
				if timer != nil {
					timer.Stop()
				}
				handler(nil, false)
				q.finish(myCancel)
				return
			case <-timeoutCh:
				cont = handler(nil, false)
			}
		}

		if !cont {
			q.finish(myCancel)
			return
		}
		if repeatCount != Unlimited {
			attemptsLeft--
			if attemptsLeft <= 0 {
				q.finish(myCancel)
				return
			}
		}
	}
}

func (q *Queue) finish(myCancel chan struct{}) {
	q.mu.Lock()
	if q.cancel == myCancel {
		q.cancel = nil
		q.dequeuing = false
	}
	q.mu.Unlock()
}
