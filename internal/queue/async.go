package queue

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrBufferFull is returned by AsyncPublisher.Publish when the buffer is
// full and the event was dropped.
var ErrBufferFull = errors.New("event buffer full")

// ErrPublisherClosed is returned after Close.
var ErrPublisherClosed = errors.New("publisher closed")

// AsyncPublisher queues events in a bounded buffer and hands them to the
// wrapped Publisher from a single goroutine.  Publish never waits on the
// broker.
type AsyncPublisher struct {
	next    Publisher
	events  chan Event
	timeout time.Duration
	log     *zap.Logger

	quit      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// NewAsyncPublisher starts the delivery goroutine.  timeout bounds each
// delivery attempt to next.
func NewAsyncPublisher(next Publisher, buffer int, timeout time.Duration, log *zap.Logger) *AsyncPublisher {
	if buffer < 1 {
		buffer = 1
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	a := &AsyncPublisher{
		next:    next,
		events:  make(chan Event, buffer),
		timeout: timeout,
		log:     log,
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go a.run()
	return a
}

// Publish enqueues ev.  It drops the event and returns ErrBufferFull when
// the buffer has no room.
func (a *AsyncPublisher) Publish(_ context.Context, ev Event) error {
	select {
	case <-a.quit:
		return ErrPublisherClosed
	default:
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}
	select {
	case a.events <- ev:
		return nil
	default:
		a.log.Warn("event dropped", zap.String("type", ev.Type), zap.String("username", ev.Username))
		return ErrBufferFull
	}
}

func (a *AsyncPublisher) run() {
	defer close(a.done)
	for {
		select {
		case ev := <-a.events:
			a.deliver(ev)
		case <-a.quit:
			for {
				select {
				case ev := <-a.events:
					a.deliver(ev)
				default:
					return
				}
			}
		}
	}
}

func (a *AsyncPublisher) deliver(ev Event) {
	ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
	defer cancel()
	if err := a.next.Publish(ctx, ev); err != nil {
		a.log.Warn("event publish failed", zap.String("type", ev.Type), zap.String("username", ev.Username), zap.Error(err))
	}
}

// Close stops accepting events and delivers what is already buffered.  It
// gives up when ctx ends first.
func (a *AsyncPublisher) Close(ctx context.Context) error {
	a.closeOnce.Do(func() { close(a.quit) })
	select {
	case <-a.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
