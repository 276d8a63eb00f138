package eventbus

import (
	"sync"
	"time"

	evbus "github.com/asaskevich/EventBus"
)

// AsyncEventBus fans events out to a fixed worker pool so publishers never
// block on slow subscribers.
type AsyncEventBus struct {
	bus       evbus.Bus
	workerNum int
	workChan  chan asyncEvent
	stopChan  chan struct{}
	wg        sync.WaitGroup
}

type asyncEvent struct {
	topic   string
	args    []interface{}
	handler func(args ...interface{})
}

// NewAsyncEventBus creates an async bus with the given worker count.
func NewAsyncEventBus(workerNum int) *AsyncEventBus {
	if workerNum <= 0 {
		workerNum = 4
	}

	return &AsyncEventBus{
		bus:       evbus.New(),
		workerNum: workerNum,
		workChan:  make(chan asyncEvent, 1000),
		stopChan:  make(chan struct{}),
	}
}

// Start launches the worker pool.
func (aeb *AsyncEventBus) Start() {
	for i := 0; i < aeb.workerNum; i++ {
		aeb.wg.Add(1)
		go aeb.worker()
	}
}

// Stop drains the workers and waits for them to exit.
func (aeb *AsyncEventBus) Stop() {
	close(aeb.stopChan)
	aeb.wg.Wait()
}

func (aeb *AsyncEventBus) worker() {
	defer aeb.wg.Done()

	for {
		select {
		case <-aeb.stopChan:
			return
		case event := <-aeb.workChan:
			func() {
				defer func() {
					// a panicking subscriber must not take the worker down
					_ = recover()
				}()
				event.handler(event.args...)
			}()
		}
	}
}

// Publish delivers the event synchronously.
func (aeb *AsyncEventBus) Publish(topic string, args ...interface{}) {
	aeb.bus.Publish(topic, args...)
}

// PublishAsync queues the event for the worker pool. When the queue is full
// the event is dropped; lifecycle events are advisory, not load-bearing.
func (aeb *AsyncEventBus) PublishAsync(topic string, args ...interface{}) {
	select {
	case aeb.workChan <- asyncEvent{
		topic: topic,
		args:  args,
		handler: func(args ...interface{}) {
			aeb.bus.Publish(topic, args...)
		},
	}:
	default:
	}
}

// Subscribe registers a handler for the topic.
func (aeb *AsyncEventBus) Subscribe(topic string, fn interface{}) error {
	return aeb.bus.Subscribe(topic, fn)
}

// SubscribeAsync registers a handler for events queued via PublishAsync.
func (aeb *AsyncEventBus) SubscribeAsync(topic string, fn interface{}) error {
	return aeb.bus.Subscribe(topic, fn)
}

// Unsubscribe removes a previously registered handler.
func (aeb *AsyncEventBus) Unsubscribe(topic string, handler interface{}) error {
	return aeb.bus.Unsubscribe(topic, handler)
}

// HasCallback reports whether the topic has subscribers.
func (aeb *AsyncEventBus) HasCallback(topic string) bool {
	return aeb.bus.HasCallback(topic)
}

// WaitAsync gives queued events a moment to drain (test helper).
func (aeb *AsyncEventBus) WaitAsync() {
	time.Sleep(100 * time.Millisecond)
}
