package eventbus

import (
	"sync"
)

var (
	asyncBus *AsyncEventBus
	once     sync.Once
)

// GetAsync returns the process-wide asynchronous event bus, starting its
// worker pool on first use.
func GetAsync() *AsyncEventBus {
	once.Do(func() {
		asyncBus = NewAsyncEventBus(4)
		asyncBus.Start()
	})
	return asyncBus
}

// Shutdown stops the async workers.
func Shutdown() {
	if asyncBus != nil {
		asyncBus.Stop()
	}
}
