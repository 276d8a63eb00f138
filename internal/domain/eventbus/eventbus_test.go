package eventbus

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestAsyncPublishDelivers(t *testing.T) {
	bus := NewAsyncEventBus(2)
	bus.Start()
	defer bus.Stop()

	var got atomic.Int32
	err := bus.SubscribeAsync(EventVerificationReceived, func(data VerificationEventData) {
		if data.RequestID == "req-1" {
			got.Add(1)
		}
	})
	if err != nil {
		t.Fatalf("SubscribeAsync: %v", err)
	}

	bus.PublishAsync(EventVerificationReceived, VerificationEventData{
		RequestID: "req-1",
		Stage:     "received",
	})

	deadline := time.Now().Add(2 * time.Second)
	for got.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if got.Load() != 1 {
		t.Fatalf("handler ran %d times, want 1", got.Load())
	}
}

func TestHasCallback(t *testing.T) {
	bus := NewAsyncEventBus(1)
	bus.Start()
	defer bus.Stop()

	if bus.HasCallback(EventVerificationErrored) {
		t.Error("HasCallback = true before subscribing")
	}
	if err := bus.Subscribe(EventVerificationErrored, func(data VerificationEventData) {}); err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	if !bus.HasCallback(EventVerificationErrored) {
		t.Error("HasCallback = false after subscribing")
	}
}

// The gateway publishes VerificationEventData on every stage topic,
// including the compressed stage, and CompressionEventData only on the
// detail topic. A handler whose parameter type disagrees with the payload
// panics inside the worker and the event is lost, so the listener wiring
// and the publish sites must agree per topic.
func TestCompressedTopicsCarryMatchingPayloads(t *testing.T) {
	bus := NewAsyncEventBus(2)
	bus.Start()
	defer bus.Stop()

	if err := NewLoggingListener(nil).Register(bus); err != nil {
		t.Fatalf("Register: %v", err)
	}

	var stage, detail atomic.Int32
	if err := bus.SubscribeAsync(EventVerificationCompressed, func(data VerificationEventData) {
		stage.Add(1)
	}); err != nil {
		t.Fatalf("SubscribeAsync(compressed): %v", err)
	}
	if err := bus.SubscribeAsync(EventCompressionDetail, func(data CompressionEventData) {
		detail.Add(1)
	}); err != nil {
		t.Fatalf("SubscribeAsync(detail): %v", err)
	}

	bus.PublishAsync(EventVerificationCompressed, VerificationEventData{
		RequestID: "req-2",
		Stage:     "compressed",
	})
	bus.PublishAsync(EventCompressionDetail, CompressionEventData{
		RequestID:    "req-2",
		Label:        "selfie",
		OriginalSize: 2048,
		EncodedSize:  512,
		QualityUsed:  70,
	})

	deadline := time.Now().Add(2 * time.Second)
	for (stage.Load() == 0 || detail.Load() == 0) && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if stage.Load() != 1 {
		t.Errorf("compressed stage handler ran %d times, want 1", stage.Load())
	}
	if detail.Load() != 1 {
		t.Errorf("compression detail handler ran %d times, want 1", detail.Load())
	}
}

func TestLoggingListenerRegisters(t *testing.T) {
	bus := NewAsyncEventBus(1)
	bus.Start()
	defer bus.Stop()

	if err := NewLoggingListener(nil).Register(bus); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if !bus.HasCallback(EventVerificationErrored) {
		t.Error("errored topic has no listener after Register")
	}
}
