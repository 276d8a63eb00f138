package bootstrap

import (
	"context"
	"testing"

	"facegate-server-go/internal/domain/eventbus"
	platformconfig "facegate-server-go/internal/platform/config"
)

func TestInitGraphBuildsGateway(t *testing.T) {
	cfg := platformconfig.DefaultConfig()
	cfg.Log.Dir = t.TempDir()

	state := &appState{config: cfg}
	ctx := context.Background()

	steps := []func(context.Context, *appState) error{
		initLoggerStep,
		initEventBusStep,
		initProviderStep,
		initGatewayStep,
	}
	for i, step := range steps {
		if err := step(ctx, state); err != nil {
			t.Fatalf("init step %d: %v", i, err)
		}
	}

	if state.gateway == nil {
		t.Fatal("gateway not initialised")
	}
	if state.providerName != "faceapi" {
		t.Errorf("providerName = %q, want faceapi from defaults", state.providerName)
	}
	if state.gateway.ProviderName() != "faceapi" {
		t.Errorf("gateway provider = %q, want faceapi", state.gateway.ProviderName())
	}
	for _, topic := range []string{
		eventbus.EventVerificationCompressed,
		eventbus.EventCompressionDetail,
	} {
		if !state.bus.HasCallback(topic) {
			t.Errorf("no listener on %s after event bus init", topic)
		}
	}

	state.bus.Stop()
	state.logger.Close()
}

func TestInitGraphStepOrder(t *testing.T) {
	steps := initGraph()
	want := []string{"config:load", "logging:init", "events:init", "provider:init", "gateway:init"}
	if len(steps) != len(want) {
		t.Fatalf("got %d steps, want %d", len(steps), len(want))
	}
	for i, id := range want {
		if steps[i].ID != id {
			t.Errorf("step %d = %s, want %s", i, steps[i].ID, id)
		}
	}
}
