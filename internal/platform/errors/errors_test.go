package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestWrapPreservesTypedError(t *testing.T) {
	inner := New(KindValidation, "gateway:validate", "missing selfie image")
	wrapped := Wrap(KindProvider, "gateway:verify", "verify failed", inner)

	if wrapped.Kind != KindValidation {
		t.Errorf("expected inner kind to survive wrapping, got %s", wrapped.Kind)
	}
}

func TestWrapNilReturnsNil(t *testing.T) {
	if err := Wrap(KindProvider, "op", "msg", nil); err != nil {
		t.Errorf("expected nil, got %v", err)
	}
}

func TestIsKind(t *testing.T) {
	err := fmt.Errorf("outer: %w", New(KindTimeout, "asyncpoll:poll", "poll budget exhausted"))

	if !IsKind(err, KindTimeout) {
		t.Error("expected timeout kind to be detected through wrapping")
	}
	if IsKind(err, KindValidation) {
		t.Error("did not expect validation kind")
	}
	if IsKind(nil, KindTimeout) {
		t.Error("nil error should never match a kind")
	}
}

func TestStatusOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", New(KindValidation, "op", "bad input"), http.StatusBadRequest},
		{"config", New(KindConfig, "op", "missing api key"), http.StatusInternalServerError},
		{"timeout", New(KindTimeout, "op", "poll budget exhausted"), http.StatusGatewayTimeout},
		{"provider with upstream status", NewUpstream("op", "upstream failed", 422, `{"error":"bad doc"}`), 422},
		{"provider without upstream status", New(KindProvider, "op", "connection refused"), http.StatusInternalServerError},
		{"untyped", errors.New("plain error"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StatusOf(tt.err); got != tt.want {
				t.Errorf("StatusOf() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestDetailOf(t *testing.T) {
	err := NewUpstream("multistep:attach-selfie", "selfie upload failed", 500, `{"message":"boom"}`)
	if got := DetailOf(err); got != `{"message":"boom"}` {
		t.Errorf("DetailOf() = %q", got)
	}
	if got := DetailOf(errors.New("plain")); got != "" {
		t.Errorf("expected empty detail, got %q", got)
	}
}
