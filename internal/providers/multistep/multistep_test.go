package multistep

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"facegate-server-go/internal/domain/image"
	"facegate-server-go/internal/platform/config"
	platerrors "facegate-server-go/internal/platform/errors"
	"facegate-server-go/internal/providers"
)

func testRequest() providers.Request {
	return providers.Request{
		IDImage:     &image.Compressed{Bytes: []byte("id-bytes"), Format: "jpeg"},
		SelfieImage: &image.Compressed{Bytes: []byte("selfie-bytes"), Format: "jpeg"},
		DocType:     "passport",
	}
}

func newProvider(t *testing.T, url string) providers.Provider {
	t.Helper()
	p, err := NewProvider("subjectkyc", config.ProviderConfig{
		Type:            config.ProviderTypeMultiStep,
		BaseURL:         url,
		APIKey:          "secret",
		Timeout:         5 * time.Second,
		DocTypeRequired: true,
	}, nil)
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}
	return p
}

func TestExecuteRunsStepsInOrder(t *testing.T) {
	var calls []string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.URL.Path)
		switch {
		case r.URL.Path == "/subjects":
			w.Write([]byte(`{"subject_id": "subj-9"}`))
		case strings.HasSuffix(r.URL.Path, "/selfie"):
			w.Write([]byte(`{"ok": true}`))
		case strings.HasSuffix(r.URL.Path, "/documents"):
			w.Write([]byte(`{"match_score": 84, "matched": true}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	p := newProvider(t, srv.URL)
	raw, err := p.Execute(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	want := []string{"/subjects", "/subjects/subj-9/selfie", "/subjects/subj-9/documents"}
	if len(calls) != len(want) {
		t.Fatalf("made %d calls %v, want %v", len(calls), calls, want)
	}
	for i := range want {
		if calls[i] != want[i] {
			t.Errorf("call %d = %s, want %s", i, calls[i], want[i])
		}
	}
	if raw.Payload["matched"] != true {
		t.Errorf("matched = %v, want true", raw.Payload["matched"])
	}
}

func TestExecuteAbortsWhenSelfieStepFails(t *testing.T) {
	var documentCalled bool

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/subjects":
			w.Write([]byte(`{"subject_id": "subj-9"}`))
		case strings.HasSuffix(r.URL.Path, "/selfie"):
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"error": "face not found in selfie"}`))
		case strings.HasSuffix(r.URL.Path, "/documents"):
			documentCalled = true
		}
	}))
	defer srv.Close()

	p := newProvider(t, srv.URL)
	_, err := p.Execute(context.Background(), testRequest())
	if err == nil {
		t.Fatal("expected error from selfie step")
	}
	if documentCalled {
		t.Error("document step ran after selfie step failed")
	}
	if got := platerrors.StatusOf(err); got != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", got)
	}
	if detail := platerrors.DetailOf(err); !strings.Contains(detail, "face not found") {
		t.Errorf("detail = %q, want selfie step body", detail)
	}
}

func TestExecuteFailsWhenSubjectIDMissing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"unexpected": "shape"}`))
	}))
	defer srv.Close()

	p := newProvider(t, srv.URL)
	_, err := p.Execute(context.Background(), testRequest())
	if err == nil {
		t.Fatal("expected error for missing subject id")
	}
	if !platerrors.IsKind(err, platerrors.KindParse) {
		t.Errorf("kind = %v, want parse", err)
	}
}

func TestRequiresDocType(t *testing.T) {
	p := newProvider(t, "http://example.com")
	if !p.RequiresDocType() {
		t.Error("RequiresDocType = false, want true")
	}
}
