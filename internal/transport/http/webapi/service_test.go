package webapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	service, err := NewService("faceapi", nil)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	engine := gin.New()
	if err := service.Register(context.Background(), engine.Group("/api")); err != nil {
		t.Fatalf("Register: %v", err)
	}
	return engine
}

func TestHealth(t *testing.T) {
	router := newTestRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["status"] != "healthy" {
		t.Errorf("status = %q, want healthy", body["status"])
	}
	if body["mode"] != "faceapi" {
		t.Errorf("mode = %q, want faceapi", body["mode"])
	}
	if _, err := time.Parse(time.RFC3339, body["timestamp"]); err != nil {
		t.Errorf("timestamp %q is not RFC3339: %v", body["timestamp"], err)
	}
}

func TestSystem(t *testing.T) {
	router := newTestRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/system", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["success"] != true {
		t.Error("success = false")
	}
	data, ok := body["data"].(map[string]interface{})
	if !ok {
		t.Fatalf("data = %v", body["data"])
	}
	if data["provider_mode"] != "faceapi" {
		t.Errorf("provider_mode = %v, want faceapi", data["provider_mode"])
	}
}

func TestNewServiceRequiresMode(t *testing.T) {
	if _, err := NewService("", nil); err == nil {
		t.Fatal("expected error for empty provider mode")
	}
}
