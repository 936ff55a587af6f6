package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHealthHandler_CheckHealth(t *testing.T) {
	h := NewHealthHandler()

	BindServiceHealth(func() bool { return true })
	defer BindServiceHealth(func() bool { return healthyFlag.Load() == 1 })

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	h.CheckHealth(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("unexpected status code: %d", w.Code)
	}
	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["status"] != "healthy" {
		t.Fatalf("expected healthy, got %v", body["status"])
	}
}

func TestHealthHandler_ReportsUnhealthy(t *testing.T) {
	h := NewHealthHandler()

	BindServiceHealth(func() bool { return false })
	defer BindServiceHealth(func() bool { return healthyFlag.Load() == 1 })

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	h.CheckHealth(w, req)

	// degraded health is reported in the body, not the status code
	if w.Code != http.StatusOK {
		t.Fatalf("unexpected status code: %d", w.Code)
	}
	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["status"] != "unhealthy" {
		t.Fatalf("expected unhealthy, got %v", body["status"])
	}
}

func TestHealthHandler_Home(t *testing.T) {
	h := NewHealthHandler()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	h.Home(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("unexpected status code: %d", w.Code)
	}
}
