package metrics

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func resetHealthState() {
	mu.Lock()
	poolSnapshot = nil
	version = ""
	mu.Unlock()
}

func TestGetHealth_NoSnapshotRegistered(t *testing.T) {
	resetHealthState()

	health := GetHealth()

	if health.Status != "healthy" {
		t.Errorf("expected status 'healthy' with no snapshot registered, got '%s'", health.Status)
	}
	if health.Pool != nil {
		t.Error("expected no pool snapshot in the response")
	}
}

func TestGetHealth_WithinCapacity(t *testing.T) {
	resetHealthState()
	SetVersion("1.0.0")
	RegisterPoolSnapshot(func() PoolSnapshot {
		return PoolSnapshot{Free: 2, Busy: 1, Prewarmed: 3, Capacity: 4}
	})

	health := GetHealth()

	if health.Status != "healthy" {
		t.Errorf("expected status 'healthy', got '%s'", health.Status)
	}
	if health.Version != "1.0.0" {
		t.Errorf("expected version '1.0.0', got '%s'", health.Version)
	}
	if health.Pool == nil || health.Pool.Busy != 1 || health.Pool.Free != 2 {
		t.Errorf("expected pool snapshot to be reported verbatim, got %+v", health.Pool)
	}
}

func TestGetHealth_CapacityInvariantViolated(t *testing.T) {
	resetHealthState()
	RegisterPoolSnapshot(func() PoolSnapshot {
		return PoolSnapshot{Free: 3, Busy: 2, Prewarmed: 0, Capacity: 4}
	})

	health := GetHealth()

	if health.Status != "unhealthy" {
		t.Errorf("expected status 'unhealthy' when busy+free exceeds capacity, got '%s'", health.Status)
	}
}

func TestGetReadiness_NotReadyBeforeSnapshotRegistered(t *testing.T) {
	resetHealthState()

	readiness := GetReadiness()

	if readiness.Status != "not_ready" {
		t.Errorf("expected status 'not_ready', got '%s'", readiness.Status)
	}
	if readiness.Message == "" {
		t.Error("expected message explaining why not ready")
	}
}

func TestGetReadiness_ReadyOnceSnapshotRegistered(t *testing.T) {
	resetHealthState()
	RegisterPoolSnapshot(func() PoolSnapshot {
		return PoolSnapshot{Free: 0, Busy: 0, Prewarmed: 1, Capacity: 4}
	})

	readiness := GetReadiness()

	if readiness.Status != "ready" {
		t.Errorf("expected status 'ready', got '%s'", readiness.Status)
	}
}

func TestHealthHandler(t *testing.T) {
	resetHealthState()
	SetVersion("test")

	req := httptest.NewRequest("GET", "/healthz", nil)
	w := httptest.NewRecorder()

	handler := HealthHandler()
	handler(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}

	var health HealthStatus
	if err := json.NewDecoder(w.Body).Decode(&health); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if health.Status != "healthy" {
		t.Errorf("expected healthy status, got %s", health.Status)
	}
	if health.Version != "test" {
		t.Errorf("expected version 'test', got %s", health.Version)
	}
}

func TestHealthHandler_Unhealthy(t *testing.T) {
	resetHealthState()
	RegisterPoolSnapshot(func() PoolSnapshot {
		return PoolSnapshot{Free: 5, Busy: 5, Prewarmed: 0, Capacity: 4}
	})

	req := httptest.NewRequest("GET", "/healthz", nil)
	w := httptest.NewRecorder()

	handler := HealthHandler()
	handler(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected status 503, got %d", w.Code)
	}

	var health HealthStatus
	if err := json.NewDecoder(w.Body).Decode(&health); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if health.Status != "unhealthy" {
		t.Errorf("expected unhealthy status, got %s", health.Status)
	}
}

func TestReadyHandler(t *testing.T) {
	resetHealthState()
	RegisterPoolSnapshot(func() PoolSnapshot {
		return PoolSnapshot{Free: 1, Busy: 1, Prewarmed: 1, Capacity: 4}
	})

	req := httptest.NewRequest("GET", "/readyz", nil)
	w := httptest.NewRecorder()

	handler := ReadyHandler()
	handler(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}

	var readiness HealthStatus
	if err := json.NewDecoder(w.Body).Decode(&readiness); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if readiness.Status != "ready" {
		t.Errorf("expected ready status, got %s", readiness.Status)
	}
}

func TestReadyHandler_NotReady(t *testing.T) {
	resetHealthState()

	req := httptest.NewRequest("GET", "/readyz", nil)
	w := httptest.NewRecorder()

	handler := ReadyHandler()
	handler(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected status 503, got %d", w.Code)
	}

	var readiness HealthStatus
	if err := json.NewDecoder(w.Body).Decode(&readiness); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if readiness.Status != "not_ready" {
		t.Errorf("expected not_ready status, got %s", readiness.Status)
	}
}

func TestLivenessHandler(t *testing.T) {
	resetHealthState()

	req := httptest.NewRequest("GET", "/livez", nil)
	w := httptest.NewRecorder()

	handler := LivenessHandler()
	handler(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}

	var response map[string]string
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response["status"] != "alive" {
		t.Errorf("expected status 'alive', got '%s'", response["status"])
	}
	if response["uptime"] == "" {
		t.Error("uptime should not be empty")
	}
}
