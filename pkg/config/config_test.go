package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultValidates(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default() should validate, got: %v", err)
	}
}

func TestLoadMissingPathReturnsDefault(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\"): %v", err)
	}
	if cfg.Pool.MaxActiveContainers != Default().Pool.MaxActiveContainers {
		t.Errorf("expected default pool config, got %+v", cfg.Pool)
	}
}

func TestLoadParsesYAMLAndDurations(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "invoker.yaml")
	contents := `
logLevel: debug
runtime:
  containerdSocket: /var/run/containerd/containerd.sock
  images:
    nodejs:20: invoker/runtime-nodejs20:latest
pool:
  maxActiveContainers: 32
  logMessageInterval: 5s
  idleTimeout: 2m
  prewarm:
    - count: 2
      kind: nodejs:20
      memoryMB: 256
feed:
  maxInFlight: 32
operator:
  listenAddr: ":9091"
`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Pool.MaxActiveContainers != 32 {
		t.Errorf("expected maxActiveContainers 32, got %d", cfg.Pool.MaxActiveContainers)
	}
	if cfg.Pool.LogMessageInterval.Duration() != 5*time.Second {
		t.Errorf("expected logMessageInterval 5s, got %v", cfg.Pool.LogMessageInterval.Duration())
	}
	if cfg.Pool.IdleTimeout.Duration() != 2*time.Minute {
		t.Errorf("expected idleTimeout 2m, got %v", cfg.Pool.IdleTimeout.Duration())
	}
	if len(cfg.Pool.Prewarm) != 1 || cfg.Pool.Prewarm[0].Count != 2 {
		t.Errorf("expected one prewarm entry with count 2, got %+v", cfg.Pool.Prewarm)
	}
	if cfg.Operator.ListenAddr != ":9091" {
		t.Errorf("expected operator listenAddr :9091, got %q", cfg.Operator.ListenAddr)
	}

	if err := cfg.Validate(); err != nil {
		t.Fatalf("parsed config should validate: %v", err)
	}
}

func TestValidateRejectsMissingContainerdSocket(t *testing.T) {
	cfg := Default()
	cfg.Runtime.ContainerdSocket = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for empty containerd socket")
	}
}

func TestValidateRejectsNoImages(t *testing.T) {
	cfg := Default()
	cfg.Runtime.Images = nil
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for empty image table")
	}
}

func TestValidateRejectsBadPoolConfig(t *testing.T) {
	cfg := Default()
	cfg.Pool.MaxActiveContainers = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error propagated from pool.Config.Validate")
	}
}

func TestToPoolConfigConvertsPrewarmEntries(t *testing.T) {
	cfg := Default()
	cfg.Pool.Prewarm = []PrewarmEntry{{Count: 3, Kind: "python:3.11", MemoryMB: 512}}

	pc := cfg.ToPoolConfig()
	if len(pc.PrewarmConfig) != 1 {
		t.Fatalf("expected one prewarm spec, got %d", len(pc.PrewarmConfig))
	}
	if pc.PrewarmConfig[0].Kind != "python:3.11" || pc.PrewarmConfig[0].MemoryMB != 512 {
		t.Errorf("unexpected prewarm spec: %+v", pc.PrewarmConfig[0])
	}
}
