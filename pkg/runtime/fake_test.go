package runtime

import (
	"context"
	"errors"
	"testing"

	"github.com/cuemby/invoker/pkg/types"
)

var errCreateFailed = errors.New("injected create failure")

func TestFakeDriverLifecycle(t *testing.T) {
	ctx := context.Background()
	drv := NewFakeDriver()
	exec := types.ExecParams{Kind: "nodejs:20", MemoryMB: 256}

	id, err := drv.Create(ctx, types.WorkerID("w1"), exec)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	status, err := drv.Status(ctx, id)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if status != StatusCreated {
		t.Errorf("expected StatusCreated, got %v", status)
	}

	if err := drv.Start(ctx, id); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if status, _ := drv.Status(ctx, id); status != StatusRunning {
		t.Errorf("expected StatusRunning after Start, got %v", status)
	}

	if err := drv.Pause(ctx, id); err != nil {
		t.Fatalf("Pause: %v", err)
	}
	if status, _ := drv.Status(ctx, id); status != StatusPaused {
		t.Errorf("expected StatusPaused after Pause, got %v", status)
	}

	if err := drv.Resume(ctx, id); err != nil {
		t.Fatalf("Resume: %v", err)
	}
	if status, _ := drv.Status(ctx, id); status != StatusRunning {
		t.Errorf("expected StatusRunning after Resume, got %v", status)
	}

	if err := drv.Delete(ctx, id, 0); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := drv.Status(ctx, id); err == nil {
		t.Error("expected error looking up status of deleted container")
	}
}

func TestFakeDriverPauseRequiresRunning(t *testing.T) {
	ctx := context.Background()
	drv := NewFakeDriver()
	exec := types.ExecParams{Kind: "nodejs:20", MemoryMB: 256}

	id, err := drv.Create(ctx, types.WorkerID("w1"), exec)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := drv.Pause(ctx, id); err == nil {
		t.Error("expected Pause to fail on a not-yet-started container")
	}
}

func TestFakeDriverFailCreate(t *testing.T) {
	ctx := context.Background()
	drv := NewFakeDriver()
	drv.FailCreate = errCreateFailed

	_, err := drv.Create(ctx, types.WorkerID("w1"), types.ExecParams{Kind: "nodejs:20"})
	if err != errCreateFailed {
		t.Errorf("expected injected create failure, got %v", err)
	}
}

func TestStaticImageResolver(t *testing.T) {
	r := StaticImageResolver{"nodejs:20": "invoker/runtime-nodejs20:latest"}

	image, err := r.Resolve(types.ExecParams{Kind: "nodejs:20"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if image != "invoker/runtime-nodejs20:latest" {
		t.Errorf("unexpected image: %s", image)
	}

	if _, err := r.Resolve(types.ExecParams{Kind: "unknown"}); err == nil {
		t.Error("expected error for unconfigured kind")
	}
}
