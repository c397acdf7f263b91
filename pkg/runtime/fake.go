package runtime

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cuemby/invoker/pkg/types"
)

// FakeDriver is an in-memory ContainerDriver for tests: it tracks per-ID
// status transitions without touching a real containerd daemon.
type FakeDriver struct {
	mu    sync.Mutex
	state map[string]ContainerStatus

	// FailCreate, if set, is returned by Create for every call, letting
	// tests exercise the pool's cold-start failure path.
	FailCreate error

	// CreateDelay, if set, simulates a slow image pull.
	CreateDelay time.Duration
}

func NewFakeDriver() *FakeDriver {
	return &FakeDriver{state: make(map[string]ContainerStatus)}
}

func (f *FakeDriver) Create(ctx context.Context, workerID types.WorkerID, exec types.ExecParams) (string, error) {
	if f.FailCreate != nil {
		return "", f.FailCreate
	}
	if f.CreateDelay > 0 {
		select {
		case <-time.After(f.CreateDelay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	id := string(workerID)
	f.state[id] = StatusCreated
	return id, nil
}

func (f *FakeDriver) Start(ctx context.Context, containerID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.state[containerID]; !ok {
		return fmt.Errorf("unknown container %s", containerID)
	}
	f.state[containerID] = StatusRunning
	return nil
}

func (f *FakeDriver) Pause(ctx context.Context, containerID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state[containerID] != StatusRunning {
		return fmt.Errorf("cannot pause container %s not in running state", containerID)
	}
	f.state[containerID] = StatusPaused
	return nil
}

func (f *FakeDriver) Resume(ctx context.Context, containerID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state[containerID] != StatusPaused {
		return fmt.Errorf("cannot resume container %s not in paused state", containerID)
	}
	f.state[containerID] = StatusRunning
	return nil
}

func (f *FakeDriver) Delete(ctx context.Context, containerID string, timeout time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.state, containerID)
	return nil
}

func (f *FakeDriver) Status(ctx context.Context, containerID string) (ContainerStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	status, ok := f.state[containerID]
	if !ok {
		return StatusUnknown, fmt.Errorf("unknown container %s", containerID)
	}
	return status, nil
}

func (f *FakeDriver) IP(ctx context.Context, containerID string) (string, error) {
	return "127.0.0.1", nil
}
