package runtime

import (
	"context"
	"fmt"
	"net"
	"os/exec"
	"strings"
	"syscall"
	"time"

	"github.com/containerd/containerd"
	"github.com/containerd/containerd/cio"
	"github.com/containerd/containerd/namespaces"
	"github.com/containerd/containerd/oci"
	"github.com/cuemby/invoker/pkg/types"
	specs "github.com/opencontainers/runtime-spec/specs-go"
)

const (
	// DefaultNamespace is the containerd namespace the invoker creates
	// all pool containers in.
	DefaultNamespace = "invoker"

	// DefaultSocketPath is the default containerd socket.
	DefaultSocketPath = "/run/containerd/containerd.sock"
)

// ImageResolver maps an action's execution kind to the container image that
// backs it. A real deployment would source this from a registry keyed by
// kind+revision; the pool only needs a stable mapping from ExecParams to
// an image reference.
type ImageResolver interface {
	Resolve(exec types.ExecParams) (string, error)
}

// ContainerdDriver implements ContainerDriver using containerd.
type ContainerdDriver struct {
	client    *containerd.Client
	namespace string
	images    ImageResolver
}

// NewContainerdDriver connects to a containerd daemon over socketPath and
// returns a driver that creates containers in the invoker namespace.
func NewContainerdDriver(socketPath string, images ImageResolver) (*ContainerdDriver, error) {
	if socketPath == "" {
		socketPath = DefaultSocketPath
	}

	client, err := containerd.New(socketPath)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to containerd: %w", err)
	}

	return &ContainerdDriver{
		client:    client,
		namespace: DefaultNamespace,
		images:    images,
	}, nil
}

// Close releases the containerd client connection.
func (d *ContainerdDriver) Close() error {
	if d.client != nil {
		return d.client.Close()
	}
	return nil
}

func (d *ContainerdDriver) Create(ctx context.Context, workerID types.WorkerID, exec types.ExecParams) (string, error) {
	ctx = namespaces.WithNamespace(ctx, d.namespace)

	imageRef, err := d.images.Resolve(exec)
	if err != nil {
		return "", fmt.Errorf("resolve image for kind %s: %w", exec.Kind, err)
	}

	image, err := d.client.GetImage(ctx, imageRef)
	if err != nil {
		image, err = d.client.Pull(ctx, imageRef, containerd.WithPullUnpack)
		if err != nil {
			return "", fmt.Errorf("failed to pull image %s: %w", imageRef, err)
		}
	}

	containerID := string(workerID)

	opts := []oci.SpecOpts{
		oci.WithImageConfig(image),
		oci.WithMounts([]specs.Mount{
			{
				Source:      "tmpfs",
				Destination: "/tmp",
				Type:        "tmpfs",
				Options:     []string{"nosuid", "nodev", "size=64m"},
			},
		}),
	}
	if exec.MemoryMB > 0 {
		opts = append(opts, oci.WithMemoryLimit(uint64(exec.MemoryMB)*1024*1024))
	}

	ctrdContainer, err := d.client.NewContainer(
		ctx,
		containerID,
		containerd.WithImage(image),
		containerd.WithNewSnapshot(containerID+"-snapshot", image),
		containerd.WithNewSpec(opts...),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create container: %w", err)
	}

	return ctrdContainer.ID(), nil
}

func (d *ContainerdDriver) Start(ctx context.Context, containerID string) error {
	ctx = namespaces.WithNamespace(ctx, d.namespace)

	container, err := d.client.LoadContainer(ctx, containerID)
	if err != nil {
		return fmt.Errorf("failed to load container %s: %w", containerID, err)
	}

	task, err := container.NewTask(ctx, cio.NullIO)
	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}

	if err := task.Start(ctx); err != nil {
		return fmt.Errorf("failed to start task: %w", err)
	}

	return nil
}

func (d *ContainerdDriver) Pause(ctx context.Context, containerID string) error {
	ctx = namespaces.WithNamespace(ctx, d.namespace)

	container, err := d.client.LoadContainer(ctx, containerID)
	if err != nil {
		return fmt.Errorf("failed to load container %s: %w", containerID, err)
	}

	task, err := container.Task(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to get task for %s: %w", containerID, err)
	}

	if err := task.Pause(ctx); err != nil {
		return fmt.Errorf("failed to pause task: %w", err)
	}

	return nil
}

func (d *ContainerdDriver) Resume(ctx context.Context, containerID string) error {
	ctx = namespaces.WithNamespace(ctx, d.namespace)

	container, err := d.client.LoadContainer(ctx, containerID)
	if err != nil {
		return fmt.Errorf("failed to load container %s: %w", containerID, err)
	}

	task, err := container.Task(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to get task for %s: %w", containerID, err)
	}

	if err := task.Resume(ctx); err != nil {
		return fmt.Errorf("failed to resume task: %w", err)
	}

	return nil
}

func (d *ContainerdDriver) Delete(ctx context.Context, containerID string, timeout time.Duration) error {
	ctx = namespaces.WithNamespace(ctx, d.namespace)

	container, err := d.client.LoadContainer(ctx, containerID)
	if err != nil {
		// Container already gone: deleting is idempotent.
		return nil
	}

	if err := d.stopTask(ctx, container, timeout); err != nil {
		return fmt.Errorf("failed to stop container before delete: %w", err)
	}

	if err := container.Delete(ctx, containerd.WithSnapshotCleanup); err != nil {
		return fmt.Errorf("failed to delete container: %w", err)
	}

	return nil
}

func (d *ContainerdDriver) stopTask(ctx context.Context, container containerd.Container, timeout time.Duration) error {
	task, err := container.Task(ctx, nil)
	if err != nil {
		// No task means the container never started.
		return nil
	}

	stopCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := task.Kill(stopCtx, syscall.SIGTERM); err != nil {
		return fmt.Errorf("failed to send SIGTERM: %w", err)
	}

	statusC, err := task.Wait(stopCtx)
	if err != nil {
		return fmt.Errorf("failed to wait for task: %w", err)
	}

	select {
	case <-statusC:
	case <-stopCtx.Done():
		if err := task.Kill(ctx, syscall.SIGKILL); err != nil {
			return fmt.Errorf("failed to force kill task: %w", err)
		}
	}

	if _, err := task.Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	return nil
}

func (d *ContainerdDriver) Status(ctx context.Context, containerID string) (ContainerStatus, error) {
	ctx = namespaces.WithNamespace(ctx, d.namespace)

	container, err := d.client.LoadContainer(ctx, containerID)
	if err != nil {
		return StatusUnknown, fmt.Errorf("failed to load container %s: %w", containerID, err)
	}

	task, err := container.Task(ctx, nil)
	if err != nil {
		return StatusCreated, nil
	}

	status, err := task.Status(ctx)
	if err != nil {
		return StatusUnknown, fmt.Errorf("failed to get task status: %w", err)
	}

	switch status.Status {
	case containerd.Running:
		return StatusRunning, nil
	case containerd.Paused:
		return StatusPaused, nil
	case containerd.Stopped:
		return StatusStopped, nil
	default:
		return StatusCreated, nil
	}
}

// IP shells out to nsenter to read the container's eth0 address from its
// network namespace. containerd doesn't expose pod-style IP lookups
// directly when the CNI plugin isn't wired through the client API.
func (d *ContainerdDriver) IP(ctx context.Context, containerID string) (string, error) {
	ctx = namespaces.WithNamespace(ctx, d.namespace)

	container, err := d.client.LoadContainer(ctx, containerID)
	if err != nil {
		return "", fmt.Errorf("failed to load container %s: %w", containerID, err)
	}

	task, err := container.Task(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to get task: %w", err)
	}

	pid := task.Pid()
	if pid == 0 {
		return "", fmt.Errorf("container task has no PID")
	}

	cmd := exec.CommandContext(ctx, "nsenter", "-t", fmt.Sprintf("%d", pid), "-n", "ip", "-4", "addr", "show", "eth0")
	output, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("failed to get container IP: %w (output: %s)", err, string(output))
	}

	for _, line := range strings.Split(string(output), "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "inet ") {
			continue
		}
		parts := strings.Fields(line)
		if len(parts) < 2 {
			continue
		}
		ip, _, err := net.ParseCIDR(parts[1])
		if err != nil {
			return "", fmt.Errorf("failed to parse IP address %s: %w", parts[1], err)
		}
		return ip.String(), nil
	}

	return "", fmt.Errorf("no IP address found for container")
}
