package proxy

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/cuemby/invoker/pkg/types"
)

// Executor delivers one activation's arguments into a running container
// and waits for it to finish. It is the seam between the proxy's state
// machine and the container's actual request surface; the wire format of
// that surface (and everything beyond "does it accept the job") is out
// of scope for the pool.
type Executor interface {
	Execute(ctx context.Context, ip string, run types.Run) error
}

// HTTPExecutor posts an activation's arguments to a fixed path on the
// container's address and treats any non-2xx response or transport
// error as a transient execution failure.
type HTTPExecutor struct {
	Port   int
	Path   string
	Client *http.Client
}

func NewHTTPExecutor() *HTTPExecutor {
	return &HTTPExecutor{
		Port:   8080,
		Path:   "/run",
		Client: &http.Client{},
	}
}

func (e *HTTPExecutor) Execute(ctx context.Context, ip string, run types.Run) error {
	url := fmt.Sprintf("http://%s:%d%s", ip, e.Port, e.Path)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(run.Message.Args))
	if err != nil {
		return fmt.Errorf("build execute request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Activation-Id", run.Message.ActivationID)
	req.Header.Set("X-Transaction-Id", run.Message.TransactionID)

	deadline := run.Action.Timeout
	if deadline <= 0 {
		deadline = 60 * time.Second
	}
	execCtx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()
	req = req.WithContext(execCtx)

	resp, err := e.Client.Do(req)
	if err != nil {
		return fmt.Errorf("execute request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("container returned status %d", resp.StatusCode)
	}

	return nil
}
