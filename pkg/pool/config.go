package pool

import (
	"fmt"
	"time"

	"github.com/cuemby/invoker/pkg/proxy"
	"github.com/cuemby/invoker/pkg/types"
)

// PrewarmSpec is one entry of the prewarm configuration: keep Count
// containers of (Kind, MemoryMB) initialized and ready for promotion.
type PrewarmSpec struct {
	Count    int
	Kind     string
	MemoryMB int
}

func (p PrewarmSpec) exec() types.ExecParams {
	return types.ExecParams{Kind: p.Kind, MemoryMB: p.MemoryMB}
}

// Config is the pool's configuration surface (spec.md §6).
type Config struct {
	// MaxActiveContainers is the hard cap on |busy| + |free|.
	MaxActiveContainers int
	// PrewarmConfig lists the target prewarm populations by (kind, memory).
	PrewarmConfig []PrewarmSpec
	// LogMessageInterval throttles the pool-saturation error log.
	// Defaults to 10s.
	LogMessageInterval time.Duration
	// Proxy bounds every Container Proxy's own lifecycle (idle/age
	// timeouts, pause delay, init-readiness probe).
	Proxy proxy.Config
}

// Validate enforces the configuration-error taxonomy from spec.md §7:
// non-positive MaxActiveContainers and ill-formed prewarm entries are
// fatal at construction.
func (c Config) Validate() error {
	if c.MaxActiveContainers <= 0 {
		return fmt.Errorf("maxActiveContainers must be positive, got %d", c.MaxActiveContainers)
	}
	for i, p := range c.PrewarmConfig {
		if p.Count < 1 {
			return fmt.Errorf("prewarmConfig[%d]: count must be >= 1, got %d", i, p.Count)
		}
		if p.Kind == "" {
			return fmt.Errorf("prewarmConfig[%d]: kind must not be empty", i)
		}
		if p.MemoryMB <= 0 {
			return fmt.Errorf("prewarmConfig[%d]: memoryMB must be positive, got %d", i, p.MemoryMB)
		}
	}
	return nil
}

func (c Config) logInterval() time.Duration {
	if c.LogMessageInterval > 0 {
		return c.LogMessageInterval
	}
	return 10 * time.Second
}
