// Package config loads the invoker's top-level configuration from YAML.
// cmd/invoker's --config flag selects the file; no other CLI flag
// overrides the loaded fields.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/cuemby/invoker/pkg/health"
	"github.com/cuemby/invoker/pkg/log"
	"github.com/cuemby/invoker/pkg/pool"
	"github.com/cuemby/invoker/pkg/proxy"
	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so YAML values like "10s" or "5m" parse
// the same way they would on a flag, instead of requiring nanosecond
// integers.
type Duration time.Duration

func (d Duration) Duration() time.Duration { return time.Duration(d) }

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		var ns int64
		if err := value.Decode(&ns); err != nil {
			return fmt.Errorf("duration: %w", err)
		}
		*d = Duration(ns)
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// PrewarmEntry is the YAML shape of one pool.PrewarmSpec.
type PrewarmEntry struct {
	Count    int    `yaml:"count"`
	Kind     string `yaml:"kind"`
	MemoryMB int    `yaml:"memoryMB"`
}

// PoolConfig is the YAML shape of pool.Config, with durations expressed
// as Go duration strings ("10s", "5m") rather than nanosecond integers.
type PoolConfig struct {
	MaxActiveContainers int            `yaml:"maxActiveContainers"`
	Prewarm             []PrewarmEntry `yaml:"prewarm"`
	LogMessageInterval  Duration       `yaml:"logMessageInterval"`
	IdleTimeout         Duration       `yaml:"idleTimeout"`
	MaxAge              Duration       `yaml:"maxAge"`
	PauseDelay          Duration       `yaml:"pauseDelay"`
	HealthCheck         HealthConfig   `yaml:"healthCheck"`
}

// HealthConfig is the YAML shape of health.Config.
type HealthConfig struct {
	Interval    Duration `yaml:"interval"`
	Timeout     Duration `yaml:"timeout"`
	Retries     int      `yaml:"retries"`
	StartPeriod Duration `yaml:"startPeriod"`
}

// RuntimeConfig configures the backing containerd driver.
type RuntimeConfig struct {
	ContainerdSocket string            `yaml:"containerdSocket"`
	Images           map[string]string `yaml:"images"`
}

// FeedConfig configures the reference Feed Adapter.
type FeedConfig struct {
	MaxInFlight int `yaml:"maxInFlight"`
}

// OperatorConfig configures the operator-facing HTTP surface.
type OperatorConfig struct {
	ListenAddr string `yaml:"listenAddr"`
}

// Config is the invoker's complete configuration surface, unmarshaled
// from a single YAML file. CLI flags do not override its fields:
// cmd/invoker's --log-level and --log-json configure logging directly
// rather than through LogLevel and LogJSON.
type Config struct {
	LogLevel    log.Level      `yaml:"logLevel"`
	LogJSON     bool           `yaml:"logJSON"`
	Runtime     RuntimeConfig  `yaml:"runtime"`
	Pool        PoolConfig     `yaml:"pool"`
	Feed        FeedConfig     `yaml:"feed"`
	Operator    OperatorConfig `yaml:"operator"`
}

// Default returns the configuration used when no file is supplied: a
// nodejs:20 image mapping with no prewarm population, a 16-container
// cap, and the operator surface on :9090.
func Default() Config {
	return Config{
		LogLevel: log.InfoLevel,
		Runtime: RuntimeConfig{
			ContainerdSocket: "/run/containerd/containerd.sock",
			Images:           map[string]string{"nodejs:20": "invoker/runtime-nodejs20:latest"},
		},
		Pool: PoolConfig{
			MaxActiveContainers: 16,
			LogMessageInterval:  Duration(10 * time.Second),
			IdleTimeout:         Duration(5 * time.Minute),
			MaxAge:              Duration(30 * time.Minute),
			HealthCheck: HealthConfig{
				Interval: Duration(time.Second),
				Timeout:  Duration(5 * time.Second),
				Retries:  3,
			},
		},
		Feed:     FeedConfig{MaxInFlight: 16},
		Operator: OperatorConfig{ListenAddr: ":9090"},
	}
}

// Load reads and parses a YAML config file, starting from Default and
// overlaying whatever the file sets.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports the first configuration error found: it checks the
// invoker-level fields, then converts the pool settings and returns the
// result of pool.Config.Validate on them.
func (c Config) Validate() error {
	if c.Runtime.ContainerdSocket == "" {
		return fmt.Errorf("runtime.containerdSocket must not be empty")
	}
	if len(c.Runtime.Images) == 0 {
		return fmt.Errorf("runtime.images must list at least one kind")
	}
	if c.Feed.MaxInFlight <= 0 {
		return fmt.Errorf("feed.maxInFlight must be positive, got %d", c.Feed.MaxInFlight)
	}
	if c.Operator.ListenAddr == "" {
		return fmt.Errorf("operator.listenAddr must not be empty")
	}
	return c.Pool.toPoolConfig().Validate()
}

func (p PoolConfig) toPoolConfig() pool.Config {
	specs := make([]pool.PrewarmSpec, len(p.Prewarm))
	for i, e := range p.Prewarm {
		specs[i] = pool.PrewarmSpec{Count: e.Count, Kind: e.Kind, MemoryMB: e.MemoryMB}
	}
	return pool.Config{
		MaxActiveContainers: p.MaxActiveContainers,
		PrewarmConfig:       specs,
		LogMessageInterval:  p.LogMessageInterval.Duration(),
		Proxy: proxy.Config{
			IdleTimeout: p.IdleTimeout.Duration(),
			MaxAge:      p.MaxAge.Duration(),
			PauseDelay:  p.PauseDelay.Duration(),
			HealthCheck: health.Config{
				Interval:    p.HealthCheck.Interval.Duration(),
				Timeout:     p.HealthCheck.Timeout.Duration(),
				Retries:     p.HealthCheck.Retries,
				StartPeriod: p.HealthCheck.StartPeriod.Duration(),
			},
		},
	}
}

// ToPoolConfig converts the YAML-shaped pool settings into pool.Config.
func (c Config) ToPoolConfig() pool.Config {
	return c.Pool.toPoolConfig()
}
