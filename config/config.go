// Package config loads sortagg configuration from YAML and builds the
// sortagg.Env which operations run within.
package config

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/go-sif/sortagg"
	"github.com/go-sif/sortagg/cluster"
	"github.com/go-sif/sortagg/dispatch"
	"github.com/go-sif/sortagg/logging"
	"github.com/go-sif/sortagg/serialization"
	"go.uber.org/zap"
	"sigs.k8s.io/yaml"

	// the built-in backend
	_ "github.com/go-sif/sortagg/table"
)

// BackendEnvVar overrides the configured backend when set
const BackendEnvVar = "SORTAGG_BACKEND"

// Config configures a sortagg.Env
type Config struct {
	Backend     string   `json:"backend,omitempty"`     // name of a registered table backend. Defaults to "native"
	Parallelism int      `json:"parallelism,omitempty"` // maximum concurrently running units. Defaults to runtime.NumCPU()
	LogLevel    string   `json:"logLevel,omitempty"`    // one of trace, debug, info, warn, error or fatal. Defaults to info
	LogFormat   string   `json:"logFormat,omitempty"`   // console or json. Defaults to console
	Compression string   `json:"compression,omitempty"` // block compression for remote units: none, lz4 or zstd. Defaults to lz4
	Workers     []string `json:"workers,omitempty"`     // addresses of remote locator Workers. Units run locally when empty
	RPCTimeout  string   `json:"rpcTimeout,omitempty"`  // timeout for each remote unit, as a Go duration. Defaults to 5s
}

// Load reads a Config from a YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("Failed to read config %s: %w", path, err)
	}
	return Parse(data)
}

// Parse reads a Config from YAML (or JSON), applying defaults and environment overrides
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.UnmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("Invalid config: %w", err)
	}
	if err := ensureDefaultConfigValues(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func ensureDefaultConfigValues(cfg *Config) error {
	if override := os.Getenv(BackendEnvVar); len(override) > 0 {
		cfg.Backend = override
	}
	if len(cfg.Backend) == 0 {
		cfg.Backend = sortagg.DefaultBackendName
	}
	if cfg.Parallelism <= 0 {
		cfg.Parallelism = runtime.NumCPU()
	}
	if len(cfg.LogLevel) == 0 {
		cfg.LogLevel = logging.LogLevelToString(logging.InfoLevel)
	}
	if _, err := logging.ParseLevel(cfg.LogLevel); err != nil {
		return err
	}
	if len(cfg.LogFormat) == 0 {
		cfg.LogFormat = logging.ConsoleFormat
	}
	if cfg.LogFormat != logging.ConsoleFormat && cfg.LogFormat != logging.JSONFormat {
		return fmt.Errorf("Config logFormat %q must be %q or %q", cfg.LogFormat, logging.ConsoleFormat, logging.JSONFormat)
	}
	if len(cfg.Compression) == 0 {
		cfg.Compression = "lz4"
	}
	if _, err := serialization.ByName(cfg.Compression); err != nil {
		return err
	}
	if len(cfg.RPCTimeout) == 0 {
		cfg.RPCTimeout = "5s"
	}
	if _, err := cfg.rpcTimeout(); err != nil {
		return err
	}
	return nil
}

func (cfg *Config) rpcTimeout() (time.Duration, error) {
	d, err := time.ParseDuration(cfg.RPCTimeout)
	if err != nil {
		return 0, fmt.Errorf("Config rpcTimeout %q is not a duration: %w", cfg.RPCTimeout, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("Config rpcTimeout %q must be positive", cfg.RPCTimeout)
	}
	return d, nil
}

// Env is a sortagg.Env built from a Config, along with the resources it owns
type Env struct {
	*sortagg.Env
	remote *cluster.RemoteDispatcher
}

// Close releases any connections held by this Env, and flushes its Logger
func (e *Env) Close() error {
	var err error
	if e.remote != nil {
		err = e.remote.Close()
	}
	e.Log().Sync()
	return err
}

// Build initializes the Env described by this Config. A backend which has
// not been registered fails with a MissingBackendError.
func (cfg *Config) Build() (*Env, error) {
	if err := ensureDefaultConfigValues(cfg); err != nil {
		return nil, err
	}
	level, _ := logging.ParseLevel(cfg.LogLevel)
	logger, err := logging.NewLogger(level, cfg.LogFormat)
	if err != nil {
		return nil, err
	}
	backend, err := sortagg.OpenBackend(cfg.Backend)
	if err != nil {
		return nil, err
	}
	env := &Env{Env: &sortagg.Env{Backend: backend, Logger: logger}}
	if len(cfg.Workers) == 0 {
		env.Dispatcher = dispatch.NewPool(&dispatch.PoolOptions{
			Parallelism: cfg.Parallelism,
			Logger:      logger,
		})
	} else {
		timeout, _ := cfg.rpcTimeout()
		remote, err := cluster.Dial(cfg.Workers, &cluster.NodeOptions{
			RPCTimeout:  timeout,
			Compression: cfg.Compression,
			Backend:     backend,
			Logger:      logger,
		})
		if err != nil {
			return nil, err
		}
		env.Dispatcher = remote
		env.remote = remote
	}
	logger.Debug("environment ready",
		zap.String("backend", backend.Name()),
		zap.Int("parallelism", cfg.Parallelism),
		zap.Strings("workers", cfg.Workers),
		zap.String("compression", cfg.Compression),
	)
	return env, nil
}
