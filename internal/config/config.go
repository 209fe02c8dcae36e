// Package config loads device, parallelism and logging settings with viper.
//
// Values come from, in increasing priority: built-in defaults, an optional
// numtab.yaml in the given directory, and NUMTAB_* environment variables
// (NUMTAB_DEVICE_BACKEND overrides device.backend).
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"strings"

	"github.com/spf13/viper"

	"github.com/born-ml/numtab/internal/device"
	"github.com/born-ml/numtab/internal/parallel"
)

const (
	configFileName = "numtab"
	configFileType = "yaml"
	envPrefix      = "NUMTAB"
)

// Backend names accepted by device.backend.
const (
	BackendSim    = "sim"
	BackendWebGPU = "webgpu"
)

// Metrics collectors accepted by metrics.collector.
const (
	MetricsNone       = "none"
	MetricsBasic      = "basic"
	MetricsPrometheus = "prometheus"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("config: invalid value")

// Config is the full configuration tree.
type Config struct {
	Device   DeviceConfig   `mapstructure:"device"`
	Parallel ParallelConfig `mapstructure:"parallel"`
	Log      LogConfig      `mapstructure:"log"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

// DeviceConfig selects and sizes the accelerator backend.
type DeviceConfig struct {
	Backend              string `mapstructure:"backend"`
	MemoryLimitBytes     int64  `mapstructure:"memory_limit_bytes"`      // 0 = unlimited
	HostMemoryLimitBytes int64  `mapstructure:"host_memory_limit_bytes"` // 0 = unlimited
	BandwidthBytesPerSec int64  `mapstructure:"bandwidth_bytes_per_sec"` // sim only, 0 = unthrottled
	PoolMaxPerBucket     int    `mapstructure:"pool_max_per_bucket"`     // sim only
}

// ParallelConfig controls chunked gather and scatter.
type ParallelConfig struct {
	Enabled  bool `mapstructure:"enabled"`
	Workers  int  `mapstructure:"workers"` // 0 = runtime.GOMAXPROCS(0)
	MinChunk int  `mapstructure:"min_chunk"`
}

// LogConfig selects the queue logger.
type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // text, json, none
}

// MetricsConfig selects the queue metrics collector.
type MetricsConfig struct {
	Collector string `mapstructure:"collector"`
	Namespace string `mapstructure:"namespace"`
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	p := parallel.DefaultConfig()
	return &Config{
		Device: DeviceConfig{
			Backend:          BackendSim,
			PoolMaxPerBucket: 16,
		},
		Parallel: ParallelConfig{
			Enabled:  p.Enabled,
			Workers:  p.NumWorkers,
			MinChunk: p.MinChunkSize,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "none",
		},
		Metrics: MetricsConfig{
			Collector: MetricsNone,
			Namespace: "numtab",
		},
	}
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("device.backend", d.Device.Backend)
	v.SetDefault("device.memory_limit_bytes", d.Device.MemoryLimitBytes)
	v.SetDefault("device.host_memory_limit_bytes", d.Device.HostMemoryLimitBytes)
	v.SetDefault("device.bandwidth_bytes_per_sec", d.Device.BandwidthBytesPerSec)
	v.SetDefault("device.pool_max_per_bucket", d.Device.PoolMaxPerBucket)
	v.SetDefault("parallel.enabled", d.Parallel.Enabled)
	v.SetDefault("parallel.workers", d.Parallel.Workers)
	v.SetDefault("parallel.min_chunk", d.Parallel.MinChunk)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("metrics.collector", d.Metrics.Collector)
	v.SetDefault("metrics.namespace", d.Metrics.Namespace)
}

// Load reads numtab.yaml from dir and applies environment overrides.
// A missing file is not an error. An empty dir skips the file lookup.
func Load(dir string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if dir != "" {
		v.SetConfigName(configFileName)
		v.SetConfigType(configFileType)
		v.AddConfigPath(dir)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("config: read: %w", err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every field and reports the first invalid one.
func (c *Config) Validate() error {
	switch c.Device.Backend {
	case BackendSim, BackendWebGPU:
	default:
		return fmt.Errorf("%w: device.backend %q", ErrInvalid, c.Device.Backend)
	}
	if c.Device.MemoryLimitBytes < 0 || c.Device.HostMemoryLimitBytes < 0 {
		return fmt.Errorf("%w: memory limits must not be negative", ErrInvalid)
	}
	if c.Device.BandwidthBytesPerSec < 0 {
		return fmt.Errorf("%w: device.bandwidth_bytes_per_sec %d", ErrInvalid, c.Device.BandwidthBytesPerSec)
	}
	if c.Device.PoolMaxPerBucket < 0 {
		return fmt.Errorf("%w: device.pool_max_per_bucket %d", ErrInvalid, c.Device.PoolMaxPerBucket)
	}
	if c.Parallel.Workers < 0 || c.Parallel.MinChunk < 0 {
		return fmt.Errorf("%w: parallel settings must not be negative", ErrInvalid)
	}
	if _, err := c.Log.level(); err != nil {
		return err
	}
	switch c.Log.Format {
	case "text", "json", "none":
	default:
		return fmt.Errorf("%w: log.format %q", ErrInvalid, c.Log.Format)
	}
	switch c.Metrics.Collector {
	case MetricsNone, MetricsBasic, MetricsPrometheus:
	default:
		return fmt.Errorf("%w: metrics.collector %q", ErrInvalid, c.Metrics.Collector)
	}
	return nil
}

// ParallelOptions converts the parallel section for accessor use.
func (c *Config) ParallelOptions() parallel.Config {
	workers := c.Parallel.Workers
	if workers == 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return parallel.Config{
		Enabled:      c.Parallel.Enabled,
		NumWorkers:   workers,
		MinChunkSize: c.Parallel.MinChunk,
	}
}

// Limits converts the memory budgets for device.WithLimits.
func (c *Config) Limits() device.Limits {
	return device.Limits{
		DeviceBytes: c.Device.MemoryLimitBytes,
		HostBytes:   c.Device.HostMemoryLimitBytes,
	}
}

// Logger builds the queue logger described by the log section.
func (c *Config) Logger() *device.Logger {
	level, err := c.Log.level()
	if err != nil {
		level = slog.LevelInfo
	}
	switch c.Log.Format {
	case "json":
		return device.NewJSONLogger(level)
	case "text":
		return device.NewTextLogger(level)
	default:
		return device.NoopLogger()
	}
}

func (l LogConfig) level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("%w: log.level %q", ErrInvalid, l.Level)
	}
	return level, nil
}
