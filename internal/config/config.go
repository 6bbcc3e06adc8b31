package config

import (
	"fmt"
	"path/filepath"
	"runtime"
	"time"

	"github.com/adrg/xdg"

	"github.com/jmylchreest/palettevision/internal/colour"
	"github.com/jmylchreest/palettevision/internal/image"
)

// AppName is the application name used for XDG directories.
const AppName = "palettevision"

// DefaultConfigFile is the configuration file name inside the XDG config directory.
const DefaultConfigFile = "config.yaml"

// Server defaults.
const (
	// DefaultAddr is the address the HTTP server listens on.
	DefaultAddr = ":8000"

	// DefaultReadTimeout bounds reading a request including its body.
	DefaultReadTimeout = 30 * time.Second

	// DefaultWriteTimeout bounds writing a response, which includes extraction.
	DefaultWriteTimeout = 120 * time.Second

	// DefaultShutdownTimeout bounds graceful shutdown.
	DefaultShutdownTimeout = 10 * time.Second
)

// Config is the complete PaletteVision configuration.
type Config struct {
	// Extract holds the defaults for extraction requests.
	Extract colour.Options `yaml:"extract"`

	Engine EngineConfig `yaml:"engine"`
	Server ServerConfig `yaml:"server"`
	Batch  BatchConfig  `yaml:"batch"`
	Cache  CacheConfig  `yaml:"cache"`
}

// EngineConfig holds the engine tuning constants.
type EngineConfig struct {
	// MaxDimension is the longest side an image keeps before it is downscaled.
	MaxDimension int             `yaml:"max_dimension"`
	KMeans       KMeansConfig    `yaml:"kmeans"`
	MeanShift    MeanShiftConfig `yaml:"meanshift"`
}

// KMeansConfig tunes k-means. Zero values select the engine defaults.
type KMeansConfig struct {
	Seed          int64   `yaml:"seed"`
	MaxIterations int     `yaml:"max_iterations"`
	Restarts      int     `yaml:"restarts"`
	Tolerance     float64 `yaml:"tolerance"`
}

// MeanShiftConfig tunes mean shift. A zero Bandwidth estimates it per image.
type MeanShiftConfig struct {
	Bandwidth         float64 `yaml:"bandwidth"`
	Quantile          float64 `yaml:"quantile"`
	EstimateSamples   int     `yaml:"estimate_samples"`
	FallbackBandwidth float64 `yaml:"fallback_bandwidth"`
	MaxIterations     int     `yaml:"max_iterations"`
	Seed              int64   `yaml:"seed"`
}

// ServerConfig configures the HTTP service.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	MaxUploadBytes  int64         `yaml:"max_upload_bytes"`
	MaxPixels       int64         `yaml:"max_pixels"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// BatchConfig configures multi-image extraction.
type BatchConfig struct {
	Concurrency int `yaml:"concurrency"`
}

// CacheConfig controls the on-disk cache of downloaded images.
type CacheConfig struct {
	Enabled bool `yaml:"enabled"`
	// Dir defaults to $XDG_CACHE_HOME/palettevision/images.
	Dir string `yaml:"dir"`
}

// Default returns a Config populated with default values.
func Default() *Config {
	engine := colour.DefaultEngineConfig()
	return &Config{
		Extract: colour.DefaultOptions(),
		Engine: EngineConfig{
			MaxDimension: engine.MaxDimension,
			KMeans: KMeansConfig{
				Seed:          engine.KMeans.Seed,
				MaxIterations: engine.KMeans.MaxIterations,
				Restarts:      engine.KMeans.Restarts,
				Tolerance:     engine.KMeans.Tolerance,
			},
			MeanShift: MeanShiftConfig{
				Bandwidth:         engine.MeanShift.Bandwidth,
				Quantile:          engine.MeanShift.Quantile,
				EstimateSamples:   engine.MeanShift.EstimateSamples,
				FallbackBandwidth: engine.MeanShift.FallbackBandwidth,
				MaxIterations:     engine.MeanShift.MaxIterations,
				Seed:              engine.MeanShift.Seed,
			},
		},
		Server: ServerConfig{
			Addr:            DefaultAddr,
			MaxUploadBytes:  image.DefaultMaxBytes,
			MaxPixels:       image.DefaultMaxPixels,
			ReadTimeout:     DefaultReadTimeout,
			WriteTimeout:    DefaultWriteTimeout,
			ShutdownTimeout: DefaultShutdownTimeout,
		},
		Batch: BatchConfig{
			Concurrency: runtime.NumCPU(),
		},
	}
}

// XDGConfigDir returns the XDG config directory for PaletteVision.
// On Linux: ~/.config/palettevision
// On macOS: ~/Library/Application Support/palettevision
// On Windows: %APPDATA%\palettevision
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// DefaultPath returns the default configuration file path.
func DefaultPath() string {
	return filepath.Join(XDGConfigDir(), DefaultConfigFile)
}

// EngineConfig converts the engine section into the extractor's configuration.
func (c *Config) EngineConfig() colour.EngineConfig {
	return colour.EngineConfig{
		MaxDimension: c.Engine.MaxDimension,
		KMeans: colour.KMeansConfig{
			Seed:          c.Engine.KMeans.Seed,
			MaxIterations: c.Engine.KMeans.MaxIterations,
			Restarts:      c.Engine.KMeans.Restarts,
			Tolerance:     c.Engine.KMeans.Tolerance,
		},
		MeanShift: colour.MeanShiftConfig{
			Bandwidth:         c.Engine.MeanShift.Bandwidth,
			Quantile:          c.Engine.MeanShift.Quantile,
			EstimateSamples:   c.Engine.MeanShift.EstimateSamples,
			FallbackBandwidth: c.Engine.MeanShift.FallbackBandwidth,
			MaxIterations:     c.Engine.MeanShift.MaxIterations,
			Seed:              c.Engine.MeanShift.Seed,
		},
	}
}

// Validate checks if the configuration is valid and returns the first
// problem found.
func (c *Config) Validate() error {
	opts, err := c.Extract.Normalize()
	if err != nil {
		return fmt.Errorf("invalid extract defaults: %w", err)
	}
	c.Extract = opts

	if c.Engine.MaxDimension <= 0 {
		return ErrInvalidMaxDimension
	}
	if c.Engine.KMeans.MaxIterations < 0 || c.Engine.KMeans.Restarts < 0 || c.Engine.KMeans.Tolerance < 0 {
		return ErrInvalidKMeans
	}
	ms := c.Engine.MeanShift
	if ms.Bandwidth < 0 || ms.Quantile < 0 || ms.Quantile > 1 || ms.EstimateSamples < 0 || ms.FallbackBandwidth < 0 || ms.MaxIterations < 0 {
		return ErrInvalidMeanShift
	}

	if c.Server.Addr == "" {
		return ErrInvalidAddr
	}
	if c.Server.MaxUploadBytes <= 0 {
		return ErrInvalidUploadLimit
	}
	if c.Server.MaxPixels <= 0 {
		return ErrInvalidPixelLimit
	}
	if c.Server.ReadTimeout < 0 || c.Server.WriteTimeout < 0 || c.Server.ShutdownTimeout < 0 {
		return ErrInvalidTimeout
	}

	if c.Batch.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}
	return nil
}
