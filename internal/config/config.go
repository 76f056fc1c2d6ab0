package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/lumipallolabs/walletmap/internal/explorer"
	"github.com/lumipallolabs/walletmap/internal/layout"
	"github.com/lumipallolabs/walletmap/internal/model"
	"github.com/lumipallolabs/walletmap/internal/render"
)

// MaxCanvas is the largest accepted width or height in pixels
const MaxCanvas = 10000

// Config represents the application configuration
type Config struct {
	Server    ServerConfig      `yaml:"server"`
	Render    RenderConfig      `yaml:"render"`
	Explorers map[string]string `yaml:"explorers"`
	// ExplorerFallback overrides the base URL used for unknown chains.
	// nil keeps the default, "" disables links for unknown chains.
	ExplorerFallback *string     `yaml:"explorer_fallback"`
	Store            StoreConfig `yaml:"store"`
	Log              LogConfig   `yaml:"log"`
}

// ServerConfig represents the HTTP server configuration
type ServerConfig struct {
	Port int    `yaml:"port"`
	Host string `yaml:"host"`
}

// RenderConfig holds the chart defaults
type RenderConfig struct {
	Width              float64 `yaml:"width"`
	Height             float64 `yaml:"height"`
	Threshold          float64 `yaml:"threshold"`
	Padding            float64 `yaml:"padding"`
	Tile               string  `yaml:"tile"`
	PruneEmptyBranches bool    `yaml:"prune_empty_branches"`
	LogoDir            string  `yaml:"logo_dir"` // inline local logos found here
}

// StoreConfig represents the snapshot database configuration
type StoreConfig struct {
	Path string `yaml:"path"`
}

// LogConfig controls debug logging
type LogConfig struct {
	Debug bool   `yaml:"debug"`
	File  string `yaml:"file"`
}

// Default returns the configuration used when no file is given
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: 8080,
			Host: "0.0.0.0",
		},
		Render: RenderConfig{
			Width:              800,
			Height:             600,
			Threshold:          model.DefaultThreshold,
			Padding:            layout.DefaultPadding,
			Tile:               "binary",
			PruneEmptyBranches: true,
		},
		Store: StoreConfig{
			Path: "./data/pebble",
		},
		Log: LogConfig{
			File: "debug.log",
		},
	}
}

// Load loads configuration from a YAML file and environment variables
func Load(path string) (*Config, error) {
	cfg := Default()

	// Load from YAML file if it exists
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		} else {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	cfg.loadEnv()

	return cfg, nil
}

func (c *Config) loadEnv() {
	if port := os.Getenv("WALLETMAP_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Server.Port = p
		}
	}
	if host := os.Getenv("WALLETMAP_HOST"); host != "" {
		c.Server.Host = host
	}
	if path := os.Getenv("WALLETMAP_STORE_PATH"); path != "" {
		c.Store.Path = path
	}
	if threshold := os.Getenv("WALLETMAP_THRESHOLD"); threshold != "" {
		if t, err := strconv.ParseFloat(threshold, 64); err == nil {
			c.Render.Threshold = t
		}
	}
	if tile := os.Getenv("WALLETMAP_TILE"); tile != "" {
		c.Render.Tile = tile
	}
	if os.Getenv("WALLETMAP_DEBUG") != "" {
		c.Log.Debug = true
	}
}

// Validate checks value ranges and names
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if err := ValidateSize(c.Render.Width, c.Render.Height); err != nil {
		return fmt.Errorf("render: %w", err)
	}
	if !(c.Render.Padding >= 0) {
		return fmt.Errorf("render.padding must not be negative, got %g", c.Render.Padding)
	}
	if !(c.Render.Threshold >= 0) {
		return fmt.Errorf("render.threshold must not be negative, got %g", c.Render.Threshold)
	}
	if _, err := layout.TileByName(c.Render.Tile); err != nil {
		return fmt.Errorf("render.tile: %w", err)
	}
	for chain, base := range c.Explorers {
		if chain == "" || base == "" {
			return fmt.Errorf("explorers: empty chain name or base URL")
		}
	}
	return nil
}

// ValidateSize checks a canvas size. The negated comparisons also reject NaN.
func ValidateSize(width, height float64) error {
	if !(width > 0 && width <= MaxCanvas) {
		return fmt.Errorf("width must be in 1..%d, got %g", MaxCanvas, width)
	}
	if !(height > 0 && height <= MaxCanvas) {
		return fmt.Errorf("height must be in 1..%d, got %g", MaxCanvas, height)
	}
	return nil
}

// Registry builds the explorer registry: the built-in chains plus the
// configured ones
func (c *Config) Registry() *explorer.Registry {
	r := explorer.NewRegistry()
	for chain, base := range c.Explorers {
		r.Set(chain, base)
	}
	if c.ExplorerFallback != nil {
		r.Fallback = *c.ExplorerFallback
	}
	return r
}

// ChartOptions converts the render section into chart options
func (c *Config) ChartOptions() (render.Options, error) {
	tile, err := layout.TileByName(c.Render.Tile)
	if err != nil {
		return render.Options{}, err
	}
	return render.Options{
		Threshold:          c.Render.Threshold,
		PruneEmptyBranches: c.Render.PruneEmptyBranches,
		Padding:            c.Render.Padding,
		Tile:               tile,
		Registry:           c.Registry(),
	}, nil
}
