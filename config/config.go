// Package config reads the server settings from a TOML file.
package config

import (
	"fmt"
	"strings"

	"code.cloudfoundry.org/bytefmt"
	"github.com/BurntSushi/toml"

	"github.com/cytomine/pims/logger"
	"github.com/cytomine/pims/params"
)

// Config stores the server configuration.
type Config struct {
	Host            string          `toml:"host"`
	Port            int             `toml:"port"`
	Root            string          `toml:"root"`
	OutputSizeLimit int             `toml:"output_size_limit"`
	DefaultSafeMode params.SafeMode `toml:"default_safe_mode"`
	DefaultTileSize int             `toml:"default_tile_size"`
	DefaultColor    string          `toml:"default_color"`
	Verbose         bool            `toml:"verbose"`
	Cache           CacheConfig     `toml:"cache"`
	Log             logger.Config   `toml:"log"`
}

// CacheConfig represents the configuration information regarding the cache.
type CacheConfig struct {
	HTTP          int64    `toml:"http"`
	Images        string   `toml:"images"`
	Responses     string   `toml:"responses"`
	Peers         []string `toml:"peers"`
	ImagesSize    int64    `toml:"-"`
	ResponsesSize int64    `toml:"-"`
}

// Default returns the configuration used for missing keys.
func Default() *Config {
	return &Config{
		Host:            "0.0.0.0",
		Port:            5000,
		Root:            ".",
		OutputSizeLimit: 10000,
		DefaultSafeMode: params.SafeReject,
		DefaultTileSize: 256,
		DefaultColor:    "WHITE",
		Cache: CacheConfig{
			HTTP: 86400,
		},
		Log: logger.Config{
			MaxSize: 100,
			MaxAge:  30,
		},
	}
}

// Load reads the configuration file on top of the defaults.
func Load(filename string) (*Config, error) {
	c := Default()
	if _, err := toml.DecodeFile(filename, c); err != nil {
		return nil, fmt.Errorf("cannot read configuration %s: %w", filename, err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Parse reads the configuration from a TOML document.
func Parse(data string) (*Config, error) {
	c := Default()
	if _, err := toml.Decode(data, c); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks the values and computes the cache sizes.
func (c *Config) Validate() error {
	mode, err := params.ParseSafeMode(string(c.DefaultSafeMode))
	if err != nil {
		return fmt.Errorf("default_safe_mode: %w", err)
	}
	c.DefaultSafeMode = mode

	if c.OutputSizeLimit <= 0 {
		return fmt.Errorf("output_size_limit must be positive, got %d", c.OutputSizeLimit)
	}
	if c.DefaultTileSize <= 0 {
		return fmt.Errorf("default_tile_size must be positive, got %d", c.DefaultTileSize)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port %d is invalid", c.Port)
	}
	c.DefaultColor = strings.ToUpper(c.DefaultColor)

	if c.Cache.ImagesSize, err = toBytes(c.Cache.Images); err != nil {
		return fmt.Errorf("cache.images: %w", err)
	}
	if c.Cache.ResponsesSize, err = toBytes(c.Cache.Responses); err != nil {
		return fmt.Errorf("cache.responses: %w", err)
	}
	return nil
}

// Listen is the address the server listens on.
func (c *Config) Listen() string {
	return fmt.Sprintf("%v:%v", c.Host, c.Port)
}

func toBytes(size string) (int64, error) {
	if size == "" {
		return 0, nil
	}
	n, err := bytefmt.ToBytes(size)
	return int64(n), err
}
