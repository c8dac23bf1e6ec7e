package cli

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/treescope/treescope/pkg/tree/layout"
)

// Config is the on-disk CLI configuration, read from
// ~/.config/treescope/config.toml. All sections are optional; missing values
// fall back to defaults.
//
// Example:
//
//	[layout]
//	horizontal_spacing = 300.0
//	max_box_width = 420.0
//
//	[server]
//	addr = ":9000"
//	store = "mongo"
//	mongo_uri = "mongodb://localhost:27017"
//
//	[cache]
//	backend = "redis"
//	redis_addr = "localhost:6379"
type Config struct {
	Layout layout.Config `toml:"layout"`
	Server ServerConfig  `toml:"server"`
	Cache  CacheConfig   `toml:"cache"`
}

// ServerConfig configures the serve command.
type ServerConfig struct {
	// Addr is the listen address.
	Addr string `toml:"addr"`

	// Store selects the document backend: "memory" or "mongo".
	Store string `toml:"store"`

	// MongoURI is the connection string when Store is "mongo".
	MongoURI string `toml:"mongo_uri"`
}

// CacheConfig selects the layout cache backend.
type CacheConfig struct {
	// Backend is "file" (default), "redis", or "none".
	Backend string `toml:"backend"`

	// RedisAddr is the host:port when Backend is "redis".
	RedisAddr string `toml:"redis_addr"`

	// RedisPassword is optional.
	RedisPassword string `toml:"redis_password"`
}

// DefaultConfig returns the configuration used when no config file exists.
func DefaultConfig() Config {
	return Config{
		Layout: layout.DefaultConfig(),
		Server: ServerConfig{
			Addr:  ":8080",
			Store: "memory",
		},
		Cache: CacheConfig{
			Backend:   "file",
			RedisAddr: "localhost:6379",
		},
	}
}

// LoadConfig reads the config file at path, or the XDG default location when
// path is empty. A missing file is not an error; defaults are returned.
func LoadConfig(path string) (Config, error) {
	if path == "" {
		p, err := configPath()
		if err != nil {
			return DefaultConfig(), nil
		}
		path = p
	}

	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}
