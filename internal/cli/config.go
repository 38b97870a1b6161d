package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/flowboard/pkg/layout"
)

// configFile is the name of the optional configuration file.
const configFile = "flowboard.toml"

// Store and cache backend names.
const (
	backendFile   = "file"
	backendMemory = "memory"
	backendRedis  = "redis"
	backendMongo  = "mongo"
	backendBadger = "badger"
	backendNone   = "none"
)

// Config holds defaults read from flowboard.toml and the environment.
type Config struct {
	Store  StoreConfig  `toml:"store"`
	Cache  CacheConfig  `toml:"cache"`
	Redis  RedisConfig  `toml:"redis"`
	Mongo  MongoConfig  `toml:"mongo"`
	Server ServerConfig `toml:"server"`
	Layout LayoutConfig `toml:"layout"`
}

// StoreConfig selects where board state is persisted.
type StoreConfig struct {
	Backend string `toml:"backend"` // file (default), memory, redis, mongo, badger
	Dir     string `toml:"dir"`     // file or badger directory
}

// CacheConfig selects the layout/artifact cache.
type CacheConfig struct {
	Backend   string `toml:"backend"`   // file (default), redis, none
	Dir       string `toml:"dir"`       // file cache directory
	Namespace string `toml:"namespace"` // key prefix for shared backends
}

// RedisConfig is shared by the redis store and cache.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// MongoConfig configures the mongo store.
type MongoConfig struct {
	URI        string `toml:"uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

// ServerConfig configures "flowboard serve".
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// LayoutConfig provides layout defaults for every command.
type LayoutConfig struct {
	Strategy string  `toml:"strategy"`
	CanvasW  float64 `toml:"canvas_width"`
	CanvasH  float64 `toml:"canvas_height"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() Config {
	return Config{
		Store:  StoreConfig{Backend: backendFile},
		Cache:  CacheConfig{Backend: backendFile},
		Redis:  RedisConfig{Addr: "localhost:6379"},
		Server: ServerConfig{Addr: ":8080"},
		Layout: LayoutConfig{
			Strategy: string(layout.StrategyFlow),
			CanvasW:  layout.DefaultCanvasWidth,
			CanvasH:  layout.DefaultCanvasHeight,
		},
	}
}

// LoadConfig loads configuration with priority: env > file > defaults.
// An empty path looks for flowboard.toml in the working directory and then
// in the user config directory; a missing default file is not an error.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	explicit := path != ""
	if !explicit {
		path = findConfig()
	}
	if path != "" {
		if err := loadConfigFile(path, &cfg, explicit); err != nil {
			return cfg, fmt.Errorf("load config %s: %w", path, err)
		}
	}

	loadConfigFromEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func findConfig() string {
	if _, err := os.Stat(configFile); err == nil {
		return configFile
	}
	dir, err := configDir()
	if err != nil {
		return ""
	}
	p := filepath.Join(dir, configFile)
	if _, err := os.Stat(p); err == nil {
		return p
	}
	return ""
}

func loadConfigFile(path string, cfg *Config, explicit bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return nil
		}
		return err
	}
	if _, err := toml.Decode(string(data), cfg); err != nil {
		return fmt.Errorf("parse toml: %w", err)
	}
	return nil
}

func loadConfigFromEnv(cfg *Config) {
	if v := os.Getenv("FLOWBOARD_REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("FLOWBOARD_REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("FLOWBOARD_REDIS_DB"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.Redis.DB = i
		}
	}
	if v := os.Getenv("FLOWBOARD_MONGO_URI"); v != "" {
		cfg.Mongo.URI = v
	}
	if v := os.Getenv("FLOWBOARD_CACHE_NAMESPACE"); v != "" {
		cfg.Cache.Namespace = v
	}
	if v := os.Getenv("FLOWBOARD_STORE"); v != "" {
		cfg.Store.Backend = v
	}
	if v := os.Getenv("FLOWBOARD_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
}

// Validate checks backend names and the layout strategy.
func (c Config) Validate() error {
	switch c.Store.Backend {
	case backendFile, backendMemory, backendRedis, backendMongo, backendBadger:
	default:
		return fmt.Errorf("unknown store backend %q (must be file, memory, redis, mongo or badger)", c.Store.Backend)
	}
	switch c.Cache.Backend {
	case backendFile, backendRedis, backendNone:
	default:
		return fmt.Errorf("unknown cache backend %q (must be file, redis or none)", c.Cache.Backend)
	}
	if c.Store.Backend == backendMongo && c.Mongo.URI == "" {
		return fmt.Errorf("mongo store needs mongo.uri or FLOWBOARD_MONGO_URI")
	}
	if _, err := layout.ParseStrategy(c.Layout.Strategy); err != nil {
		return err
	}
	return nil
}
