// Package config loads pedsignal settings from a TOML file.
//
// Settings are resolved in three layers: built-in defaults, the TOML file,
// then environment variables. Command-line flags are applied by the caller
// on top of the result.
//
//	[log]
//	level = "debug"
//
//	[cache]
//	backend = "redis"
//	redis_url = "redis://localhost:6379/0"
//	ttl = "24h"
//
//	[store]
//	backend = "mongo"
//	mongo_uri = "mongodb://localhost:27017"
//
//	[climb]
//	max_steps = 12
//	probands = 10
//
//	[server]
//	addr = ":8080"
//	pedigree = "/data/pedEx2.txt"
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	perrors "github.com/matzehuels/pedsignal/pkg/errors"
)

const appName = "pedsignal"

// Environment variables that override file settings.
const (
	EnvRedisAddr = "PEDSIGNAL_REDIS_ADDR"
	EnvMongoURI  = "PEDSIGNAL_MONGO_URI"
	EnvCacheDir  = "PEDSIGNAL_CACHE_DIR"
)

// Cache backends.
const (
	CacheFile   = "file"
	CacheMemory = "memory"
	CacheRedis  = "redis"
	CacheNone   = "none"
)

// Store backends.
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreMongo  = "mongo"
)

// Config is the full settings tree.
type Config struct {
	Log    LogConfig    `toml:"log"`
	Cache  CacheConfig  `toml:"cache"`
	Store  StoreConfig  `toml:"store"`
	Climb  ClimbConfig  `toml:"climb"`
	Server ServerConfig `toml:"server"`
}

type LogConfig struct {
	Level string `toml:"level"`
}

type CacheConfig struct {
	Backend  string        `toml:"backend"`
	Dir      string        `toml:"dir"`
	RedisURL string        `toml:"redis_url"`
	Prefix   string        `toml:"prefix"`
	TTL      time.Duration `toml:"ttl"`
}

type StoreConfig struct {
	Backend    string `toml:"backend"`
	Dir        string `toml:"dir"`
	MongoURI   string `toml:"mongo_uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

// ClimbConfig holds defaults for climb runs.
type ClimbConfig struct {
	// MaxSteps caps advancing steps; 0 climbs until exhaustion.
	MaxSteps int `toml:"max_steps"`
	// Probands is how many probands, in load order, become samples when
	// none are given explicitly.
	Probands int `toml:"probands"`
	// RestrictCone confines propagation to the samples' descent cones.
	RestrictCone bool `toml:"restrict_cone"`
}

type ServerConfig struct {
	Addr         string        `toml:"addr"`
	Pedigree     string        `toml:"pedigree"`
	ReadTimeout  time.Duration `toml:"read_timeout"`
	WriteTimeout time.Duration `toml:"write_timeout"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Log: LogConfig{Level: "info"},
		Cache: CacheConfig{
			Backend: CacheFile,
			Dir:     defaultCacheDir(),
			TTL:     7 * 24 * time.Hour,
		},
		Store: StoreConfig{
			Backend:    StoreMemory,
			Dir:        defaultDataDir(),
			Database:   appName,
			Collection: "reports",
		},
		Climb: ClimbConfig{Probands: 10},
		Server: ServerConfig{
			Addr:         ":8080",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 60 * time.Second,
		},
	}
}

// Load reads path on top of Default, applies environment overrides and
// validates the result. An empty path tries DefaultPath and silently
// falls back to defaults when that file does not exist.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	if path != "" {
		_, err := toml.DecodeFile(path, &cfg)
		switch {
		case err == nil:
		case errors.Is(err, fs.ErrNotExist) && !explicit:
		case errors.Is(err, fs.ErrNotExist):
			return Config{}, perrors.Wrap(perrors.ErrCodeFileNotFound, err, "config file not found: %s", path)
		default:
			return Config{}, perrors.Wrap(perrors.ErrCodeInvalidConfig, err, "parse %s", path)
		}
	}

	cfg.applyEnv(os.LookupEnv)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Parse decodes TOML text on top of Default without touching the
// environment. It is used by tests and by callers that embed a config.
func Parse(text string) (Config, error) {
	cfg := Default()
	if _, err := toml.Decode(text, &cfg); err != nil {
		return Config{}, perrors.Wrap(perrors.ErrCodeInvalidConfig, err, "parse config")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvRedisAddr); ok && v != "" {
		c.Cache.RedisURL = v
		c.Cache.Backend = CacheRedis
	}
	if v, ok := lookup(EnvMongoURI); ok && v != "" {
		c.Store.MongoURI = v
		c.Store.Backend = StoreMongo
	}
	if v, ok := lookup(EnvCacheDir); ok && v != "" {
		c.Cache.Dir = v
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/pedsignal/config.toml, falling back
// to ~/.config. It returns "" when no home directory is known.
func DefaultPath() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, "config.toml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", appName, "config.toml")
}

// defaultCacheDir follows XDG (~/.cache/pedsignal).
func defaultCacheDir() string {
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), appName)
	}
	return filepath.Join(home, ".cache", appName)
}

// defaultDataDir is where the file store keeps reports
// (~/.local/share/pedsignal/reports).
func defaultDataDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, appName, "reports")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), appName, "reports")
	}
	return filepath.Join(home, ".local", "share", appName, "reports")
}
