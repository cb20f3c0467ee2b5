package config

import (
	"slices"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/pedsignal/pkg/errors"
)

// Validate checks every section and returns the first problem as an
// INVALID_CONFIG error.
func (c *Config) Validate() error {
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return errors.New(errors.ErrCodeInvalidConfig, "log.level: unknown level %q", c.Log.Level)
	}

	switch c.Cache.Backend {
	case CacheFile:
		if c.Cache.Dir == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "cache.dir cannot be empty for the file backend")
		}
	case CacheRedis:
		if err := errors.ValidateURI(c.Cache.RedisURL, "redis", "rediss"); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "cache.redis_url")
		}
	case CacheMemory, CacheNone:
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "cache.backend must be one of %v, got %q",
			[]string{CacheFile, CacheMemory, CacheRedis, CacheNone}, c.Cache.Backend)
	}
	if c.Cache.TTL < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "cache.ttl must be >= 0, got %s", c.Cache.TTL)
	}

	stores := []string{StoreMemory, StoreFile, StoreMongo}
	if !slices.Contains(stores, c.Store.Backend) {
		return errors.New(errors.ErrCodeInvalidConfig, "store.backend must be one of %v, got %q",
			stores, c.Store.Backend)
	}
	if c.Store.Backend == StoreFile && c.Store.Dir == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "store.dir cannot be empty for the file backend")
	}
	if c.Store.Backend == StoreMongo {
		if err := errors.ValidateURI(c.Store.MongoURI, "mongodb", "mongodb+srv"); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "store.mongo_uri")
		}
		if c.Store.Database == "" || c.Store.Collection == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "store.database and store.collection are required for mongo")
		}
	}

	if c.Climb.MaxSteps < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "climb.max_steps must be >= 0, got %d", c.Climb.MaxSteps)
	}
	if c.Climb.Probands < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "climb.probands must be >= 0, got %d", c.Climb.Probands)
	}

	if c.Server.Addr == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "server.addr cannot be empty")
	}
	if c.Server.Pedigree != "" {
		if err := errors.ValidatePath(c.Server.Pedigree); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "server.pedigree")
		}
	}
	if c.Server.ReadTimeout < 0 || c.Server.WriteTimeout < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "server timeouts must be >= 0")
	}
	return nil
}

// LogLevel returns the parsed log level. Validate has already rejected
// unknown names, so the fallback is info.
func (c *Config) LogLevel() log.Level {
	lvl, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}
