// Package cli implements the pedsignal command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/pedsignal/pkg/buildinfo"
	"github.com/matzehuels/pedsignal/pkg/cache"
	"github.com/matzehuels/pedsignal/pkg/config"
	"github.com/matzehuels/pedsignal/pkg/pipeline"
	"github.com/matzehuels/pedsignal/pkg/store"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "pedsignal"

	// defaultTop is how many weighted individuals climb prints by default.
	defaultTop = 15
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	cfg        config.Config
}

// New creates a new CLI instance with a default logger and the built-in
// configuration. The configuration file is read when a command runs.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		cfg:    config.Default(),
	}
}

// SetLogLevel updates the logger's level. At debug level the analysis,
// climb and cache events are logged as well.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
	if level <= log.DebugLevel {
		registerLogHooks(c.Logger)
	}
}

// Config returns the configuration in effect.
func (c *CLI) Config() config.Config { return c.cfg }

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Pedsignal traces ancestry and climbs weights through pedigrees",
		Long: `Pedsignal analyzes genealogical pedigrees. It lists the ancestors and
descendants of individuals, finds the common ancestors and descent cones of a
group, and propagates a weight from sample individuals up through their
ancestors one generation at a time.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := c.loadConfig(); err != nil {
				return err
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			cmd.SetContext(withLogger(ctx, c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: $XDG_CONFIG_HOME/pedsignal/config.toml)")

	root.AddCommand(c.infoCommand())
	root.AddCommand(c.lineageCommand())
	root.AddCommand(c.descendantsCommand())
	root.AddCommand(c.conesCommand())
	root.AddCommand(c.climbCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.reportsCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

func (c *CLI) loadConfig() error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.cfg = cfg
	if c.Logger.GetLevel() > log.DebugLevel {
		c.Logger.SetLevel(cfg.LogLevel())
	}
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner wired to the configured cache and
// report store. The caller closes it.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	ch := c.newCache(ctx, noCache)

	var keyer cache.Keyer
	if c.cfg.Cache.Prefix != "" {
		keyer = cache.NewScopedKeyer(nil, c.cfg.Cache.Prefix)
	}

	runner := pipeline.NewRunner(ch, keyer, c.Logger)
	runner.TTL = c.cfg.Cache.TTL

	st, err := c.newStore(ctx)
	if err != nil {
		_ = ch.Close()
		return nil, err
	}
	return runner.WithStore(st), nil
}

// newCache builds the configured cache. Backends that cannot be reached
// degrade to no caching with a warning.
func (c *CLI) newCache(ctx context.Context, noCache bool) cache.Cache {
	if noCache {
		return cache.NewNullCache()
	}

	cfg := c.cfg.Cache
	switch cfg.Backend {
	case config.CacheNone:
		return cache.NewNullCache()
	case config.CacheMemory:
		return cache.NewMemoryCache()
	case config.CacheRedis:
		rc, err := cache.NewRedisCache(ctx, cfg.RedisURL)
		if err != nil {
			c.Logger.Warn("redis cache unavailable, caching disabled", "error", err)
			return cache.NewNullCache()
		}
		return rc
	default:
		fc, err := cache.NewFileCache(cfg.Dir)
		if err != nil {
			c.Logger.Warn("file cache unavailable, caching disabled", "dir", cfg.Dir, "error", err)
			return cache.NewNullCache()
		}
		return fc
	}
}

func (c *CLI) newStore(ctx context.Context) (store.Store, error) {
	cfg := c.cfg.Store
	switch cfg.Backend {
	case config.StoreMongo:
		s, err := store.NewMongoStore(ctx, store.MongoConfig{
			URI:        cfg.MongoURI,
			Database:   cfg.Database,
			Collection: cfg.Collection,
		})
		if err != nil {
			return nil, fmt.Errorf("connect report store: %w", err)
		}
		return s, nil
	case config.StoreFile:
		s, err := store.NewFileStore(cfg.Dir)
		if err != nil {
			return nil, fmt.Errorf("open report store: %w", err)
		}
		return s, nil
	default:
		return store.NewMemoryStore(), nil
	}
}

// bareRunner returns a runner with no cache and no store.
func (c *CLI) bareRunner(ctx context.Context) *pipeline.Runner {
	return pipeline.NewRunner(nil, nil, loggerFromContext(ctx))
}

// loadPedigree reads a pedigree without touching the cache or the store.
func (c *CLI) loadPedigree(ctx context.Context, path string) (*pipeline.Pedigree, error) {
	p, err := c.bareRunner(ctx).Load(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("load pedigree: %w", err)
	}
	return p, nil
}
