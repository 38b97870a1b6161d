package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/flowboard/pkg/buildinfo"
	"github.com/matzehuels/flowboard/pkg/cache"
	"github.com/matzehuels/flowboard/pkg/pipeline"
	"github.com/matzehuels/flowboard/pkg/session"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "flowboard"

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
	Config Config

	configPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: DefaultConfig(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	applyLevel(c.Logger, level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Flowboard lays out and routes flow diagrams",
		Long:         `Flowboard is a CLI tool for laying out flow diagrams, routing their edges between 16 anchor points per node and exporting the result as SVG, PNG, PDF or DOT.`,
		Version:      buildinfo.Get().Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig(c.configPath)
			if err != nil {
				return err
			}
			c.Config = cfg
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: ./flowboard.toml or ~/.config/flowboard/flowboard.toml)")

	// Register all subcommands
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.anchorsCommand())
	root.AddCommand(c.freezeCommand())
	root.AddCommand(c.resetCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	cch, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	store, err := c.newStore(ctx)
	if err != nil {
		cch.Close()
		return nil, err
	}
	keyer := cache.Namespace(cache.NewDefaultKeyer(), c.Config.Cache.Namespace)
	return pipeline.NewRunner(cache.Instrument(cch), keyer, store, c.Logger), nil
}

func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch c.Config.Cache.Backend {
	case backendNone:
		return cache.NewNullCache(), nil
	case backendRedis:
		rc, err := cache.NewRedisCache(ctx, c.Config.Redis.Addr, c.Config.Redis.Password, c.Config.Redis.DB)
		if err != nil {
			c.Logger.Warn("redis cache unavailable, caching disabled", "addr", c.Config.Redis.Addr, "err", err)
			return cache.NewNullCache(), nil
		}
		return rc, nil
	}
	dir := c.Config.Cache.Dir
	if dir == "" {
		var err error
		if dir, err = cacheDir(); err != nil {
			return cache.NewNullCache(), nil
		}
	}
	return cache.NewFileCache(dir)
}

// newStore opens the configured board-state store, instrumented with the
// session hooks.
func (c *CLI) newStore(ctx context.Context) (session.Store, error) {
	var (
		store session.Store
		err   error
	)
	backend := c.Config.Store.Backend
	switch backend {
	case backendMemory:
		store = session.NewMemoryStore()
	case backendRedis:
		store, err = session.NewRedisStore(ctx, session.RedisConfig{
			Addr:     c.Config.Redis.Addr,
			Password: c.Config.Redis.Password,
			DB:       c.Config.Redis.DB,
		})
	case backendMongo:
		store, err = session.NewMongoStore(ctx, session.MongoConfig{
			URI:        c.Config.Mongo.URI,
			Database:   c.Config.Mongo.Database,
			Collection: c.Config.Mongo.Collection,
		})
	case backendBadger:
		dir := c.Config.Store.Dir
		if dir == "" {
			var base string
			if base, err = configDir(); err != nil {
				break
			}
			dir = filepath.Join(base, "boards.db")
		}
		store, err = session.NewBadgerStore(session.BadgerConfig{Dir: dir, Logger: c.Logger})
	default:
		backend = backendFile
		store, err = session.NewFileStore(c.Config.Store.Dir)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", backend, err)
	}
	c.Logger.Debug("opened board store", "backend", backend)
	return session.Instrument(store, backend), nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/flowboard/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// configDir returns the config directory using XDG standard (~/.config/flowboard/).
func configDir() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName), nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// setCLIDefaults applies config-file defaults on top of pipeline defaults.
func (c *CLI) setCLIDefaults(opts *pipeline.Options) {
	if opts.Strategy == "" {
		opts.Strategy = c.Config.Layout.Strategy
	}
	if opts.CanvasW == 0 {
		opts.CanvasW = c.Config.Layout.CanvasW
	}
	if opts.CanvasH == 0 {
		opts.CanvasH = c.Config.Layout.CanvasH
	}
	opts.SetLayoutDefaults()
	opts.SetRenderDefaults()
	opts.Logger = c.Logger
}

// addLayoutFlags binds the layout flags shared by several commands.
func addLayoutFlags(cmd *cobra.Command, opts *pipeline.Options) {
	cmd.Flags().StringVarP(&opts.Strategy, "strategy", "s", "", "layout strategy: flow (default), grouped, grid")
	cmd.Flags().Float64Var(&opts.CanvasW, "width", 0, "canvas width")
	cmd.Flags().Float64Var(&opts.CanvasH, "height", 0, "canvas height")
	cmd.Flags().Float64Var(&opts.GapX, "gap-x", 0, "horizontal gap between columns")
	cmd.Flags().Float64Var(&opts.GapY, "gap-y", 0, "vertical gap between nodes")
	_ = cmd.RegisterFlagCompletionFunc("strategy", completeStrategy)
}
