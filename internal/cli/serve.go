package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/masonry/internal/server"
	"github.com/matzehuels/masonry/pkg/cache"
	"github.com/matzehuels/masonry/pkg/pipeline"
	"github.com/matzehuels/masonry/pkg/session"
)

// serveCommand creates the command that runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var addr, redisAddr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the layout HTTP API.

Configuration is read from the environment (MASONRY_ADDR, MASONRY_REDIS_ADDR,
MASONRY_REDIS_PASSWORD, MASONRY_REDIS_DB, MASONRY_KEY_PREFIX,
MASONRY_SESSION_TTL, MASONRY_REQUEST_TIMEOUT, MASONRY_MAX_BODY_BYTES); flags
override it. Without Redis, sessions and cached layouts live in the local
cache directory and are not shared between replicas.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := server.LoadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Addr = addr
			}
			if cmd.Flags().Changed("redis") {
				cfg.RedisAddr = redisAddr
			}
			return c.runServe(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVar(&redisAddr, "redis", "", "Redis address for sessions and cached layouts")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, cfg server.Config) error {
	store, keyer, err := serverCache(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open cache: %w", err)
	}

	runner := pipeline.NewRunner(store, keyer, c.Logger)
	runner.Sessions = session.NewStore(store, keyer, cfg.SessionTTL)
	defer runner.Close()

	return server.New(runner, c.Logger, cfg).ListenAndServe(ctx)
}

// serverCache opens the cache backend selected by cfg. Redis keys are
// prefixed so several deployments can share one database.
func serverCache(ctx context.Context, cfg server.Config) (cache.Cache, cache.Keyer, error) {
	if cfg.RedisAddr != "" {
		c, err := cache.NewRedisCache(ctx, cache.RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return nil, nil, err
		}
		return c, cache.NewScopedKeyer(nil, cfg.KeyPrefix), nil
	}

	dir, err := cacheDir()
	if err != nil {
		return nil, nil, err
	}
	c, err := cache.NewFileCache(dir)
	if err != nil {
		return nil, nil, err
	}
	return c, cache.NewDefaultKeyer(), nil
}
