package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/orderpipe/internal/ordercache"
	"github.com/nikolayk812/orderpipe/internal/port"
	"github.com/nikolayk812/orderpipe/internal/repository"
	"github.com/nikolayk812/orderpipe/pkg/config"
	"github.com/nikolayk812/orderpipe/pkg/logger"
	"github.com/spf13/cobra"
)

// Deps is everything the commands share.
type Deps struct {
	Config config.Config
	Store  port.KeyValueStore
	Log    *slog.Logger
}

func (d Deps) cache() *ordercache.Cache {
	return ordercache.New(d.Store,
		ordercache.WithKey(d.Config.OrderCacheKey),
		ordercache.WithMaxOrders(d.Config.OrderCacheMax),
		ordercache.WithTTL(d.Config.OrderCacheTTL),
		ordercache.WithLogger(d.Log))
}

func NewRootCmd(deps Deps) *cobra.Command {
	root := &cobra.Command{
		Use:           "orderclient",
		Short:         "Place orders and inspect the local order cache",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newSubmitCmd(deps))
	root.AddCommand(newListCmd(deps))

	return root
}

func Execute() error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}

	log := logger.New(logger.Options{
		Service: "orderclient",
		Env:     cfg.AppEnv,
		Level:   cfg.LogLevel,
		Output:  os.Stderr,
	})

	store, closeStore := openStore(ctx, cfg, log)
	defer closeStore()

	cmd := NewRootCmd(Deps{Config: cfg, Store: store, Log: log})
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), err)
		return err
	}

	return nil
}

// openStore prefers Postgres when a DSN is set, then a file under StorageDir,
// then a process local store.
func openStore(ctx context.Context, cfg config.Config, log *slog.Logger) (port.KeyValueStore, func()) {
	if cfg.StorageDSN != "" {
		store, closeStore, err := openPostgresStore(ctx, cfg)
		if err == nil {
			return store, closeStore
		}
		log.Warn("postgres order cache store unavailable, using file", "err", err)
	}

	store, err := openFileStore(cfg)
	if err == nil {
		return store, func() {}
	}
	log.Warn("file order cache store unavailable, using memory", "err", err)

	return repository.NewMemoryStore(cfg.StorageQuotaBytes), func() {}
}

func openPostgresStore(ctx context.Context, cfg config.Config) (*repository.PostgresStore, func(), error) {
	pool, err := pgxpool.New(ctx, cfg.StorageDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("pgxpool.New: %w", err)
	}

	store, err := repository.NewPostgresStore(pool, cfg.StorageQuotaBytes)
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("repository.NewPostgresStore: %w", err)
	}

	if err := store.Migrate(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("store.Migrate: %w", err)
	}

	return store, pool.Close, nil
}

func openFileStore(cfg config.Config) (*repository.FileStore, error) {
	dir := cfg.StorageDir
	if dir == "" {
		var err error
		if dir, err = repository.DefaultFileStoreDir(); err != nil {
			return nil, fmt.Errorf("repository.DefaultFileStoreDir: %w", err)
		}
	}

	store, err := repository.NewFileStore(dir, cfg.StorageQuotaBytes)
	if err != nil {
		return nil, fmt.Errorf("repository.NewFileStore: %w", err)
	}

	return store, nil
}
