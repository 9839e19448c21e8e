package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/at-ishikawa/reviewdeck/internal/config"
	"github.com/at-ishikawa/reviewdeck/internal/database"
	"github.com/at-ishikawa/reviewdeck/internal/store"
	"github.com/at-ishikawa/reviewdeck/internal/store/remote"
	"github.com/at-ishikawa/reviewdeck/internal/store/sqlstore"
	"github.com/at-ishikawa/reviewdeck/internal/store/yamlstore"
)

const pingAttempts = 5

// buildStore opens the configured store, wrapped in a store.Mirror when a mirror driver is set.
func buildStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	primary, err := openStore(ctx, cfg, cfg.Store.Driver)
	if err != nil {
		return nil, err
	}
	if cfg.Store.Mirror == "" {
		return primary, nil
	}
	if cfg.Store.Mirror == cfg.Store.Driver {
		slog.Warn("ignoring mirror store identical to the primary store", "driver", cfg.Store.Driver)
		return primary, nil
	}

	secondary, err := openStore(ctx, cfg, cfg.Store.Mirror)
	if err != nil {
		_ = primary.Close()
		return nil, fmt.Errorf("mirror store > %w", err)
	}
	return store.NewMirror(primary, secondary), nil
}

func openStore(ctx context.Context, cfg *config.Config, driver string) (store.Store, error) {
	logger := slog.Default().With("store", driver)

	switch driver {
	case config.DriverMemory:
		return store.NewMemory(), nil
	case config.DriverYAML:
		st, err := yamlstore.New(cfg.Store.Directory, cfg.LearnerID, logger)
		if err != nil {
			return nil, fmt.Errorf("yamlstore.New() > %w", err)
		}
		return st, nil
	case config.DriverMySQL:
		db, err := database.Open(cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("database.Open() > %w", err)
		}
		if err := database.Ping(ctx, db, pingAttempts); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("database.Ping() > %w", err)
		}
		return newSQLStore(ctx, db, sqlstore.MySQL, cfg.LearnerID, logger)
	case config.DriverSQLite:
		db, err := database.OpenSQLite(cfg.SQLite)
		if err != nil {
			return nil, fmt.Errorf("database.OpenSQLite() > %w", err)
		}
		return newSQLStore(ctx, db, sqlstore.SQLite, cfg.LearnerID, logger)
	case config.DriverRemote:
		client, err := remote.New(remote.Options{
			BaseURL:       cfg.Remote.BaseURL,
			APIKey:        cfg.Remote.APIKey,
			LearnerID:     cfg.LearnerID,
			Timeout:       time.Duration(cfg.Remote.TimeoutSeconds) * time.Second,
			RetryAttempts: cfg.Remote.RetryAttempts,
			Logger:        logger,
		})
		if err != nil {
			return nil, fmt.Errorf("remote.New() > %w", err)
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unsupported store driver %q", driver)
	}
}

func newSQLStore(ctx context.Context, db *sqlx.DB, dialect sqlstore.Dialect, learnerID string, logger *slog.Logger) (store.Store, error) {
	st, err := sqlstore.New(db, dialect, learnerID, logger)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlstore.New() > %w", err)
	}
	if err := st.EnsureSchema(ctx); err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("EnsureSchema() > %w", err)
	}
	return st, nil
}
