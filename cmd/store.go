package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/leadcheck/internal/store"
)

// initStore opens the run store selected by config.
func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "postgres":
		st, err := store.NewPostgres(ctx, cfg.Store.DatabaseURL)
		return st, eris.Wrap(err, "init postgres store")
	case "", "sqlite":
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = "leadcheck.db"
		}
		st, err := store.NewSQLite(dsn)
		return st, eris.Wrap(err, "init sqlite store")
	default:
		return nil, eris.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}
