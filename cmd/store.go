package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/carbonref/factor-cli/internal/quality"
	"github.com/carbonref/factor-cli/internal/store"
)

// openStore builds the configured storage backend.
func openStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		return store.NewSQLite(cfg.Store.DatabaseURL)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, cfg.Store.MaxConns, cfg.Store.MinConns)
	default:
		return nil, eris.Errorf("unknown store driver %q (expected sqlite or postgres)", cfg.Store.Driver)
	}
}

// newQualityEngine builds the pedigree engine, loading a weighting
// scheme from file when one is configured.
func newQualityEngine() (*quality.Engine, error) {
	qcfg := quality.DefaultConfig()
	if cfg.Quality.WeightsFile != "" {
		loaded, err := quality.LoadConfig(cfg.Quality.WeightsFile)
		if err != nil {
			return nil, err
		}
		qcfg = loaded
	}
	return quality.NewEngine(qcfg)
}
