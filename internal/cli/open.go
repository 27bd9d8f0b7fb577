package cli

import (
	"github.com/puraz/pure-paste/internal/config"
	"github.com/puraz/pure-paste/internal/store"
)

// openStore loads the config and opens the history database. Shared by
// every command that touches persisted state.
func openStore(opts *RootOptions) (config.Config, *store.Store, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return config.Config{}, nil, WrapExitError(ExitCommandError, "failed to load config", err)
	}

	st, err := store.Open(cfg.DatabasePath)
	if err != nil {
		return config.Config{}, nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	return cfg, st, nil
}
