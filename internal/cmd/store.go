package cmd

import (
	"context"
	"fmt"

	"github.com/shelfline/shelfline/internal/assistant"
	"github.com/shelfline/shelfline/internal/config"
	"github.com/shelfline/shelfline/internal/core/store"
	"github.com/shelfline/shelfline/internal/inventory"
	"github.com/shelfline/shelfline/internal/market"
	"github.com/shelfline/shelfline/internal/observability"
)

func openStore(ctx context.Context) (*store.Store, *config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	db, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return nil, nil, err
	}

	if err := db.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, nil, err
	}

	return db, cfg, nil
}

// withService opens the store, runs fn against the inventory service, and
// closes the store afterwards.
func withService(ctx context.Context, fn func(context.Context, *config.Config, *inventory.Service) error) error {
	db, cfg, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer db.Close() // nolint:errcheck // best-effort cleanup

	service := inventory.NewService(db, observability.CLILogger)
	return fn(ctx, cfg, service)
}

// buildMarket constructs the OAuth flow and authenticated marketplace client
// from config, backed by the token store.
func buildMarket(cfg *config.Config, tokens market.TokenStore) (*market.Client, *market.OAuth) {
	oauth := market.NewOAuth(cfg.Market, tokens, observability.CLILogger)
	client := market.NewClient(cfg.Market, oauth, observability.CLILogger)
	return client, oauth
}

// newSuggester builds the assistant suggester, loading any prompt overrides
// from the configured prompt directory.
func newSuggester(cfg *config.Config) (*assistant.Suggester, error) {
	prompts, err := assistant.LoadPromptDir(cfg.Assistant.PromptDir)
	if err != nil {
		return nil, fmt.Errorf("load prompts: %w", err)
	}
	client := assistant.NewClient(cfg.Assistant)
	return assistant.NewSuggester(client, prompts, observability.CLILogger), nil
}
