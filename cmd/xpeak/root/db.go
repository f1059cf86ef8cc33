package root

import (
	"context"

	"go.uber.org/zap"

	"xpeak/internal/ai"
	"xpeak/internal/engine"
	"xpeak/internal/storage"
)

func openRepo(ctx context.Context) (*storage.SnapshotRepo, func(), error) {
	db, err := storage.Open(ctx, cfg.DBPath)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		_ = db.Close()
	}
	return storage.NewSnapshotRepo(db), cleanup, nil
}

// openStore opens the configured user's store. The Gemini assistant is wired
// in only when an API key is configured.
func openStore(ctx context.Context) (*engine.Store, *storage.SnapshotRepo, func(), error) {
	repo, cleanup, err := openRepo(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		cleanup()
		return nil, nil, nil, err
	}

	opts := []engine.Option{
		engine.WithLocation(loc),
		engine.WithLogger(logger),
		engine.WithUserName(cfg.UserName),
	}
	if cfg.AI.APIKey != "" {
		assistant, err := ai.New(ctx, ai.Config{
			APIKey:            cfg.AI.APIKey,
			Model:             cfg.AI.Model,
			RequestsPerMinute: cfg.AI.RequestsPerMinute,
		}, logger.Named("ai"))
		if err != nil {
			cleanup()
			return nil, nil, nil, err
		}
		opts = append(opts, engine.WithAssistant(assistant))
	} else {
		logger.Debug("ai assistant disabled: no api key")
	}

	store, err := engine.Open(ctx, repo, cfg.UserID, opts...)
	if err != nil {
		cleanup()
		return nil, nil, nil, err
	}
	logger.Debug("store opened", zap.String("user_id", cfg.UserID), zap.String("db", cfg.DBPath))
	return store, repo, cleanup, nil
}
