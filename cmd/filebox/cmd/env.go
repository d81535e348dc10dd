package cmd

import (
	"context"
	"fmt"

	"github.com/templui/filebox/internal/app"
	"github.com/templui/filebox/internal/config"
	"github.com/templui/filebox/internal/logger"
)

// loadConfig reads and validates the same environment the server uses
func loadConfig() (*config.Config, error) {
	cfg := config.Load()
	logger.Init(cfg.IsDevelopment(), cfg.LogLevel, "")

	err := cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// withApp runs fn against a fully wired app and closes it afterwards
func withApp(ctx context.Context, fn func(a *app.App) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	a, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	return fn(a)
}
