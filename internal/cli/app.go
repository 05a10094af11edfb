package cli

import (
	"context"
	"fmt"

	"github.com/syou6162/diffchunk/internal/config"
	"github.com/syou6162/diffchunk/internal/executor"
	"github.com/syou6162/diffchunk/internal/logger"
	"github.com/syou6162/diffchunk/internal/validator"
)

type appKey struct{}

type App struct {
	Config    config.Config
	Logger    *logger.Logger
	Executor  executor.CommandExecutor
	Validator *validator.Validator
}

// appFactory builds the App from the --config value
type appFactory func(configPath string) (*App, error)

func withApp(ctx context.Context, app *App) context.Context {
	return context.WithValue(ctx, appKey{}, app)
}

func getApp(ctx context.Context) (*App, error) {
	app, ok := ctx.Value(appKey{}).(*App)
	if !ok || app == nil {
		return nil, fmt.Errorf("internal error: app not initialized")
	}
	return app, nil
}

func initApp(configPath string) (*App, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	log := cfg.Logger()
	exec := executor.NewRealCommandExecutor(log)
	return &App{
		Config:    cfg,
		Logger:    log,
		Executor:  exec,
		Validator: validator.NewValidator(exec),
	}, nil
}
