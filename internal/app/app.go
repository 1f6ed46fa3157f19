package app

import (
	"context"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/andy/clientes/internal/api"
	"github.com/andy/clientes/internal/cache"
	"github.com/andy/clientes/internal/config"
	"github.com/andy/clientes/internal/credentials"
	"github.com/andy/clientes/internal/logging"
	"github.com/andy/clientes/internal/repository"
	"github.com/andy/clientes/internal/service"
)

// App is the dependency injection container for all application components
type App struct {
	Config  *config.Config
	Logger  *logrus.Logger
	Keyring credentials.Keyring

	// Cache backs Clientes; the settings screen reports its size
	Cache *cache.Store

	// Repositories
	Clientes repository.ClienteRepository

	token     string
	logCloser io.Closer
}

// New creates a new App instance, initializing all dependencies
// It handles:
// 1. Loading config (file, .env, environment)
// 2. Opening the log file
// 3. Resolving the API token
// 4. Creating the HTTP client, service and cached repository
func New(ctx context.Context) (*App, error) {
	cfg, err := config.LoadDefault()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return NewWithConfig(ctx, cfg)
}

// NewWithConfig creates an App with a provided config (useful for testing)
func NewWithConfig(ctx context.Context, cfg *config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger, closer, err := logging.Setup(cfg.Log)
	if err != nil {
		return nil, err
	}

	keyring := credentials.NewKeyring()
	return assemble(cfg, logger, closer, keyring, credentials.ResolveToken(keyring)), nil
}

// NewWithDeps wires an App around an existing logger and token, without
// touching the keyring or the filesystem
func NewWithDeps(cfg *config.Config, logger *logrus.Logger, token string) *App {
	if logger == nil {
		logger = logging.Discard()
	}
	return assemble(cfg, logger, nil, nil, token)
}

func assemble(cfg *config.Config, logger *logrus.Logger, closer io.Closer, keyring credentials.Keyring, token string) *App {
	client := api.New(cfg.API.BaseURL,
		api.WithToken(token),
		api.WithLogger(logger),
	)
	store := cache.New()
	repo := repository.NewClienteRepo(service.NewClienteService(client), store, repository.StaleWindows{
		List:   cfg.Cache.ListStale,
		Detail: cfg.Cache.DetailStale,
		Search: cfg.Cache.SearchStale,
	}, logger)

	logger.WithFields(logrus.Fields{
		"base_url":   cfg.API.BaseURL,
		"with_token": token != "",
	}).Debug("app initialised")

	return &App{
		Config:    cfg,
		Logger:    logger,
		Keyring:   keyring,
		Cache:     store,
		Clientes:  repo,
		token:     token,
		logCloser: closer,
	}
}

// HasToken reports whether requests carry a bearer token
func (a *App) HasToken() bool {
	return a.token != ""
}

// Close cleanly shuts down the application
func (a *App) Close() error {
	if a.logCloser != nil {
		return a.logCloser.Close()
	}
	return nil
}

// SaveConfig saves the current configuration to disk
func (a *App) SaveConfig() error {
	return a.Config.Save(config.DefaultConfigPath())
}
