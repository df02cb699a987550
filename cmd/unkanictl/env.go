package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/unkani/unkani/pkg/account"
	"github.com/unkani/unkani/pkg/config"
	"github.com/unkani/unkani/pkg/db"
	"github.com/unkani/unkani/pkg/logging"
	"github.com/unkani/unkani/pkg/security"
	"github.com/unkani/unkani/pkg/server"
)

// environment holds what most commands need: validated configuration,
// a logger and the database with its stores
type environment struct {
	Config *config.Config
	Logger zerolog.Logger
	DB     *gorm.DB
	Stores server.Stores
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	security.BcryptCost = cfg.BcryptCost
	return cfg, nil
}

func loadEnvironment() (*environment, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	logger := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stderr)

	database, err := db.Connect(db.Config{URL: cfg.DatabaseURL, Debug: logging.IsDebug(logger)})
	if err != nil {
		return nil, err
	}

	return &environment{
		Config: cfg,
		Logger: logger,
		DB:     database,
		Stores: server.GormStores(database, cfg),
	}, nil
}

// accounts returns an account service sending mail through mailer.
// Commands that never send mail pass nil.
func (e *environment) accounts(mailer account.Mailer) (*account.Service, error) {
	signer, err := security.NewSigner(e.Config.SecretKey)
	if err != nil {
		return nil, err
	}
	return account.NewService(e.Stores.Users, e.Stores.Roles, e.Stores.AppGroups, signer, mailer, account.Options{
		TokenTTL:        e.Config.TokenTTL(),
		ConfirmationTTL: e.Config.ConfirmationTTL(),
		Logger:          e.Logger,
	}), nil
}

func fail(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
