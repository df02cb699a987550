package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/unkani/unkani/pkg/audit"
	"github.com/unkani/unkani/pkg/config"
	"github.com/unkani/unkani/pkg/db"
	"github.com/unkani/unkani/pkg/jobs"
	"github.com/unkani/unkani/pkg/mail"
	"github.com/unkani/unkani/pkg/ratelimit"
	"github.com/unkani/unkani/pkg/server"
	"github.com/unkani/unkani/pkg/server/endpoints"
)

// serverCmd represents the server command
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Run the unkani application server",
	Long: `Run the unkani application server.

The server requires UNKANI_SECRET_KEY, DATABASE_URL and REDIS_URL. Account
emails are queued in redis and sent by a worker running in the same process.

By default, database migrations are run on startup. Use --no-migrate to skip.`,
	Run: func(cmd *cobra.Command, args []string) {
		env, err := loadEnvironment()
		if err != nil {
			fail("%v", err)
		}
		cfg, logger := env.Config, env.Logger

		if cmd.Flags().Changed("port") {
			cfg.Port, _ = cmd.Flags().GetInt("port")
		}
		if cmd.Flags().Changed("bind-address") {
			cfg.BindAddress, _ = cmd.Flags().GetString("bind-address")
		}

		noMigrate, _ := cmd.Flags().GetBool("no-migrate")
		if !noMigrate {
			logger.Info().Msg("Running database migrations")
			if err := runMigrations(cfg.DatabaseURL); err != nil {
				fail("Migration failed: %v", err)
			}
		}

		auditStore, err := audit.NewStore(cfg.AuditDatabaseURL)
		if err != nil {
			fail("Unable to open audit database: %v", err)
		}
		if auditStore != nil {
			audit.SetStore(auditStore)
			defer func() { _ = auditStore.Close() }()
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		rdb, err := db.ConnectRedis(ctx, cfg.RedisURL)
		if err != nil {
			fail("Unable to connect to redis: %v", err)
		}
		defer func() { _ = rdb.Close() }()

		jobService, err := jobs.NewJobService(cfg.RedisURL, mail.NewClient(cfg.ResendAPIKey, cfg.MailFrom, logger), logger)
		if err != nil {
			fail("Unable to create job service: %v", err)
		}
		if err := jobService.Start(); err != nil {
			fail("Unable to start job server: %v", err)
		}
		defer jobService.Stop()

		accounts, err := env.accounts(jobs.NewMailer(jobService.Client, cfg.BaseURL, cfg.ConfirmationTTL()))
		if err != nil {
			fail("Unable to create account service: %v", err)
		}

		s := server.NewServer(cfg, env.Stores, accounts, ratelimit.NewRedisLimiter(rdb, ratelimit.DefaultPrefix), logger)
		s.Redis = rdb
		endpoints.RegisterAll(s)

		if watch, _ := cmd.Flags().GetBool("watch-config"); watch {
			go watchConfig(ctx, cfg.ConfigFilePath(), logger)
		}

		errs := make(chan error, 1)
		go func() { errs <- s.Start() }()

		select {
		case err := <-errs:
			if err != nil {
				fail("Server failed: %v", err)
			}
		case <-ctx.Done():
			logger.Info().Msg("Shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := s.Shutdown(shutdownCtx); err != nil {
				logger.Error().Err(err).Msg("Graceful shutdown failed")
			}
		}
	},
}

// watchConfig sets the global zerolog level from the config file whenever it
// changes. Other settings need a restart.
func watchConfig(ctx context.Context, path string, logger zerolog.Logger) {
	logger.Info().Str("path", path).Msg("Watching configuration file")
	err := config.Watch(ctx, path, func(cfg *config.Config, err error) {
		if err != nil {
			logger.Error().Err(err).Msg("Failed to reload configuration")
			return
		}
		if err := cfg.Validate(); err != nil {
			logger.Error().Err(err).Msg("Reloaded configuration is invalid, keeping the old one")
			return
		}
		lvl, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel))
		if err == nil {
			zerolog.SetGlobalLevel(lvl)
		}
		logger.Info().Str("log_level", cfg.LogLevel).Msg("Configuration reloaded")
	})
	if err != nil {
		logger.Error().Err(err).Msg("Configuration watcher stopped")
	}
}

func init() {
	rootCmd.AddCommand(serverCmd)

	serverCmd.Flags().IntP("port", "p", config.Default().Port, "server listen port")
	serverCmd.Flags().StringP("bind-address", "b", config.Default().BindAddress, "server bind address")
	serverCmd.Flags().Bool("no-migrate", false, "skip running database migrations on start")
	serverCmd.Flags().Bool("watch-config", false, "reload the configuration file when it changes")
}
