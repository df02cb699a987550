package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/unkani/unkani/pkg/jobs"
	"github.com/unkani/unkani/pkg/logging"
	"github.com/unkani/unkani/pkg/mail"
)

// workerCmd represents the worker command
var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Run a standalone email worker",
	Long: `Run a worker that sends queued account emails.

The server already runs a worker; extra workers share the queue in REDIS_URL.
The worker stops on SIGINT or SIGTERM after finishing running tasks.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig()
		if err != nil {
			fail("%v", err)
		}
		logger := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stderr)

		jobService, err := jobs.NewJobService(cfg.RedisURL, mail.NewClient(cfg.ResendAPIKey, cfg.MailFrom, logger), logger)
		if err != nil {
			fail("Unable to create job service: %v", err)
		}
		if err := jobService.Start(); err != nil {
			fail("Unable to start job server: %v", err)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		<-ctx.Done()

		jobService.Stop()
	},
}

func init() {
	rootCmd.AddCommand(workerCmd)
}
