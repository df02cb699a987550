// Package jobs runs background work on an asynq queue stored in redis.
//
// The API server enqueues account emails with Mailer; the worker started
// by JobService.Start renders and sends them. Failed sends are retried by
// asynq.
package jobs

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/unkani/unkani/pkg/mail"
)

// EmailSender delivers a templated email
type EmailSender interface {
	SendTemplate(ctx context.Context, to string, tmpl mail.Template, data map[string]string) error
}

// JobService holds the asynq client used to enqueue and the worker server
type JobService struct {
	Client *asynq.Client

	server *asynq.Server
	sender EmailSender
	logger zerolog.Logger
}

// NewJobService connects to the redis instance at redisURL
func NewJobService(redisURL string, sender EmailSender, logger zerolog.Logger) (*JobService, error) {
	opt, err := asynq.ParseRedisURI(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: 10,
		Queues: map[string]int{
			"critical": 6,
			"default":  3,
			"low":      1,
		},
		Logger:   asynqLogger{logger},
		LogLevel: asynq.WarnLevel,
	})

	return &JobService{
		Client: asynq.NewClient(opt),
		server: server,
		sender: sender,
		logger: logger,
	}, nil
}

// Mux returns the task routing used by the worker
func (j *JobService) Mux() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskSendEmail, j.handleSendEmailTask)
	return mux
}

// Start starts processing tasks in the background
func (j *JobService) Start() error {
	j.logger.Info().Msg("Starting background job server")
	return j.server.Start(j.Mux())
}

// Stop waits for running tasks and closes the enqueueing client
func (j *JobService) Stop() {
	j.logger.Info().Msg("Stopping background job server")
	j.server.Shutdown()
	if err := j.Client.Close(); err != nil {
		j.logger.Warn().Err(err).Msg("Failed to close job client")
	}
}

func (j *JobService) handleSendEmailTask(ctx context.Context, t *asynq.Task) error {
	var p EmailPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("failed to unmarshal email payload: %v: %w", err, asynq.SkipRetry)
	}

	log := j.logger.With().Str("template", string(p.Template)).Str("to", p.To).Logger()
	log.Info().Msg("Processing email task")

	if err := j.sender.SendTemplate(ctx, p.To, p.Template, p.Data); err != nil {
		log.Error().Err(err).Msg("Failed to send email")
		return err
	}

	log.Info().Msg("Successfully sent email")
	return nil
}

type asynqLogger struct {
	logger zerolog.Logger
}

func (l asynqLogger) Debug(args ...interface{}) { l.logger.Debug().Msg(fmt.Sprint(args...)) }
func (l asynqLogger) Info(args ...interface{})  { l.logger.Info().Msg(fmt.Sprint(args...)) }
func (l asynqLogger) Warn(args ...interface{})  { l.logger.Warn().Msg(fmt.Sprint(args...)) }
func (l asynqLogger) Error(args ...interface{}) { l.logger.Error().Msg(fmt.Sprint(args...)) }
func (l asynqLogger) Fatal(args ...interface{}) { l.logger.Fatal().Msg(fmt.Sprint(args...)) }
