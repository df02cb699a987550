package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"

	"github.com/unkani/unkani/pkg/mail"
)

const (
	// TaskSendEmail routes templated account emails to handleSendEmailTask
	TaskSendEmail = "email:send"
)

// EmailPayload is the JSON payload of a TaskSendEmail task
type EmailPayload struct {
	To       string            `json:"to"`
	Template mail.Template     `json:"template"`
	Data     map[string]string `json:"data"`
}

// NewEmailTask builds a task retried up to three times on the default queue
func NewEmailTask(p EmailPayload) (*asynq.Task, error) {
	payload, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(
		TaskSendEmail,
		payload,
		asynq.MaxRetry(3),
		asynq.Queue("default"),
		asynq.Timeout(30*time.Second),
	), nil
}
