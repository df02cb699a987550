package jobs

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hibiken/asynq"

	"github.com/unkani/unkani/pkg/mail"
	"github.com/unkani/unkani/pkg/model"
)

// ErrNoEmail is returned when a user has no active primary email
var ErrNoEmail = errors.New("user has no email address")

// Enqueuer puts tasks on the queue. *asynq.Client implements it.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Mailer queues account emails with links under baseURL
type Mailer struct {
	queue   Enqueuer
	baseURL string
	expires time.Duration
}

// NewMailer creates a Mailer whose messages state that links expire after expires
func NewMailer(queue Enqueuer, baseURL string, expires time.Duration) *Mailer {
	return &Mailer{
		queue:   queue,
		baseURL: strings.TrimRight(baseURL, "/"),
		expires: expires,
	}
}

// SendConfirmation queues the account confirmation email
func (m *Mailer) SendConfirmation(ctx context.Context, user *model.User, token string) error {
	return m.enqueue(ctx, user, "", mail.TemplateConfirm, "/api/v1/auth/confirm/", token)
}

// SendPasswordReset queues the password reset email
func (m *Mailer) SendPasswordReset(ctx context.Context, user *model.User, token string) error {
	return m.enqueue(ctx, user, "", mail.TemplateResetPassword, "/api/v1/auth/reset/", token)
}

// SendEmailChange queues the confirmation for a new address, sent to that address
func (m *Mailer) SendEmailChange(ctx context.Context, user *model.User, newEmail, token string) error {
	return m.enqueue(ctx, user, newEmail, mail.TemplateChangeEmail, "/api/v1/auth/change-email/", token)
}

func (m *Mailer) enqueue(ctx context.Context, user *model.User, to string, tmpl mail.Template, path, token string) error {
	if to == "" {
		email := user.Email()
		if email == nil {
			return ErrNoEmail
		}
		to = email.Email
	}

	name := user.FullName()
	if name == "" {
		name = user.Username
	}

	task, err := NewEmailTask(EmailPayload{
		To:       to,
		Template: tmpl,
		Data: map[string]string{
			"Name":    name,
			"Email":   to,
			"Link":    m.baseURL + path + token,
			"Token":   token,
			"Expires": m.expires.String(),
		},
	})
	if err != nil {
		return err
	}

	if _, err := m.queue.EnqueueContext(ctx, task); err != nil {
		return fmt.Errorf("failed to enqueue %s email: %w", tmpl, err)
	}
	return nil
}
