// Package mail sends account emails through Resend.
//
// Bodies are Markdown templates embedded in the binary. They are executed
// with text/template and converted to HTML with goldmark; the Markdown
// source is sent as the plain text part.
package mail

import (
	"context"
	"errors"
	"fmt"

	"github.com/resend/resend-go/v2"
	"github.com/rs/zerolog"
)

// ErrNoRecipient is returned when a message has no recipient
var ErrNoRecipient = errors.New("mail: no recipient")

type emailSender interface {
	SendWithContext(ctx context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

// Message is a rendered email
type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

// Client sends email with the Resend API.
// A client without an API key logs messages instead of sending them.
type Client struct {
	emails emailSender
	from   string
	logger zerolog.Logger
}

// NewClient creates a Client sending as from
func NewClient(apiKey, from string, logger zerolog.Logger) *Client {
	c := &Client{from: from, logger: logger}
	if apiKey != "" {
		c.emails = resend.NewClient(apiKey).Emails
	}
	return c
}

// Send delivers msg
func (c *Client) Send(ctx context.Context, msg Message) error {
	if msg.To == "" {
		return ErrNoRecipient
	}

	if c.emails == nil {
		c.logger.Warn().
			Str("to", msg.To).
			Str("subject", msg.Subject).
			Msg("No mail API key configured, message not sent")
		c.logger.Debug().Str("to", msg.To).Msg(msg.Text)
		return nil
	}

	params := &resend.SendEmailRequest{
		From:    c.from,
		To:      []string{msg.To},
		Subject: msg.Subject,
		Html:    msg.HTML,
		Text:    msg.Text,
	}

	sent, err := c.emails.SendWithContext(ctx, params)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	c.logger.Info().Str("to", msg.To).Str("id", sent.Id).Msg("Email sent")
	return nil
}

// SendTemplate renders tmpl with data and sends it to the recipient
func (c *Client) SendTemplate(ctx context.Context, to string, tmpl Template, data map[string]string) error {
	text, html, err := Render(tmpl, data)
	if err != nil {
		return err
	}

	return c.Send(ctx, Message{
		To:      to,
		Subject: tmpl.Subject(),
		Text:    text,
		HTML:    html,
	})
}
