package service

import (
	"context"
	"errors"
	"html"
	"strings"

	"github.com/resendlabs/resend-go"
	"github.com/sirupsen/logrus"
)

const (
	subjectActivate = "Activate account"
	subjectOTP      = "One-time-password"
	subjectNewLogin = "New Login"
)

type ResendMailer struct {
	client *resend.Client
	from   string
}

func NewResendMailer(apiKey string, from string) *ResendMailer {
	if strings.TrimSpace(apiKey) == "" || strings.TrimSpace(from) == "" {
		return &ResendMailer{}
	}
	return &ResendMailer{
		client: resend.NewClient(apiKey),
		from:   from,
	}
}

func (m *ResendMailer) Send(ctx context.Context, to string, subject string, body string) error {
	if m.client == nil {
		return errors.New("mail sender not configured")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	params := &resend.SendEmailRequest{
		From:    m.from,
		To:      []string{to},
		Subject: subject,
		Html:    "<p>" + html.EscapeString(body) + "</p>",
		Text:    body,
	}
	_, err := m.client.Emails.Send(params)
	return err
}

// LogMailer writes messages to the log instead of sending them. It is meant for
// local runs without a mail provider.
type LogMailer struct {
	Logger logrus.FieldLogger
}

func (m LogMailer) Send(_ context.Context, to string, subject string, body string) error {
	m.Logger.WithFields(logrus.Fields{
		"to":      to,
		"subject": subject,
	}).Info(body)
	return nil
}
