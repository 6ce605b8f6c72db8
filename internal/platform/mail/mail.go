// Copyright (c) 2026 FERCEN. All rights reserved.
// Author: dev@fercen.app

/*
Package mail handles outbound transactional email.

FERCEN sends three kinds of messages: account invitations, password recovery
codes, and notifications about account credential changes. All of them are
short plain-text messages with a single link or code.

# Architecture

The [Mailer] interface decouples services from the delivery mechanism. Two
implementations exist:

  - Mailgun: The production sender, with a fixed-interval retry budget since
    a dropped invitation or recovery code is a human support ticket.
  - Logger: A development fallback that writes the message to the structured
    log, keeping local setups credential-free.
*/
package mail

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cenkalti/backoff/v4"
	"github.com/mailgun/mailgun-go/v4"

	"github.com/fercen/fercen/internal/platform/constants"
)

// Message is one outbound transactional email.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Mailer delivers transactional messages.
type Mailer interface {
	Send(ctx context.Context, message Message) error
}

// # Mailgun Sender

// MailgunSender delivers mail through the Mailgun HTTP API.
type MailgunSender struct {
	client *mailgun.MailgunImpl
	sender string
	logger *slog.Logger
}

// NewMailgunSender creates the production mail sender.
func NewMailgunSender(domain, apiKey, sender string, logger *slog.Logger) *MailgunSender {
	return &MailgunSender{
		client: mailgun.NewMailgun(domain, apiKey),
		sender: sender,
		logger: logger,
	}
}

/*
Send delivers the message, retrying transient failures.

Description: Delivery runs inside a fixed-interval retry budget (same policy
as password hashing): a lost invitation or recovery code strands a real
person, so a couple of extra attempts are worth the latency on this cold
path.

Parameters:
  - ctx: context.Context
  - message: The message to deliver.

Returns:
  - error: The last delivery failure after the retry budget is exhausted.
*/
func (mailer *MailgunSender) Send(ctx context.Context, message Message) error {
	outbound := mailer.client.NewMessage(mailer.sender, message.Subject, message.Body, message.To)

	policy := backoff.WithContext(
		backoff.WithMaxRetries(
			backoff.NewConstantBackOff(constants.RetryInterval),
			constants.RetryMaxAttempts-1,
		),
		ctx,
	)

	operation := func() error {
		_, _, err := mailer.client.Send(ctx, outbound)
		return err
	}

	if err := backoff.Retry(operation, policy); err != nil {
		return fmt.Errorf("mail: delivery to %q failed: %w", message.To, err)
	}

	mailer.logger.Info("mail_sent",
		slog.String("to", message.To),
		slog.String("subject", message.Subject),
	)

	return nil
}

// # Logger Sender

// LoggerSender writes messages to the structured log instead of sending them.
// Used in development when no Mailgun credentials are configured.
type LoggerSender struct {
	logger *slog.Logger
}

// NewLoggerSender creates the development mail sender.
func NewLoggerSender(logger *slog.Logger) *LoggerSender {
	return &LoggerSender{logger: logger}
}

// Send logs the message and always succeeds.
func (mailer *LoggerSender) Send(_ context.Context, message Message) error {
	mailer.logger.Info("mail_logged_instead_of_sent",
		slog.String("to", message.To),
		slog.String("subject", message.Subject),
		slog.String("body", message.Body),
	)
	return nil
}
