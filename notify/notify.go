// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/wneessen/go-mail"
)

// Message describes a committed vote to confirm to its voter.
type Message struct {
	VoterID       string
	ElectionName  string
	CandidateName string
	VotedAt       time.Time
}

// Email is a rendered notification.
type Email struct {
	To      string
	Subject string
	Body    string
}

// Sender delivers rendered emails.
type Sender interface {
	Send(ctx context.Context, e Email) error
}

// VoteConfirmation renders the confirmation for m. now is only used for the
// relative time in the body.
func VoteConfirmation(voterName string, m Message, now time.Time) Email {
	return Email{
		Subject: fmt.Sprintf("Your vote in %s was recorded", m.ElectionName),
		Body: fmt.Sprintf(
			"Hello %s,\n\nYour vote for %s in %s was recorded at %s (%s).\n\nVotes cannot be changed once cast.\n",
			voterName,
			m.CandidateName,
			m.ElectionName,
			m.VotedAt.UTC().Format(time.RFC1123),
			humanize.RelTime(m.VotedAt, now, "ago", "from now"),
		),
	}
}

// SMTPConfig configures SMTPSender.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	Timeout  time.Duration
}

// SMTPSender sends mail through an SMTP relay.
type SMTPSender struct {
	cfg SMTPConfig
}

func NewSMTPSender(cfg SMTPConfig) *SMTPSender {
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &SMTPSender{cfg: cfg}
}

func (s *SMTPSender) Send(ctx context.Context, e Email) error {
	msg := mail.NewMsg()
	if err := msg.From(s.cfg.From); err != nil {
		return fmt.Errorf("invalid from address: %w", err)
	}
	if err := msg.To(e.To); err != nil {
		return fmt.Errorf("invalid recipient address: %w", err)
	}
	msg.Subject(e.Subject)
	msg.SetBodyString(mail.TypeTextPlain, e.Body)
	msg.SetCharset(mail.CharsetUTF8)

	opts := []mail.Option{
		mail.WithPort(s.cfg.Port),
		mail.WithTimeout(s.cfg.Timeout),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if s.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.cfg.Username),
			mail.WithPassword(s.cfg.Password),
		)
	}

	c, err := mail.NewClient(s.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}

	// The client has its own timeout; ctx is only checked before dialing
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := c.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send mail: %w", err)
	}
	return nil
}

// LogSender logs emails instead of sending them. Used when SMTP is not configured.
type LogSender struct{}

func (LogSender) Send(_ context.Context, e Email) error {
	slog.Info("notification (not sent, SMTP disabled)", "to", e.To, "subject", e.Subject)
	return nil
}
