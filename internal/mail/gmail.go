package mail

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"railticket/internal/logger"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// Mailer delivers a message and returns the provider message id.
type Mailer interface {
	Send(ctx context.Context, msg Message) (string, error)
}

// ErrMailerDisabled is returned when no transport is configured.
var ErrMailerDisabled = errors.New("mailer belum dikonfigurasi")

// DisabledMailer is used when Gmail credentials are absent; every send fails.
type DisabledMailer struct{}

func (DisabledMailer) Send(ctx context.Context, msg Message) (string, error) {
	return "", ErrMailerDisabled
}

// GmailMailer sends through the Gmail API users.messages.send endpoint.
type GmailMailer struct {
	svc  *gmail.Service
	from string
	log  logger.Logger
}

// NewTokenSource builds a refresh-token source for the send scope.
func NewTokenSource(ctx context.Context, clientID, clientSecret, refreshToken string) oauth2.TokenSource {
	cfg := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{gmail.GmailSendScope},
	}
	token := &oauth2.Token{
		RefreshToken: refreshToken,
		Expiry:       time.Now(), // force refresh
	}
	return cfg.TokenSource(ctx, token)
}

// NewGmailMailer creates the Gmail client. Extra options (endpoint, http client) are passed through.
func NewGmailMailer(ctx context.Context, ts oauth2.TokenSource, from string, log logger.Logger, opts ...option.ClientOption) (*GmailMailer, error) {
	opts = append([]option.ClientOption{option.WithTokenSource(ts)}, opts...)
	svc, err := gmail.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("gmail service: %w", err)
	}
	return &GmailMailer{svc: svc, from: from, log: logger.OrNop(log)}, nil
}

func (m *GmailMailer) Send(ctx context.Context, msg Message) (string, error) {
	if msg.From == "" {
		msg.From = m.from
	}
	raw, err := msg.Bytes()
	if err != nil {
		return "", err
	}

	sent, err := m.svc.Users.Messages.Send("me", &gmail.Message{
		Raw: base64.URLEncoding.EncodeToString(raw),
	}).Context(ctx).Do()
	if err != nil {
		m.log.Error("gmail send failed", "to", msg.To, "error", err)
		return "", fmt.Errorf("gmail send: %w", err)
	}
	m.log.Info("gmail message sent", "to", msg.To, "message_id", sent.Id)
	return sent.Id, nil
}
