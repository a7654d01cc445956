package mail

import (
	"context"
	"encoding/base64"
	"fmt"

	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"dayplan/internal/config"
	"dayplan/internal/googleauth"
	"dayplan/internal/log"
	"dayplan/internal/service"
)

// GmailMailer implements service.Mailer with the Gmail API, using the
// OAuth token stored by the login command.
type GmailMailer struct {
	svc  *gmail.Service
	from string
	to   string
}

// NewGmail creates a GmailMailer from run configuration.
func NewGmail(ctx context.Context, cfg *config.Config) (*GmailMailer, error) {
	httpClient, err := googleauth.HTTPClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return NewGmailWithOptions(ctx, cfg.MailFrom, cfg.MailTo, option.WithHTTPClient(httpClient))
}

// NewGmailWithOptions creates a GmailMailer with explicit client options (for testing).
func NewGmailWithOptions(ctx context.Context, from, to string, opts ...option.ClientOption) (*GmailMailer, error) {
	svc, err := gmail.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create gmail service: %w", err)
	}
	return &GmailMailer{svc: svc, from: from, to: to}, nil
}

// Send implements service.Mailer.
func (g *GmailMailer) Send(ctx context.Context, email service.Email) error {
	msg, err := NewMessage(g.from, g.to, email)
	if err != nil {
		return err
	}
	raw, err := Raw(msg)
	if err != nil {
		return err
	}

	sent, err := g.svc.Users.Messages.Send("me", &gmail.Message{
		Raw: base64.URLEncoding.EncodeToString(raw),
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("mail: gmail send: %w", err)
	}
	log.Info().Str("to", g.to).Str("id", sent.Id).Msg("mail: sent via gmail")
	return nil
}
