package mail

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	gomail "github.com/wneessen/go-mail"

	"dayplan/internal/config"
	"dayplan/internal/log"
	"dayplan/internal/service"
)

// SMTPTimeout bounds dialing and each SMTP command.
const SMTPTimeout = 30 * time.Second

// SMTPMailer implements service.Mailer over an authenticated STARTTLS session.
// The sender address doubles as the login name.
type SMTPMailer struct {
	Host     string
	Port     int
	From     string
	To       string
	Password string

	// TLSConfig overrides the STARTTLS settings; nil verifies Host against
	// the system roots.
	TLSConfig *tls.Config
}

// SMTPFromConfig creates an SMTPMailer from run configuration.
func SMTPFromConfig(cfg *config.Config) *SMTPMailer {
	return &SMTPMailer{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		From:     cfg.MailFrom,
		To:       cfg.MailTo,
		Password: cfg.SMTPPassword,
	}
}

// Send implements service.Mailer.
func (s *SMTPMailer) Send(ctx context.Context, email service.Email) error {
	msg, err := NewMessage(s.From, s.To, email)
	if err != nil {
		return err
	}

	opts := []gomail.Option{
		gomail.WithPort(s.Port),
		gomail.WithTLSPolicy(gomail.TLSMandatory),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(s.From),
		gomail.WithPassword(s.Password),
		gomail.WithTimeout(SMTPTimeout),
	}
	if s.TLSConfig != nil {
		opts = append(opts, gomail.WithTLSConfig(s.TLSConfig))
	}
	client, err := gomail.NewClient(s.Host, opts...)
	if err != nil {
		return fmt.Errorf("mail: smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("mail: smtp send: %w", err)
	}
	log.Info().Str("to", s.To).Str("host", s.Host).Msg("mail: sent via smtp")
	return nil
}
