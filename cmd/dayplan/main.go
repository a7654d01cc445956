// Package main is the entry point for the dayplan CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"dayplan/internal/backend/googletasks"
	"dayplan/internal/backend/notion"
	"dayplan/internal/cli"
	"dayplan/internal/commands"
	"dayplan/internal/config"
	"dayplan/internal/mail"
	"dayplan/internal/notify"
	"dayplan/internal/planner"
	"dayplan/internal/service"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, newServices)

	code := dispatcher.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	os.Exit(code)
}

// newServices builds only the collaborators the enabled channels use.
func newServices(ctx context.Context, cfg *config.Config, ch config.Channels) (*service.Services, error) {
	svc := &service.Services{}

	switch cfg.TaskSource {
	case config.SourceGoogle:
		src, err := googletasks.New(ctx, cfg)
		if err != nil {
			return nil, err
		}
		svc.Tasks = src
	default:
		src, err := notion.FromConfig(cfg)
		if err != nil {
			return nil, err
		}
		svc.Tasks = src
	}

	if ch.Generate {
		svc.Planner = planner.FromConfig(cfg)
	}
	if ch.Push {
		svc.Push = notify.FromConfig(cfg)
	}
	if ch.Email {
		switch cfg.MailTransport {
		case config.TransportGmail:
			m, err := mail.NewGmail(ctx, cfg)
			if err != nil {
				return nil, err
			}
			svc.Mail = m
		default:
			svc.Mail = mail.SMTPFromConfig(cfg)
		}
	}
	return svc, nil
}
