package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/iliyamo/cidade-aberta/internal/mailer"
	"github.com/iliyamo/cidade-aberta/internal/queue"
)

func newWorkerCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Consume notification events and send emails",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := bootstrap(false)
			if err != nil {
				return err
			}
			defer a.close()
			cfg, log := a.cfg, a.log
			if cfg.RabbitMQURL == "" {
				return errors.New("RABBITMQ_URL is required for the worker")
			}

			var sender mailer.Sender = mailer.Log{Log: log.WithComponent("mailer")}
			if cfg.SMTPHost != "" {
				sender = mailer.NewSMTP(mailer.SMTPConfig{
					Host:     cfg.SMTPHost,
					Port:     cfg.SMTPPort,
					Username: cfg.SMTPUser,
					Password: cfg.SMTPPass,
					From:     cfg.SMTPFrom,
				})
			} else {
				log.Info("SMTP_HOST not set; emails are logged instead of sent")
			}
			d := &mailer.Dispatcher{
				Sender:     sender,
				BaseURL:    cfg.BaseURL,
				StaffEmail: cfg.StaffEmail,
				Log:        log.WithComponent("dispatcher"),
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			c := &queue.Consumer{
				URL:      cfg.RabbitMQURL,
				Queue:    cfg.NotificationQueue,
				Prefetch: 50,
				Handle:   d.Handle,
				Log:      log,
			}
			log.WithField("queue", cfg.NotificationQueue).Info("worker started")
			if err := c.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			log.Info("worker stopped")
			return nil
		},
	}
}
