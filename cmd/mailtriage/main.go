package main

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nhle/mail-triage/internal/ai"
	"github.com/nhle/mail-triage/internal/app"
	"github.com/nhle/mail-triage/internal/audit"
	"github.com/nhle/mail-triage/internal/config"
	"github.com/nhle/mail-triage/internal/mailbox"
	"github.com/nhle/mail-triage/internal/outbound"
	"github.com/nhle/mail-triage/internal/review"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if mailbox.IsConnectionError(err) {
			fmt.Fprintln(os.Stderr,
				"Check the imap_host/imap_port settings and the stored credentials.")
		}
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var folder string
	var configPath string

	cmd := &cobra.Command{
		Use:   "mailtriage",
		Short: "Triage unread email into urgency-sorted tickets with drafted replies",
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			return run(cmd, folder, configPath)
		},
	}

	cmd.Flags().StringVar(&folder, "folder", "inbox", "mailbox folder to scan")
	cmd.Flags().StringVar(
		&configPath, "config", config.DefaultConfigPath(), "path to config file",
	)

	cmd.AddCommand(credentialsCmd())

	return cmd
}

func run(cmd *cobra.Command, folder, configPath string) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return err
	}

	creds, err := config.LoadCredentials()
	if err != nil {
		return err
	}

	runID := uuid.New().String()

	logger, err := audit.NewLogger(cfg.Audit.LogPath, runID)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	journal, err := audit.NewJournal(cfg.Audit.JournalPath, runID)
	if err != nil {
		return err
	}
	defer journal.Close()

	ctx := cmd.Context()

	// Connection failure is the only fatal error: it terminates the run
	// with a non-zero exit and no ticket output.
	session, err := mailbox.Connect(ctx, mailbox.Config{
		Host:     cfg.Mail.IMAPHost,
		Port:     cfg.Mail.IMAPPort,
		Username: creds.EmailAddress,
		Password: creds.EmailPassword,
		TLS:      cfg.Mail.TLS,
	}, folder)
	if err != nil {
		logger.Error("connecting to mailbox failed", zap.Error(err))
		return err
	}
	logger.Info("connected to mailbox", zap.String("folder", folder))

	pipeline := app.New(app.Options{
		Session: session,
		AI:      ai.New(creds.APIKey, cfg.AI.BaseURL, cfg.AI.Model, logger),
		Mailer: outbound.NewMailer(outbound.Config{
			Host:     cfg.Mail.SMTPHost,
			Port:     cfg.Mail.SMTPPort,
			Username: creds.EmailAddress,
			Password: creds.EmailPassword,
		}),
		Prompter: review.TerminalPrompter{},
		Journal:  journal,
		Logger:   logger,
		Out:      os.Stdout,
		Throttle: time.Duration(cfg.AI.ThrottleSec) * time.Second,
	})

	return pipeline.Run(ctx)
}
