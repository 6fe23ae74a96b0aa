package main

import (
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/nhle/mail-triage/internal/credential"
)

// credentialValues holds one round of operator-entered credentials.
// Empty fields are left untouched in the keyring.
type credentialValues struct {
	EmailAddress  string
	EmailPassword string
	APIKey        string
}

func credentialsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "credentials",
		Short: "Manage stored mailbox and API credentials",
	}
	cmd.AddCommand(credentialsSetCmd(), credentialsClearCmd())
	return cmd
}

func credentialsSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set",
		Short: "Store credentials in the system keyring",
		Long: "Prompts for the mailbox account and API key and stores them " +
			"in the system keyring. Fields left empty keep their current " +
			"value. Environment variables still take precedence at run time.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			var values credentialValues
			form := huh.NewForm(
				huh.NewGroup(
					huh.NewInput().
						Title("Email Address").
						Description("IMAP/SMTP account address").
						Value(&values.EmailAddress),
					huh.NewInput().
						Title("Email Password").
						Description("Account or app-specific password").
						EchoMode(huh.EchoModePassword).
						Value(&values.EmailPassword),
					huh.NewInput().
						Title("API Key").
						Description("Chat completions service API key").
						EchoMode(huh.EchoModePassword).
						Value(&values.APIKey),
				),
			)
			if err := form.Run(); err != nil {
				return fmt.Errorf("collecting credentials: %w", err)
			}

			if err := storeCredentials(credential.Set, values); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Credentials stored.")
			return nil
		},
	}
}

func credentialsClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all stored credentials from the system keyring",
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			if err := clearCredentials(credential.Delete); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Credentials cleared.")
			return nil
		},
	}
}

// storeCredentials writes the non-empty fields through set, keyed by the
// well-known credential names.
func storeCredentials(set func(key, value string) error, values credentialValues) error {
	pairs := []struct {
		key   string
		value string
	}{
		{credential.KeyEmailAddress, values.EmailAddress},
		{credential.KeyEmailPassword, values.EmailPassword},
		{credential.KeyAPIKey, values.APIKey},
	}

	for _, p := range pairs {
		if p.value == "" {
			continue
		}
		if err := set(p.key, p.value); err != nil {
			return err
		}
	}

	return nil
}

// clearCredentials removes every well-known credential through del.
func clearCredentials(del func(key string) error) error {
	keys := []string{
		credential.KeyEmailAddress,
		credential.KeyEmailPassword,
		credential.KeyAPIKey,
	}

	for _, key := range keys {
		if err := del(key); err != nil {
			return err
		}
	}

	return nil
}
