package main

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/community-network/labkeeper/internal/archive"
	"github.com/community-network/labkeeper/internal/cmlapi"
	"github.com/community-network/labkeeper/internal/config"
	"github.com/community-network/labkeeper/internal/mailer"
	"github.com/community-network/labkeeper/internal/template"
	"github.com/community-network/labkeeper/internal/workflow"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "labkeeper",
	Short: "Labkeeper - CML reservation lifecycle tool",
	Long: `Labkeeper automates timed CML reservations: it issues a temporary
admin password when a reservation starts, and at the end it archives every
lab, stops, wipes and deletes them, restores the permanent credentials,
clears all sessions and mails the user their archived labs.

Configuration comes from LABKEEPER_* environment variables; a .env file in
the working directory is loaded automatically.`,
	Version: fmt.Sprintf("%s (commit: %s)", version, commit),
}

func init() {
	rootCmd.AddCommand(provisionCmd)
	rootCmd.AddCommand(teardownCmd)
	rootCmd.AddCommand(labsCmd)
	rootCmd.AddCommand(pingCmd)
}

// setup loads the configuration and builds the logger every command
// shares.
func setup() (*config.Config, zerolog.Logger, error) {
	// The .env file is optional; the environment may already be populated.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, zerolog.Nop(), err
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(level).
		With().Timestamp().Logger()

	return cfg, logger, nil
}

func newMailer(cfg *config.Config, logger zerolog.Logger) *mailer.Mailer {
	return mailer.New(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SenderEmail, logger)
}

var provisionPassword string

var provisionCmd = &cobra.Command{
	Use:   "provision <email>",
	Short: "Issue a temporary admin password and mail it to the user",
	Long: `Start a reservation: rotate the admin password to a temporary value
and mail the credentials to the user.

The temporary password is generated unless --password is given. Keep it:
the same password must be passed to the teardown command when the
reservation ends.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup()
		if err != nil {
			return err
		}

		tempPassword := provisionPassword
		if tempPassword == "" {
			tempPassword = uuid.NewString()
		}

		client := cmlapi.New(cfg.APIBaseURL, logger)
		wf := workflow.NewProvision(cfg, client, newMailer(cfg, logger), template.Render, logger)
		wf.Run(cmd.Context(), args[0], tempPassword)

		fmt.Printf("Provisioning run for %s completed, see the log for details\n", args[0])
		return nil
	},
}

var teardownPassword string

var teardownCmd = &cobra.Command{
	Use:   "teardown <email>",
	Short: "Archive and remove every lab, restore credentials, notify the user",
	Long: `End a reservation: extract node configurations, download and archive
every lab, stop, wipe and delete them, restore the permanent admin
password, clear all sessions and mail the user their archived labs.

--password is the temporary password issued when the reservation started;
when it was never activated, the permanent password is used automatically.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup()
		if err != nil {
			return err
		}

		client := cmlapi.New(cfg.APIBaseURL, logger)
		store := archive.NewStore(cfg.ArchiveDir, logger)
		wf := workflow.NewTeardown(cfg, client, store, newMailer(cfg, logger), template.Render, logger)
		wf.Run(cmd.Context(), args[0], teardownPassword)

		fmt.Printf("Teardown run for %s completed, see the log for details\n", args[0])
		return nil
	},
}

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Test controller connectivity and credentials",
	Long:  `Authenticate against the controller with the permanent admin credentials and report the result.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup()
		if err != nil {
			return err
		}

		client := cmlapi.New(cfg.APIBaseURL, logger)
		token, status, err := client.Authenticate(cmd.Context(), cfg.AdminUsername, cfg.AdminPassword)
		if err != nil {
			return fmt.Errorf("failed to reach the controller: %w", err)
		}
		if status != 200 || token == "" {
			return fmt.Errorf("authentication failed with status %d", status)
		}

		fmt.Printf("✓ Authenticated against %s\n", cfg.APIBaseURL)
		return nil
	},
}

func init() {
	provisionCmd.Flags().StringVar(&provisionPassword, "password", "", "temporary password to issue (default: generated)")
	teardownCmd.Flags().StringVar(&teardownPassword, "password", "", "temporary password issued for the reservation")
	_ = teardownCmd.MarkFlagRequired("password")
}
