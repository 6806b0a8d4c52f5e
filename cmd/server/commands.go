package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"karmafeed/internal/app"
	"karmafeed/internal/archive"
	"karmafeed/internal/config"
	"karmafeed/internal/database"
)

var (
	tokenUsername string
	archiveSince  string
	archiveUntil  string

	rootCmd = &cobra.Command{
		Use:           "karmafeed",
		Short:         "Threaded discussion feed with like karma and a 24h leaderboard",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the leaderboard warm-up job",
		RunE:  runServe,
	}

	migrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "Apply the Postgres schema",
		RunE:  runMigrate,
	}

	tokenCmd = &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for a username, creating the user if needed",
		RunE:  runToken,
	}

	archiveCmd = &cobra.Command{
		Use:   "archive",
		Short: "Export a ledger range as JSON lines to the archive bucket",
		RunE:  runArchive,
	}

	warmCmd = &cobra.Command{
		Use:   "warm",
		Short: "Precompute the closed leaderboard buckets in Redis once",
		RunE:  runWarm,
	}
)

func init() {
	tokenCmd.Flags().StringVar(&tokenUsername, "username", "", "username to issue the token for")
	_ = tokenCmd.MarkFlagRequired("username")

	archiveCmd.Flags().StringVar(&archiveSince, "since", "", "range start, RFC 3339 (default: until minus 24h)")
	archiveCmd.Flags().StringVar(&archiveUntil, "until", "", "range end, exclusive, RFC 3339 (default: start of the current hour)")

	rootCmd.AddCommand(serveCmd, migrateCmd, tokenCmd, archiveCmd, warmCmd)
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	cfg.ConfigureLogging()
	return cfg, nil
}

func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signalContext(cmd.Context())
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	return a.Run(ctx)
}

func requirePostgres(cfg *config.Config, command string) error {
	if cfg.StoreBackend != config.BackendPostgres {
		return fmt.Errorf("%s needs STORE_BACKEND=%s", command, config.BackendPostgres)
	}
	return nil
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := requirePostgres(cfg, "migrate"); err != nil {
		return err
	}

	db, err := database.Connect(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	return database.Migrate(cmd.Context(), db)
}

func runToken(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	// A memory store dies with this process, so the user would not exist for any server.
	if err := requirePostgres(cfg, "token"); err != nil {
		return err
	}
	if cfg.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is not set")
	}

	a, err := app.New(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	user, err := a.Users.Resolve(cmd.Context(), tokenUsername)
	if err != nil {
		return err
	}
	token, err := a.Tokens.Issue(user.ID)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}

func runArchive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	since, until, err := archiveRange(archiveSince, archiveUntil, time.Now())
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	a, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	uploader, err := archive.NewS3Uploader(ctx, cfg)
	if err != nil {
		return err
	}

	res, err := archive.NewExporter(a.Store.Ledger, uploader, cfg.ArchivePrefix).Export(ctx, since, until)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s (%d entries)\n", res.Key, res.Entries)
	return nil
}

// archiveRange resolves the --since/--until flags, defaulting to the last full 24 hours.
func archiveRange(sinceRaw, untilRaw string, now time.Time) (time.Time, time.Time, error) {
	until := now.UTC().Truncate(time.Hour)
	if untilRaw != "" {
		t, err := time.Parse(time.RFC3339, untilRaw)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --until: %w", err)
		}
		until = t.UTC()
	}

	since := until.Add(-24 * time.Hour)
	if sinceRaw != "" {
		t, err := time.Parse(time.RFC3339, sinceRaw)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --since: %w", err)
		}
		since = t.UTC()
	}

	if !since.Before(until) {
		return time.Time{}, time.Time{}, fmt.Errorf("--since must be before --until")
	}
	return since, until, nil
}

func runWarm(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.RedisURL == "" {
		return fmt.Errorf("REDIS_URL is not set")
	}

	a, err := app.New(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	computed, err := a.WarmLeaderboard(cmd.Context(), time.Now())
	if err != nil {
		return err
	}
	log.WithField("computed", computed).Info("[Warm] Leaderboard buckets ready")
	return nil
}
