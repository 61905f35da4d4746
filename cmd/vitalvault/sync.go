package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/oauth2"

	"github.com/kanohealth/vitalvault/internal/client/attest"
	"github.com/kanohealth/vitalvault/internal/client/healthsource"
	"github.com/kanohealth/vitalvault/internal/client/vault"
	"github.com/kanohealth/vitalvault/internal/config"
	"github.com/kanohealth/vitalvault/internal/paths"
	"github.com/kanohealth/vitalvault/internal/store"
	"github.com/kanohealth/vitalvault/internal/xerrors"
	"github.com/kanohealth/vitalvault/internal/xslog"
	"github.com/kanohealth/vitalvault/internal/xsync"
)

func syncCmd() *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Run a full sync: fetch, aggregate, score, encrypt, upload, attest",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(cmd, days)
		},
	}

	cmd.Flags().IntVar(&days, "days", 0, "sync window in days (default: SYNC_WINDOW_DAYS)")

	return cmd
}

func runSync(cmd *cobra.Command, days int) error {
	logger := xslog.NewLoggerFromEnv(os.Stderr)
	logger.DebugContext(cmd.Context(), "starting", xslog.Version())

	cfg, err := config.Read()
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}

	key, err := cfg.EncryptionKeyBytes()
	if err != nil {
		return fmt.Errorf("wallet encryption key unavailable: %w", err)
	}

	if _, err := paths.EnsureDir(); err != nil {
		return err
	}
	dbPath, err := paths.DB()
	if err != nil {
		return err
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open sync store: %w", err)
	}
	defer func() { _ = st.Close() }()

	tokenSource := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.SourceToken})
	source := healthsource.New(tokenSource,
		healthsource.WithBaseURL(cfg.SourceURL),
		healthsource.WithLogger(logger))
	blobStore := vault.New(cfg.VaultURL,
		vault.WithAPIKey(cfg.VaultAPIKey),
		vault.WithLogger(logger))
	attester := attest.New(cfg.AttestURL,
		attest.WithAPIKey(cfg.AttestAPIKey),
		attest.WithLogger(logger))

	service := xsync.NewService(source, blobStore, attester, st, key, logger,
		xsync.WithWalletAddress(cfg.WalletAddress),
		xsync.WithProgressFunc(printProgress(cmd)))

	if days <= 0 {
		days = cfg.SyncWindowDays
	}
	from := time.Now().AddDate(0, 0, -days)

	result, err := service.PerformFullSync(cmd.Context(), from)
	if err != nil {
		cmd.PrintErrln("sync failed:", xerrors.UserMessage(err))
		cmd.PrintErrln("run `vitalvault sync` again to retry")
		return err
	}

	cmd.Printf("synced %d days, %d metrics: score %d, tier %s\n",
		result.DaysCovered, result.MetricsCount, result.Score, result.Tier)
	return nil
}

func printProgress(cmd *cobra.Command) func(xsync.State) {
	return func(st xsync.State) {
		if st.Phase != xsync.PhaseSyncing {
			return
		}
		cmd.Printf("[%3.0f%%] %s\n", st.Progress*100, st.Message)
	}
}
