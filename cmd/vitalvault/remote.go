package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kanohealth/vitalvault/internal/client/attest"
	"github.com/kanohealth/vitalvault/internal/client/vault"
	"github.com/kanohealth/vitalvault/internal/config"
	"github.com/kanohealth/vitalvault/internal/xsync"
)

func objectsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "objects",
		Short: "List your encrypted exports stored in the vault",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Read()
			if err != nil {
				return fmt.Errorf("failed to read config: %w", err)
			}

			client := vault.New(cfg.VaultURL, vault.WithAPIKey(cfg.VaultAPIKey))
			objects, err := client.List(cmd.Context(), cfg.WalletAddress, xsync.DataType)
			if err != nil {
				return fmt.Errorf("failed to list vault objects: %w", err)
			}

			if len(objects) == 0 {
				cmd.Println("no exports stored yet")
				return nil
			}
			for _, obj := range objects {
				cmd.Printf("%s  %8d bytes  %s  %s\n",
					obj.UploadedAt.Format("2006-01-02 15:04"), obj.Size, obj.ContentHash, obj.URI)
			}
			return nil
		},
	}
}

func attestationsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "attestations",
		Short: "List your recorded attestations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Read()
			if err != nil {
				return fmt.Errorf("failed to read config: %w", err)
			}

			client := attest.New(cfg.AttestURL, attest.WithAPIKey(cfg.AttestAPIKey))
			attestations, err := client.List(cmd.Context(), cfg.WalletAddress)
			if err != nil {
				return fmt.Errorf("failed to list attestations: %w", err)
			}

			if len(attestations) == 0 {
				cmd.Println("no attestations recorded yet")
				return nil
			}
			for _, a := range attestations {
				cmd.Printf("%s  score %3d  tier %-6s  %s to %s  %s\n",
					a.Timestamp.Format("2006-01-02 15:04"),
					a.CompletenessScore, a.Tier(),
					a.StartDate, a.EndDate, a.ContentHash)
			}
			return nil
		},
	}
}
