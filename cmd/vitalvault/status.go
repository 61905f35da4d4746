package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kanohealth/vitalvault/internal/paths"
	"github.com/kanohealth/vitalvault/internal/store"
)

func statusCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the last sync result and recent history",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd, limit)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 5, "number of history entries to show")

	return cmd
}

func runStatus(cmd *cobra.Command, limit int) error {
	dbPath, err := paths.DB()
	if err != nil {
		return err
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open sync store: %w", err)
	}
	defer func() { _ = st.Close() }()

	records, err := st.History(cmd.Context(), limit)
	if err != nil {
		return fmt.Errorf("failed to read sync history: %w", err)
	}

	if len(records) == 0 {
		cmd.Println("no syncs yet")
		return nil
	}

	for i, rec := range records {
		marker := " "
		if i == 0 {
			marker = "*"
		}
		if rec.Success {
			cmd.Printf("%s %s  ok    score %3d  tier %-6s  %d days, %d metrics\n",
				marker, rec.CreatedAt.Format("2006-01-02 15:04"),
				rec.Score, rec.Tier, rec.DaysCovered, rec.MetricsCount)
			continue
		}
		cmd.Printf("%s %s  fail  %s\n",
			marker, rec.CreatedAt.Format("2006-01-02 15:04"), rec.Error)
	}
	return nil
}
