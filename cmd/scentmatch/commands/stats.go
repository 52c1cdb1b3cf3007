// ABOUTME: CLI command to report stored embedding counts per resolution
// ABOUTME: Reads directly from the SQLite store without provider access
package commands

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/KJJisBetter/scentmatch-embeddings/internal/config"
	"github.com/KJJisBetter/scentmatch-embeddings/internal/storage/sqlite"
	"github.com/joho/godotenv"
)

// NewStatsCmd creates the stats command
func NewStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show stored embedding statistics",
		Long:  `Display how many catalog items have embeddings at each resolution.`,
		RunE:  runStats,
	}
}

func runStats(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	db, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() { _ = db.Close() }()

	store := sqlite.NewStore(db)

	total, err := store.Count()
	if err != nil {
		return fmt.Errorf("counting embeddings: %w", err)
	}

	dims := make([]int, 0, len(sqlite.ResolutionColumns))
	for d := range sqlite.ResolutionColumns {
		dims = append(dims, d)
	}
	sort.Ints(dims)

	counts := make(map[int]int, len(dims))
	for _, d := range dims {
		n, err := store.CountAt(d)
		if err != nil {
			return fmt.Errorf("counting at dimension %d: %w", d, err)
		}
		counts[d] = n
	}

	if outputFormat == "json" {
		data, err := json.MarshalIndent(map[string]interface{}{
			"total":          total,
			"per_resolution": counts,
			"database":       db.Path(),
		}, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Items with embeddings: %d\n", total)
	for _, d := range dims {
		fmt.Fprintf(cmd.OutOrStdout(), "  %d-dimension vectors: %d\n", d, counts[d])
	}
	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "Database: %s\n", db.Path())
	}

	return nil
}
