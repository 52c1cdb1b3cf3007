// ABOUTME: CLI command for progressive similarity search
// ABOUTME: Embeds the query text and runs the staged search plan
package commands

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/KJJisBetter/scentmatch-embeddings/internal/models"
	"github.com/KJJisBetter/scentmatch-embeddings/internal/search"
	"github.com/joho/godotenv"
)

var (
	searchLimit     int
	searchThreshold float64
	searchNoEarly   bool
)

// NewSearchCmd creates the search command
func NewSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the catalog by similarity",
		Long: `Run progressive similarity search against stored embeddings.

The query is embedded at every configured resolution, then compared in
coarse-to-fine stages. A confident low-dimension match terminates early
unless disabled.

Examples:
  scentmatch search "warm amber vanilla"
  scentmatch search --limit 10 --no-early-termination "fresh citrus"`,
		Args: cobra.ExactArgs(1),
		RunE: runSearch,
	}

	cmd.Flags().IntVar(&searchLimit, "limit", 5, "Maximum results to return")
	cmd.Flags().Float64Var(&searchThreshold, "threshold", 0, "Additional similarity floor")
	cmd.Flags().BoolVar(&searchNoEarly, "no-early-termination", false, "Always run every stage")

	return cmd
}

func runSearch(cmd *cobra.Command, args []string) error {
	// Load .env for API keys
	_ = godotenv.Load()

	if err := validatePositiveInt(searchLimit, "limit"); err != nil {
		return err
	}

	stack, err := buildStack()
	if err != nil {
		return err
	}
	defer func() { _ = stack.Close() }()

	query, err := stack.generator.GenerateQuery(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("embedding query: %w", err)
	}

	// Keep only stages the configured dimensions can serve
	var stages []models.SearchStage
	for _, s := range search.DefaultStages() {
		if _, ok := query[s.Dimension]; ok {
			stages = append(stages, s)
		}
	}
	if len(stages) == 0 {
		return fmt.Errorf("no default search stage matches the configured dimensions")
	}

	engine, err := search.New(stack.store, stages, stack.cfg.ConfidenceThreshold)
	if err != nil {
		return fmt.Errorf("building search engine: %w", err)
	}

	resp, err := engine.Search(cmd.Context(), query, search.Options{
		MaxResults:       searchLimit,
		MinSimilarity:    searchThreshold,
		EarlyTermination: !searchNoEarly,
	})
	if err != nil {
		return fmt.Errorf("searching: %w", err)
	}

	if outputFormat == "json" {
		data, err := json.MarshalIndent(resp, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}

	if len(resp.Results) == 0 {
		if !quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "No matches for query: %s\n", args[0])
		}
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ITEM\tSIMILARITY\tDIMENSION")
	for _, r := range resp.Results {
		fmt.Fprintf(w, "%s\t%.4f\t%d\n", r.ItemID, r.Similarity, r.Dimension)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "\nStages executed: %d", resp.StagesExecuted)
		if resp.EarlyTerminated {
			fmt.Fprint(cmd.OutOrStdout(), " (early termination)")
		}
		fmt.Fprintln(cmd.OutOrStdout())
	}

	return nil
}
