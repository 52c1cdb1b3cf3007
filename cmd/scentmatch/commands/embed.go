// ABOUTME: CLI command to generate multi-resolution embeddings for an item
// ABOUTME: Accepts catalog fields as flags and reports produced resolutions
package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KJJisBetter/scentmatch-embeddings/internal/models"
	"github.com/joho/godotenv"
)

var (
	embedName        string
	embedBrand       string
	embedDescription string
	embedAccords     []string
	embedNotes       []string
)

// NewEmbedCmd creates the embed command
func NewEmbedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "embed <item-id>",
		Short: "Generate multi-resolution embeddings for a catalog item",
		Long: `Generate matryoshka embeddings for one catalog item.

One provider call produces every configured resolution by prefix
truncation. Identical content is served from cache without a new call;
entries older than the freshness window (SCENTMATCH_CACHE_TTL) are
regenerated.

Examples:
  scentmatch embed frag_123 --name "Terre d'Hermes" --brand Hermes
  scentmatch embed frag_123 --name "Molecule 01" --accords woody,amber`,
		Args: cobra.ExactArgs(1),
		RunE: runEmbed,
	}

	cmd.Flags().StringVar(&embedName, "name", "", "Item name")
	cmd.Flags().StringVar(&embedBrand, "brand", "", "Brand name")
	cmd.Flags().StringVar(&embedDescription, "description", "", "Item description")
	cmd.Flags().StringSliceVar(&embedAccords, "accords", nil, "Accord list")
	cmd.Flags().StringSliceVar(&embedNotes, "notes", nil, "Note list")

	return cmd
}

func runEmbed(cmd *cobra.Command, args []string) error {
	// Load .env for API keys
	_ = godotenv.Load()

	itemID := args[0]
	content := models.ItemContent{
		Name:        embedName,
		Brand:       embedBrand,
		Description: embedDescription,
		Accords:     embedAccords,
		Notes:       embedNotes,
	}

	stack, err := buildStack()
	if err != nil {
		return err
	}
	defer func() { _ = stack.Close() }()

	result, err := stack.generator.Generate(cmd.Context(), itemID, content)
	if err != nil {
		return fmt.Errorf("generating embedding: %w", err)
	}

	if outputFormat == "json" {
		out := map[string]interface{}{
			"item_id":    itemID,
			"cached":     result.Cached,
			"dimensions": result.Embedding.Dimensions(),
			"metadata":   result.Embedding.Metadata,
		}
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}

	if result.Cached {
		fmt.Fprintf(cmd.OutOrStdout(), "Served from cache: %s\n", itemID)
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "Generated embeddings: %s\n", itemID)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Resolutions: %v\n", result.Embedding.Dimensions())
	if !quiet {
		for dim, score := range result.Embedding.Metadata.QualityScores {
			fmt.Fprintf(cmd.OutOrStdout(), "  quality[%d] = %.4f\n", dim, score)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Tokens: %d  Cost: %.5f cents  Time: %dms\n",
			result.Embedding.Metadata.TokensUsed,
			result.Embedding.Metadata.APICostCents,
			result.Embedding.Metadata.GenerationTimeMS)
	}

	return nil
}
