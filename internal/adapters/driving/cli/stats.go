package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/vecdocs/internal/core/domain"
)

var (
	statsPreview int
	statsJSON    bool
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show collection statistics",
	Long: `Shows the document count, average text length, categories and the most
recently ingested documents.`,
	Args: cobra.NoArgs,
	RunE: runStats,
}

func init() {
	statsCmd.Flags().IntVarP(&statsPreview, "preview", "p", domain.DefaultStatsPreview, "number of recent documents to show")
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "output statistics as JSON")
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, _ []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}
	if statsPreview < 0 {
		return domain.NewValidationError("preview must not be negative")
	}

	resp, err := documentService.Stats(cmd.Context(), statsPreview)
	if err != nil {
		return fmt.Errorf("failed to get stats: %w", err)
	}

	if statsJSON {
		return writeJSON(cmd, resp)
	}

	w := out(cmd)
	fmt.Fprintln(w, style.Title.Render("Collection"))
	fmt.Fprintf(w, "  Documents:      %d\n", resp.Stats.TotalDocuments)
	fmt.Fprintf(w, "  Average length: %.1f\n", resp.Stats.AverageTextLength)
	fmt.Fprintf(w, "  Dimensions:     %d\n", resp.Dimensions)
	categories := "(none)"
	if len(resp.Stats.Categories) > 0 {
		categories = strings.Join(resp.Stats.Categories, ", ")
	}
	fmt.Fprintf(w, "  Categories:     %s\n", categories)
	if resp.Recoveries > 0 {
		fmt.Fprintf(w, "  %s\n", style.Warning.Render(
			fmt.Sprintf("Recovered from %d unreadable collection reads", resp.Recoveries)))
	}

	if len(resp.Recent) == 0 {
		return nil
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, style.Subtitle.Render("Recent"))
	for _, doc := range resp.Recent {
		fmt.Fprintf(w, "  %s  %s\n", style.Muted.Render(doc.ID), oneLine(doc.Text))
	}
	return nil
}
