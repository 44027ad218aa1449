package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/vecdocs/internal/core/domain"
)

var (
	searchEmbedding string
	searchLimit     int
	searchJSON      bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search indexed documents",
	Long: `Ranks every stored document by cosine similarity to a query vector.

The query vector is given with --embedding as a JSON array, or computed from
the query text by the configured embedding provider. --embedding wins when
both are given.

Examples:
  vecdocs search --embedding "[0.1, 0.2, 0.3]" -n 5
  vecdocs search "how do I rotate keys"`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringVarP(&searchEmbedding, "embedding", "e", "", "query vector as a JSON array")
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", domain.DefaultSearchLimit, "maximum number of results")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if searchService == nil {
		return errors.New("search service not configured")
	}

	var req domain.SearchRequest
	if len(args) > 0 {
		req.Query = args[0]
	}
	if searchEmbedding != "" {
		vec, err := parseEmbedding(searchEmbedding)
		if err != nil {
			return err
		}
		req.QueryEmbedding = vec
	}
	if cmd.Flags().Changed("limit") {
		req.Limit = domain.IntPtr(searchLimit)
	}

	resp, err := searchService.Search(cmd.Context(), req)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return writeJSON(cmd, resp)
	}
	outputSearchTable(cmd, resp)
	return nil
}

func outputSearchTable(cmd *cobra.Command, resp *domain.SearchResponse) {
	w := out(cmd)
	if len(resp.Results) == 0 {
		fmt.Fprintln(w, "No results found.")
		return
	}

	fmt.Fprintln(w, style.Title.Render("Results:"))
	fmt.Fprintln(w)
	for i := range resp.Results {
		r := &resp.Results[i]
		fmt.Fprintf(w, "  [%d] %s %s\n", i+1, r.Document.ID, style.Muted.Render(fmt.Sprintf("(%.4f)", r.Similarity)))
		if r.Document.Metadata.Category != "" {
			fmt.Fprintf(w, "      Category: %s\n", r.Document.Metadata.Category)
		}
		fmt.Fprintf(w, "      %s\n", oneLine(domain.Preview(r.Document.Text, domain.PreviewLength)))
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "%d results in %s\n", len(resp.Results), formatElapsed(resp.Elapsed))
}
