package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/vecdocs/internal/core/domain"
)

var (
	documentsOffset int
	documentsLimit  int
	documentsJSON   bool
)

var documentsCmd = &cobra.Command{
	Use:     "documents",
	Aliases: []string{"docs"},
	Short:   "Inspect stored documents",
}

var documentsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List documents in insertion order",
	Args:  cobra.NoArgs,
	RunE:  runDocumentsList,
}

var documentsShowCmd = &cobra.Command{
	Use:   "show [doc-id]",
	Short: "Show a document",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentsShow,
}

func init() {
	documentsListCmd.Flags().IntVar(&documentsOffset, "offset", 0, "number of documents to skip")
	documentsListCmd.Flags().IntVarP(&documentsLimit, "limit", "n", 20, "maximum number of documents (0 = all)")
	documentsListCmd.Flags().BoolVar(&documentsJSON, "json", false, "output as JSON")
	documentsShowCmd.Flags().BoolVar(&documentsJSON, "json", false, "output as JSON")

	documentsCmd.AddCommand(documentsListCmd)
	documentsCmd.AddCommand(documentsShowCmd)
	rootCmd.AddCommand(documentsCmd)
}

func runDocumentsList(cmd *cobra.Command, _ []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}
	if documentsOffset < 0 || documentsLimit < 0 {
		return domain.NewValidationError("offset and limit must not be negative")
	}

	docs, err := documentService.List(cmd.Context(), documentsOffset, documentsLimit)
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	if documentsJSON {
		return writeJSON(cmd, docs)
	}

	w := out(cmd)
	if len(docs) == 0 {
		fmt.Fprintln(w, "No documents found.")
		return nil
	}
	for _, doc := range docs {
		category := ""
		if doc.Metadata.Category != "" {
			category = " [" + doc.Metadata.Category + "]"
		}
		fmt.Fprintf(w, "%s%s  %s\n", style.Muted.Render(doc.ID), category,
			oneLine(domain.Preview(doc.Text, domain.PreviewLength)))
	}
	return nil
}

func runDocumentsShow(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	doc, err := documentService.Get(cmd.Context(), args[0])
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("document not found: %s", args[0])
		}
		return fmt.Errorf("failed to get document: %w", err)
	}

	if documentsJSON {
		return writeJSON(cmd, doc)
	}
	printDocument(out(cmd), *doc)
	return nil
}
