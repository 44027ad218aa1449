package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/vecdocs/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/vecdocs/internal/core/domain"
)

var style = styles.DefaultStyles()

func out(cmd *cobra.Command) io.Writer {
	return cmd.OutOrStdout()
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(out(cmd))
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// parseEmbedding parses a JSON array of numbers such as "[0.1, 0.2]".
func parseEmbedding(raw string) ([]float32, error) {
	var values []float64
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return nil, domain.NewValidationError("embedding must be a JSON array of numbers: %v", err)
	}
	vec := make([]float32, len(values))
	for i, v := range values {
		vec[i] = float32(v)
	}
	return vec, nil
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

func formatTime(t time.Time) string {
	return t.Local().Format(time.DateTime)
}

func formatElapsed(d time.Duration) string {
	return fmt.Sprintf("%.2fms", float64(d.Microseconds())/1000)
}

// oneLine collapses whitespace so previews fit on a single line.
func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func printDocument(w io.Writer, doc domain.DocumentView) {
	fmt.Fprintf(w, "%s %s\n", style.Subtitle.Render("Document:"), doc.ID)
	fmt.Fprintf(w, "  Category: %s\n", orNone(doc.Metadata.Category))
	fmt.Fprintf(w, "  Length:   %d\n", doc.Metadata.Length)
	fmt.Fprintf(w, "  Created:  %s\n", formatTime(doc.Metadata.CreatedAt))
	fmt.Fprintln(w)
	fmt.Fprintln(w, doc.Text)
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
