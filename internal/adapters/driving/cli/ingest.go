package cli

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/vecdocs/internal/core/domain"
)

// maxLineSize bounds a single JSONL record.
const maxLineSize = 16 << 20

var (
	ingestCategory  string
	ingestEmbedding string
	ingestFile      string
	ingestJSON      bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [text]",
	Short: "Add a document to the collection",
	Long: `Stores a text document together with its embedding vector.

The embedding is given with --embedding as a JSON array. Without it the
configured embedding provider computes one. All documents in the collection
must share the embedding length of the first document.

When no text argument is given the text is read from stdin.

Use --file to ingest a JSON Lines file, one {"text", "category", "embedding"}
object per line. Ingestion stops at the first failing line.

Examples:
  vecdocs ingest "The quick brown fox" --embedding "[0.1, 0.2, 0.3]"
  echo "notes from today" | vecdocs ingest --category journal
  vecdocs ingest --file docs.jsonl`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVarP(&ingestCategory, "category", "c", "", "optional category label")
	ingestCmd.Flags().StringVarP(&ingestEmbedding, "embedding", "e", "", `embedding vector as a JSON array, e.g. "[0.1,0.2]"`)
	ingestCmd.Flags().StringVarP(&ingestFile, "file", "f", "", "ingest a JSON Lines file ('-' for stdin)")
	ingestCmd.Flags().BoolVar(&ingestJSON, "json", false, "output the result as JSON")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	if ingestFile != "" {
		if len(args) > 0 || ingestEmbedding != "" {
			return domain.NewValidationError("--file cannot be combined with a text argument or --embedding")
		}
		return ingestFromFile(cmd, ingestFile)
	}

	text, err := ingestText(cmd, args)
	if err != nil {
		return err
	}

	req := domain.IngestRequest{Text: text, Category: ingestCategory}
	if ingestEmbedding != "" {
		if req.Embedding, err = parseEmbedding(ingestEmbedding); err != nil {
			return err
		}
	}

	resp, err := documentService.Ingest(cmd.Context(), req)
	if err != nil {
		return err
	}

	if ingestJSON {
		return writeJSON(cmd, resp)
	}

	w := out(cmd)
	fmt.Fprintf(w, "%s %s\n", style.Success.Render("Ingested document"), resp.ID)
	fmt.Fprintf(w, "  %s\n", oneLine(resp.Preview))
	fmt.Fprintf(w, "  Collection: %d documents, average length %.1f (%s)\n",
		resp.Stats.TotalDocuments, resp.Stats.AverageTextLength, formatElapsed(resp.Elapsed))
	return nil
}

// ingestText returns the text argument, or stdin when it is piped.
func ingestText(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}

	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return "", domain.NewValidationError("text is required: pass it as an argument or pipe it on stdin")
	}

	data, err := io.ReadAll(in)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return strings.TrimRight(string(data), "\r\n"), nil
}

func ingestFromFile(cmd *cobra.Command, path string) error {
	var r io.Reader
	if path == "-" {
		r = cmd.InOrStdin()
	} else {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("open %s: %w", path, err)
		}
		defer f.Close()
		r = f
	}

	reqs, lines, err := readJSONL(r, path, ingestCategory)
	if err != nil {
		return err
	}
	if len(reqs) == 0 {
		return domain.NewValidationError("%s contains no documents", path)
	}

	resps, err := documentService.IngestBatch(cmd.Context(), reqs)

	var batchErr *domain.BatchError
	if errors.As(err, &batchErr) {
		err = fmt.Errorf("%s:%d: %w", path, lines[batchErr.Index], batchErr.Err)
	}

	if ingestJSON {
		if len(resps) > 0 || err == nil {
			if jsonErr := writeJSON(cmd, resps); jsonErr != nil {
				return jsonErr
			}
		}
		return err
	}

	w := out(cmd)
	if len(resps) > 0 {
		last := resps[len(resps)-1]
		fmt.Fprintf(w, "%s %d of %d documents from %s\n",
			style.Success.Render("Ingested"), len(resps), len(reqs), path)
		fmt.Fprintf(w, "  Collection: %d documents, average length %.1f\n",
			last.Stats.TotalDocuments, last.Stats.AverageTextLength)
	}
	return err
}

// readJSONL decodes one request per non-blank line and records each
// request's 1-based line number. Lines without a category get defaultCategory.
func readJSONL(r io.Reader, name, defaultCategory string) ([]domain.IngestRequest, []int, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	var (
		reqs  []domain.IngestRequest
		lines []int
	)
	for lineNo := 1; scanner.Scan(); lineNo++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var req domain.IngestRequest
		if err := json.Unmarshal([]byte(line), &req); err != nil {
			return nil, nil, domain.NewValidationError("%s:%d: invalid JSON: %v", name, lineNo, err)
		}
		if req.Category == "" {
			req.Category = defaultCategory
		}
		reqs = append(reqs, req)
		lines = append(lines, lineNo)
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", name, err)
	}
	return reqs, lines, nil
}
