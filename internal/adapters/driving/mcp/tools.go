package mcp

import (
	"context"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/vecdocs/internal/core/domain"
)

// IngestInput is the input schema for the ingest tool.
type IngestInput struct {
	Text      string    `json:"text" jsonschema:"the document text to store"`
	Category  string    `json:"category,omitempty" jsonschema:"optional label for the document"`
	Embedding []float32 `json:"embedding,omitempty" jsonschema:"embedding vector for the text; computed by the configured provider when omitted"`
}

// IngestOutput is the output schema for the ingest tool.
type IngestOutput struct {
	ID             string  `json:"id"`
	Preview        string  `json:"preview"`
	Category       string  `json:"category,omitempty"`
	Length         int     `json:"length"`
	CreatedAt      string  `json:"created_at"`
	TotalDocuments int     `json:"total_documents"`
	ElapsedMS      float64 `json:"elapsed_ms"`
}

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	Query     string    `json:"query,omitempty" jsonschema:"query text, embedded by the configured provider"`
	Embedding []float32 `json:"embedding,omitempty" jsonschema:"query embedding; takes precedence over query"`
	Limit     *int      `json:"limit,omitempty" jsonschema:"maximum number of results to return (default 10)"`
}

// SearchOutput is the output schema for the search tool.
type SearchOutput struct {
	Results   []SearchResultOutput `json:"results"`
	Count     int                  `json:"count"`
	ElapsedMS float64              `json:"elapsed_ms"`
}

// SearchResultOutput represents a single search result.
type SearchResultOutput struct {
	DocumentID       string  `json:"document_id"`
	Text             string  `json:"text"`
	Category         string  `json:"category,omitempty"`
	CreatedAt        string  `json:"created_at"`
	Similarity       float64 `json:"similarity"`
	ProcessingTimeMS float64 `json:"processing_time_ms"`
}

// StatsInput is the input schema for the stats tool.
type StatsInput struct {
	Preview *int `json:"preview,omitempty" jsonschema:"number of recent documents to include (default 5)"`
}

// StatsOutput is the output schema for the stats tool.
type StatsOutput struct {
	TotalDocuments    int              `json:"total_documents"`
	AverageTextLength float64          `json:"average_text_length"`
	Categories        []string         `json:"categories"`
	Dimensions        int              `json:"dimensions"`
	Recoveries        int64            `json:"recoveries"`
	Recent            []DocumentOutput `json:"recent"`
}

// DocumentOutput is a stored document without its embedding.
type DocumentOutput struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Category  string `json:"category,omitempty"`
	Length    int    `json:"length"`
	CreatedAt string `json:"created_at"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ingest",
		Description: "Store a text document with its embedding in the local corpus",
	}, s.handleIngest)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search",
		Description: "Find the documents most similar to a query by cosine similarity",
	}, s.handleSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "stats",
		Description: "Report corpus statistics and the most recently ingested documents",
	}, s.handleStats)
}

// handleIngest handles the ingest tool invocation.
func (s *Server) handleIngest(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input IngestInput,
) (*mcp.CallToolResult, IngestOutput, error) {
	resp, err := s.ports.Document.Ingest(ctx, domain.IngestRequest{
		Text:      input.Text,
		Category:  input.Category,
		Embedding: input.Embedding,
	})
	if err != nil {
		return nil, IngestOutput{}, toolError(err)
	}

	return nil, IngestOutput{
		ID:             resp.ID,
		Preview:        resp.Preview,
		Category:       resp.Metadata.Category,
		Length:         resp.Metadata.Length,
		CreatedAt:      formatTime(resp.Metadata.CreatedAt),
		TotalDocuments: resp.Stats.TotalDocuments,
		ElapsedMS:      millis(resp.Elapsed),
	}, nil
}

// handleSearch handles the search tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	req := domain.SearchRequest{
		Query:          input.Query,
		QueryEmbedding: input.Embedding,
		Limit:          input.Limit,
	}

	resp, err := s.ports.Search.Search(ctx, req)
	if err != nil {
		return nil, SearchOutput{}, toolError(err)
	}

	output := SearchOutput{
		Results:   make([]SearchResultOutput, len(resp.Results)),
		Count:     len(resp.Results),
		ElapsedMS: millis(resp.Elapsed),
	}

	for i := range resp.Results {
		doc := resp.Results[i].Document
		output.Results[i] = SearchResultOutput{
			DocumentID:       doc.ID,
			Text:             doc.Text,
			Category:         doc.Metadata.Category,
			CreatedAt:        formatTime(doc.Metadata.CreatedAt),
			Similarity:       resp.Results[i].Similarity,
			ProcessingTimeMS: millis(resp.Results[i].ProcessingTime),
		}
	}

	return nil, output, nil
}

// handleStats handles the stats tool invocation.
func (s *Server) handleStats(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input StatsInput,
) (*mcp.CallToolResult, StatsOutput, error) {
	preview := domain.DefaultStatsPreview
	if input.Preview != nil {
		preview = *input.Preview
	}

	resp, err := s.ports.Document.Stats(ctx, preview)
	if err != nil {
		return nil, StatsOutput{}, toolError(err)
	}

	return nil, statsOutput(resp), nil
}

func statsOutput(resp *domain.StatsResponse) StatsOutput {
	out := StatsOutput{
		TotalDocuments:    resp.Stats.TotalDocuments,
		AverageTextLength: resp.Stats.AverageTextLength,
		Categories:        resp.Stats.Categories,
		Dimensions:        resp.Dimensions,
		Recoveries:        resp.Recoveries,
		Recent:            make([]DocumentOutput, len(resp.Recent)),
	}
	if out.Categories == nil {
		out.Categories = []string{}
	}
	for i := range resp.Recent {
		out.Recent[i] = documentOutput(resp.Recent[i])
	}
	return out
}

func documentOutput(v domain.DocumentView) DocumentOutput {
	return DocumentOutput{
		ID:        v.ID,
		Text:      v.Text,
		Category:  v.Metadata.Category,
		Length:    v.Metadata.Length,
		CreatedAt: formatTime(v.Metadata.CreatedAt),
	}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
