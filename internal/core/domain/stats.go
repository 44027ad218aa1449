package domain

import "sort"

// CorpusStats summarises a corpus. It is derived on demand and never persisted.
type CorpusStats struct {
	// TotalDocuments is the number of stored documents.
	TotalDocuments int `json:"totalDocuments"`

	// AverageTextLength is the mean Metadata.Length, or 0 for an empty corpus.
	AverageTextLength float64 `json:"averageTextLength"`

	// Categories holds the distinct non-empty categories, sorted.
	Categories []string `json:"categories"`
}

// ComputeStats derives CorpusStats from docs.
func ComputeStats(docs []Document) CorpusStats {
	stats := CorpusStats{
		TotalDocuments: len(docs),
		Categories:     []string{},
	}
	if len(docs) == 0 {
		return stats
	}

	seen := make(map[string]struct{})
	var total int
	for i := range docs {
		total += docs[i].Metadata.Length
		if c := docs[i].Metadata.Category; c != "" {
			if _, ok := seen[c]; !ok {
				seen[c] = struct{}{}
				stats.Categories = append(stats.Categories, c)
			}
		}
	}
	sort.Strings(stats.Categories)
	stats.AverageTextLength = float64(total) / float64(len(docs))
	return stats
}
