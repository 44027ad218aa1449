package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/vecdocs/internal/core/domain"
	"github.com/custodia-labs/vecdocs/internal/logger"
)

// minPartition is the smallest number of documents worth a scoring goroutine.
const minPartition = 256

// Ranker scores a corpus snapshot against a query embedding by brute force.
// It holds no per-query state and is safe for concurrent use.
type Ranker struct {
	workers int
}

// NewRanker creates a ranker. With workers <= 1 scoring is sequential.
func NewRanker(workers int) *Ranker {
	if workers < 1 {
		workers = 1
	}
	return &Ranker{workers: workers}
}

// Rank returns up to limit documents ordered by descending cosine similarity.
// Ties keep corpus order. Any document whose embedding length differs from
// the query fails the whole query.
func (r *Ranker) Rank(
	ctx context.Context, query []float32, corpus []domain.Document, limit int,
) ([]domain.SearchResult, error) {
	if limit <= 0 {
		return nil, domain.NewValidationError("limit must be a positive integer, got %d", limit)
	}
	if err := domain.ValidateEmbedding(query); err != nil {
		return nil, err
	}

	start := time.Now()
	if len(corpus) == 0 {
		return []domain.SearchResult{}, nil
	}

	scores := make([]float64, len(corpus))
	if err := r.score(ctx, query, corpus, scores); err != nil {
		return nil, err
	}

	order := make([]int, len(corpus))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return scores[order[i]] > scores[order[j]]
	})
	if len(order) > limit {
		order = order[:limit]
	}

	results := make([]domain.SearchResult, len(order))
	for i, idx := range order {
		results[i] = domain.SearchResult{
			Document:       corpus[idx],
			Similarity:     scores[idx],
			ProcessingTime: time.Since(start),
		}
	}

	logger.Debug("Ranked %d documents in %v, kept %d", len(corpus), time.Since(start), len(results))
	return results, nil
}

// score fills scores[i] with the similarity of corpus[i].
func (r *Ranker) score(ctx context.Context, query []float32, corpus []domain.Document, scores []float64) error {
	parts := r.workers
	if maxParts := (len(corpus) + minPartition - 1) / minPartition; parts > maxParts {
		parts = maxParts
	}
	if parts <= 1 {
		return scoreRange(ctx, query, corpus, scores, 0, len(corpus))
	}

	size := (len(corpus) + parts - 1) / parts
	errs := make([]error, parts)

	var g errgroup.Group
	for p := 0; p < parts; p++ {
		lo := p * size
		hi := min(lo+size, len(corpus))
		if lo >= hi {
			break
		}
		g.Go(func() error {
			errs[p] = scoreRange(ctx, query, corpus, scores, lo, hi)
			return errs[p]
		})
	}
	if err := g.Wait(); err == nil {
		return nil
	}

	// Report the earliest failing partition so the error does not depend on scheduling.
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func scoreRange(ctx context.Context, query []float32, corpus []domain.Document, scores []float64, lo, hi int) error {
	for i := lo; i < hi; i++ {
		if (i-lo)%minPartition == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}

		doc := &corpus[i]
		if len(doc.Embedding) != len(query) {
			return &domain.Error{
				Kind: domain.ErrDimensionMismatch,
				Op:   "rank",
				Message: fmt.Sprintf("document %s has %d dimensions, query has %d",
					doc.ID, len(doc.Embedding), len(query)),
			}
		}

		sim, err := domain.CosineSimilarity(query, doc.Embedding)
		if err != nil {
			return err
		}
		scores[i] = sim
	}
	return nil
}
