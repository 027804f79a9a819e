package qna

import (
	"context"
	"fmt"
	"sync"
	"time"

	"ai-docchat-be/pkg/embedding"
	"ai-docchat-be/pkg/textnorm"

	"github.com/patrickmn/go-cache"
)

const (
	// DefaultMatchThreshold is the minimum similarity a stored question must
	// reach before its canned answer is returned instead of running retrieval.
	DefaultMatchThreshold = 0.85

	// DefaultEmbedWorkers bounds concurrent embedding calls during Refresh.
	DefaultEmbedWorkers = 4
)

// Entry is a question/answer pair as supplied by an uploaded sheet.
type Entry struct {
	Question string
	Answer   string
}

// IndexedEntry is an Entry with its question vectorized, ready for storage.
type IndexedEntry struct {
	Question           string
	NormalizedQuestion string
	Answer             string
	Vector             []float32
}

// Match is the best stored pair for a lookup, with its similarity score.
type Match struct {
	Question string
	Answer   string
	Score    float64
}

// Store is the durable index of question/answer pairs.
type Store interface {
	// SearchBest returns the single most similar stored question, or nil
	// when the index is empty.
	SearchBest(ctx context.Context, vector []float32) (*Match, error)
	// ReplaceAll removes every stored pair and inserts the given ones.
	ReplaceAll(ctx context.Context, entries []*IndexedEntry) error
}

type Config struct {
	MatchThreshold float64
	EmbedWorkers   int
	// HotCacheTTL controls the in-memory exact-match cache. Zero means 1 hour.
	HotCacheTTL time.Duration
}

// Service answers questions that closely match a curated question/answer
// sheet, short-circuiting the retrieval pipeline entirely.
type Service struct {
	store    Store
	embedder embedding.EmbeddingProvider
	cfg      Config

	// hot maps normalized question text to its answer for repeat lookups
	// that are byte-identical after normalization. A vector search is only
	// paid on hot-cache misses.
	hot *cache.Cache
}

func NewService(store Store, embedder embedding.EmbeddingProvider, cfg Config) *Service {
	if cfg.MatchThreshold <= 0 {
		cfg.MatchThreshold = DefaultMatchThreshold
	}
	if cfg.EmbedWorkers <= 0 {
		cfg.EmbedWorkers = DefaultEmbedWorkers
	}
	if cfg.HotCacheTTL <= 0 {
		cfg.HotCacheTTL = 1 * time.Hour
	}
	return &Service{
		store:    store,
		embedder: embedder,
		cfg:      cfg,
		hot:      cache.New(cfg.HotCacheTTL, 10*time.Minute),
	}
}

// Lookup returns the best stored pair for a question, or nil when no stored
// question is similar enough. The question is normalized before embedding so
// wording noise (case, punctuation, filler words) does not perturb the match.
func (s *Service) Lookup(ctx context.Context, question string) (*Match, error) {
	normalized := textnorm.Normalize(question)
	if normalized == "" {
		return nil, nil
	}

	if hit, found := s.hot.Get(normalized); found {
		return hit.(*Match), nil
	}

	res, err := s.embedder.Generate(normalized, embedding.TaskRetrievalQuery)
	if err != nil {
		return nil, fmt.Errorf("embed qna question: %w", err)
	}

	match, err := s.store.SearchBest(ctx, res.Embedding.Values)
	if err != nil {
		return nil, fmt.Errorf("search qna index: %w", err)
	}
	if match == nil || match.Score < s.cfg.MatchThreshold {
		return nil, nil
	}

	s.hot.Set(normalized, match, cache.DefaultExpiration)
	return match, nil
}

// Refresh replaces the whole index with the given entries. Questions are
// embedded concurrently; any embedding failure aborts before the store is
// touched. ReplaceAll deletes before inserting, so a storage failure after
// the delete leaves the index empty rather than stale.
func (s *Service) Refresh(ctx context.Context, entries []Entry) error {
	if len(entries) == 0 {
		return fmt.Errorf("no qna entries to index")
	}

	indexed := make([]*IndexedEntry, len(entries))
	sem := make(chan struct{}, s.cfg.EmbedWorkers)
	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	for i, e := range entries {
		wg.Add(1)
		go func(i int, e Entry) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			normalized := textnorm.Normalize(e.Question)
			res, err := s.embedder.Generate(normalized, embedding.TaskRetrievalDocument)
			if err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = fmt.Errorf("embed qna question %q: %w", e.Question, err)
				}
				mu.Unlock()
				return
			}
			indexed[i] = &IndexedEntry{
				Question:           e.Question,
				NormalizedQuestion: normalized,
				Answer:             e.Answer,
				Vector:             res.Embedding.Values,
			}
		}(i, e)
	}
	wg.Wait()

	if firstErr != nil {
		return firstErr
	}

	if err := s.store.ReplaceAll(ctx, indexed); err != nil {
		return fmt.Errorf("replace qna index: %w", err)
	}

	s.hot.Flush()
	return nil
}

// Clear empties the index and the hot cache.
func (s *Service) Clear(ctx context.Context) error {
	if err := s.store.ReplaceAll(ctx, nil); err != nil {
		return fmt.Errorf("clear qna index: %w", err)
	}
	s.hot.Flush()
	return nil
}
