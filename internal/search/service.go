// Package search is the service-facing surface of the relevance engine. It
// applies configured result limits, records metrics, and exposes the
// mutating operations the ingest pipeline drives.
package search

import (
	"context"
	"log/slog"

	"github.com/meridianhealth/recordsearch/internal/engine"
	"github.com/meridianhealth/recordsearch/pkg/config"
	"github.com/meridianhealth/recordsearch/pkg/metrics"
)

// Request is a single search invocation.
type Request struct {
	Query   string            `json:"query"`
	TopK    int               `json:"top_k"`
	Filters map[string]string `json:"filters,omitempty"`
}

// Response carries the ranked results for a Request.
type Response struct {
	Query   string          `json:"query"`
	TopK    int             `json:"top_k"`
	Results []engine.Result `json:"results"`
}

// Service wraps the engine with limits and metrics. All methods are safe for
// concurrent use; the engine provides the locking discipline.
type Service struct {
	engine  *engine.Engine
	metrics *metrics.Metrics
	cfg     config.SearchConfig
	logger  *slog.Logger
}

// New creates a Service over the given engine. metrics may be nil in tests.
func New(eng *engine.Engine, m *metrics.Metrics, cfg config.SearchConfig) *Service {
	return &Service{
		engine:  eng,
		metrics: m,
		cfg:     cfg,
		logger:  slog.Default().With("component", "search-service"),
	}
}

// Search clamps the requested result count to the configured bounds and
// executes the query. It never fails; an unusable request yields an empty
// result set.
func (s *Service) Search(ctx context.Context, req Request) *Response {
	topK := req.TopK
	if topK <= 0 {
		topK = s.cfg.DefaultTopK
	}
	if s.cfg.MaxResults > 0 && topK > s.cfg.MaxResults {
		topK = s.cfg.MaxResults
	}

	results := s.engine.Search(req.Query, topK, req.Filters)

	if s.metrics != nil {
		resultType := "hit"
		if len(results) == 0 {
			resultType = "zero_result"
		}
		s.metrics.SearchQueriesTotal.WithLabelValues(resultType).Inc()
		s.metrics.SearchResultsCount.Observe(float64(len(results)))
	}
	return &Response{
		Query:   req.Query,
		TopK:    topK,
		Results: results,
	}
}

// IndexRecord adds or replaces a record in the index.
func (s *Service) IndexRecord(ctx context.Context, id string, text string, metadata map[string]string) error {
	if err := s.engine.Index(id, text, metadata); err != nil {
		return err
	}
	if s.metrics != nil {
		s.metrics.DocsIndexedTotal.Inc()
		s.metrics.IndexedDocuments.Set(float64(s.engine.DocumentCount()))
	}
	return nil
}

// UpdateRecord replaces an existing record.
func (s *Service) UpdateRecord(ctx context.Context, id string, text string, metadata map[string]string) error {
	if err := s.engine.Update(id, text, metadata); err != nil {
		return err
	}
	if s.metrics != nil {
		s.metrics.DocsUpdatedTotal.Inc()
	}
	return nil
}

// RemoveRecord deletes a record from the index.
func (s *Service) RemoveRecord(ctx context.Context, id string) error {
	if err := s.engine.Remove(id); err != nil {
		return err
	}
	if s.metrics != nil {
		s.metrics.DocsRemovedTotal.Inc()
		s.metrics.IndexedDocuments.Set(float64(s.engine.DocumentCount()))
	}
	return nil
}

// Statistics returns the engine's monitoring counters.
func (s *Service) Statistics() engine.Stats {
	return s.engine.Statistics()
}

// Healthy reports the engine's internal consistency.
func (s *Service) Healthy() bool {
	return s.engine.Healthy()
}
