// Package handler exposes the search service over HTTP. This is the
// integration seam for the record-management layer: it performs no
// authentication or redaction of its own.
package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/meridianhealth/recordsearch/internal/search"
	"github.com/meridianhealth/recordsearch/internal/search/cache"
	"github.com/meridianhealth/recordsearch/pkg/logger"
	"github.com/meridianhealth/recordsearch/pkg/metrics"
)

// Handler serves the search and introspection endpoints.
type Handler struct {
	service *search.Service
	cache   *cache.QueryCache
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// New creates a Handler. cache and m may be nil (caching disabled, metrics
// disabled).
func New(service *search.Service, queryCache *cache.QueryCache, m *metrics.Metrics) *Handler {
	return &Handler{
		service: service,
		cache:   queryCache,
		metrics: m,
		logger:  slog.Default().With("component", "search-handler"),
	}
}

// Search handles POST /api/v1/search.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()
	log := logger.FromContext(ctx)

	var req search.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Query == "" {
		h.writeError(w, http.StatusBadRequest, "query is required")
		return
	}
	if req.TopK < 0 {
		h.writeError(w, http.StatusBadRequest, "top_k must not be negative")
		return
	}

	var resp *search.Response
	cacheHit := false
	if h.cache != nil {
		resp, cacheHit = h.cache.GetOrCompute(ctx, req, func() *search.Response {
			return h.service.Search(ctx, req)
		})
	} else {
		resp = h.service.Search(ctx, req)
	}

	if h.metrics != nil {
		status := "miss"
		if cacheHit {
			status = "hit"
			h.metrics.CacheHitsTotal.Inc()
		} else {
			h.metrics.CacheMissesTotal.Inc()
		}
		h.metrics.SearchLatency.WithLabelValues(status).Observe(time.Since(start).Seconds())
	}

	log.Info("search completed",
		"query", req.Query,
		"returned", len(resp.Results),
		"cache_hit", cacheHit,
		"latency_ms", time.Since(start).Milliseconds(),
	)
	h.writeJSON(w, http.StatusOK, resp)
}

// Stats handles GET /api/v1/stats with the engine's index statistics.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.service.Statistics())
}

// CacheStats handles GET /api/v1/cache/stats.
func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeJSON(w, http.StatusOK, map[string]string{"status": "disabled"})
		return
	}
	hits, misses := h.cache.Stats()
	total := hits + misses
	var hitRate float64
	if total > 0 {
		hitRate = float64(hits) / float64(total) * 100
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"hits":     hits,
		"misses":   misses,
		"total":    total,
		"hit_rate": fmt.Sprintf("%.1f%%", hitRate),
	})
}

// CacheInvalidate handles POST /api/v1/cache/invalidate.
func (h *Handler) CacheInvalidate(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeError(w, http.StatusServiceUnavailable, "caching is disabled")
		return
	}
	if err := h.cache.Invalidate(r.Context()); err != nil {
		h.logger.Error("cache invalidation failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "cache invalidation failed")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "invalidated"})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
