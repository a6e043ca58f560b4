// Package engine implements the in-memory relevance index for medical
// records: it owns the document store, per-term document frequencies, and
// per-document feature vectors, and ranks documents against free-text
// queries with a weighted multi-factor score.
//
// The engine performs no I/O. Writers (Index, Update, Remove) take the write
// lock so no reader observes a partially applied mutation; Search and the
// introspection methods share the read lock.
package engine

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"unicode/utf8"

	"github.com/meridianhealth/recordsearch/internal/engine/feature"
	"github.com/meridianhealth/recordsearch/internal/engine/ranker"
	"github.com/meridianhealth/recordsearch/internal/engine/textproc"
	apperrors "github.com/meridianhealth/recordsearch/pkg/errors"
)

// Engine is the process-wide relevance index for one record collection.
type Engine struct {
	mu        sync.RWMutex
	docs      map[string]*Document
	order     []string
	vectors   map[string][]float64
	docFreq   map[string]int
	totalDocs int
	logger    *slog.Logger
}

// New creates an empty Engine.
func New() *Engine {
	return &Engine{
		docs:    make(map[string]*Document),
		vectors: make(map[string][]float64),
		docFreq: make(map[string]int),
		logger:  slog.Default().With("component", "relevance-engine"),
	}
}

// Index adds a document to the index. Indexing an id that already exists
// replaces the stored document, reversing its old term-frequency
// contribution first. The call either fully applies or leaves the index
// unchanged.
func (e *Engine) Index(id string, text string, metadata map[string]string) error {
	doc, vec, err := buildDocument(id, text, metadata)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if old, exists := e.docs[id]; exists {
		e.replaceLocked(old, doc, vec)
		return nil
	}
	for _, term := range uniqueTerms(doc.Terms) {
		e.docFreq[term]++
	}
	e.docs[id] = doc
	e.vectors[id] = vec
	e.order = append(e.order, id)
	e.totalDocs++

	e.logger.Debug("document indexed", "doc_id", id, "terms", len(doc.Terms))
	return nil
}

// Update replaces an existing document, recomputing its terms and feature
// vector exactly as Index does and applying the document-frequency delta
// between old and new content. Returns ErrRecordNotFound for unknown ids.
func (e *Engine) Update(id string, text string, metadata map[string]string) error {
	doc, vec, err := buildDocument(id, text, metadata)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	old, exists := e.docs[id]
	if !exists {
		return fmt.Errorf("updating document %q: %w", id, apperrors.ErrRecordNotFound)
	}
	e.replaceLocked(old, doc, vec)
	return nil
}

// Remove deletes a document, reversing its contribution to the term
// statistics. Returns ErrRecordNotFound for unknown ids.
func (e *Engine) Remove(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	doc, exists := e.docs[id]
	if !exists {
		return fmt.Errorf("removing document %q: %w", id, apperrors.ErrRecordNotFound)
	}
	for _, term := range uniqueTerms(doc.Terms) {
		e.decrementFreqLocked(term)
	}
	delete(e.docs, id)
	delete(e.vectors, id)
	for i, ordered := range e.order {
		if ordered == id {
			e.order = append(e.order[:i], e.order[i+1:]...)
			break
		}
	}
	e.totalDocs--

	e.logger.Debug("document removed", "doc_id", id)
	return nil
}

// Search ranks all indexed documents against the query and returns at most
// topK results ordered by descending score, ties broken by insertion order.
// Filters are exact-match conjunctions over document metadata; a missing key
// fails the filter. Search never returns an error: inconsistent internal
// state is logged and the affected document skipped.
func (e *Engine) Search(query string, topK int, filters map[string]string) []Result {
	if topK <= 0 {
		return []Result{}
	}

	normalized := textproc.Normalize(query)
	queryTerms := textproc.Tokenize(normalized)
	queryVec := feature.Build(normalized, feature.QueryRecordType, normalized)

	e.mu.RLock()
	results := make([]Result, 0, len(e.order))
	for _, id := range e.order {
		doc := e.docs[id]
		if !matchesFilters(doc.Metadata, filters) {
			continue
		}
		vec, ok := e.vectors[id]
		if !ok {
			e.logger.Error("missing feature vector, skipping document",
				"doc_id", id,
				"error", apperrors.ErrIndexInconsistent,
			)
			continue
		}
		breakdown := ranker.Breakdown{
			TFIDF:    ranker.TFIDF(queryTerms, doc.Terms, e.totalDocs, e.lookupFreqLocked),
			Medical:  ranker.MedicalRelevance(queryTerms, doc.Terms),
			Semantic: ranker.Semantic(queryVec, vec),
			Metadata: ranker.MetadataBoost(query, doc.Metadata),
		}
		// The semantic channel is a similarity proxy, not evidence of a
		// match: a document with no term overlap, no medical-term overlap,
		// and no metadata boost is unrelated to the query and is excluded
		// no matter how close its feature vector sits.
		if breakdown.TFIDF == 0 && breakdown.Medical == 0 && breakdown.Metadata == 0 {
			continue
		}
		score := ranker.Combine(breakdown)
		if score <= 0 {
			continue
		}
		results = append(results, Result{
			ID:        id,
			Score:     score,
			Metadata:  doc.Metadata,
			Breakdown: breakdown,
		})
	}
	e.mu.RUnlock()

	// Candidates were collected in insertion order, so a stable sort keeps
	// that order as the tie-break.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > topK {
		results = results[:topK]
	}

	e.logger.Info("search executed",
		"query", query,
		"query_terms", len(queryTerms),
		"results", len(results),
	)
	return results
}

// Statistics returns index-level counters for monitoring.
func (e *Engine) Statistics() Stats {
	e.mu.RLock()
	defer e.mu.RUnlock()

	medical := 0
	for term := range e.docFreq {
		if textproc.IsMedicalTerm(term) {
			medical++
		}
	}
	var avgLen float64
	if len(e.docs) > 0 {
		total := 0
		for _, doc := range e.docs {
			total += len(doc.Terms)
		}
		avgLen = float64(total) / float64(len(e.docs))
	}
	return Stats{
		TotalDocuments:        e.totalDocs,
		UniqueTerms:           len(e.docFreq),
		MedicalTermsIndexed:   medical,
		AverageDocumentLength: avgLen,
	}
}

// Healthy reports whether the document store and the feature-vector store
// hold exactly the same set of documents.
func (e *Engine) Healthy() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.docs != nil && e.vectors != nil && len(e.docs) == len(e.vectors)
}

// DocumentCount returns the number of currently indexed documents.
func (e *Engine) DocumentCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.totalDocs
}

// replaceLocked swaps old for doc under the write lock, keeping the
// document's original insertion position and adjusting term frequencies by
// the delta between old and new terms.
func (e *Engine) replaceLocked(old *Document, doc *Document, vec []float64) {
	for _, term := range uniqueTerms(old.Terms) {
		e.decrementFreqLocked(term)
	}
	for _, term := range uniqueTerms(doc.Terms) {
		e.docFreq[term]++
	}
	e.docs[doc.ID] = doc
	e.vectors[doc.ID] = vec

	e.logger.Debug("document replaced", "doc_id", doc.ID, "terms", len(doc.Terms))
}

// decrementFreqLocked lowers a term's document frequency, dropping the entry
// at zero so a zero count and absence stay equivalent.
func (e *Engine) decrementFreqLocked(term string) {
	if n := e.docFreq[term]; n <= 1 {
		delete(e.docFreq, term)
	} else {
		e.docFreq[term] = n - 1
	}
}

func (e *Engine) lookupFreqLocked(term string) int {
	return e.docFreq[term]
}

// buildDocument validates the inputs and derives the stored representation.
// It touches no engine state, which keeps the mutating operations atomic:
// all failures happen before the lock is taken.
func buildDocument(id string, text string, metadata map[string]string) (*Document, []float64, error) {
	if id == "" {
		return nil, nil, fmt.Errorf("document id is empty: %w", apperrors.ErrInvalidInput)
	}
	if !utf8.ValidString(text) {
		return nil, nil, fmt.Errorf("document %q text is not valid UTF-8: %w", id, apperrors.ErrInvalidInput)
	}
	for key := range metadata {
		if key == "" {
			return nil, nil, fmt.Errorf("document %q has an empty metadata key: %w", id, apperrors.ErrInvalidInput)
		}
	}

	meta := make(map[string]string, len(metadata))
	for k, v := range metadata {
		meta[k] = v
	}
	normalized := textproc.Normalize(text)
	doc := &Document{
		ID:             id,
		RawText:        text,
		NormalizedText: normalized,
		Terms:          textproc.Tokenize(normalized),
		Metadata:       meta,
	}
	return doc, feature.Build(normalized, meta["record_type"], id), nil
}

func matchesFilters(metadata map[string]string, filters map[string]string) bool {
	for key, want := range filters {
		got, ok := metadata[key]
		if !ok || got != want {
			return false
		}
	}
	return true
}

func uniqueTerms(terms []string) []string {
	seen := make(map[string]struct{}, len(terms))
	unique := make([]string, 0, len(terms))
	for _, t := range terms {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		unique = append(unique, t)
	}
	return unique
}
