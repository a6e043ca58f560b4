// Package ranker computes the component relevance scores and their weighted
// combination for the record search engine. All functions are pure; the
// engine supplies term statistics through callbacks so the ranker carries no
// index state of its own.
package ranker

import (
	"math"
	"strings"

	"github.com/meridianhealth/recordsearch/internal/engine/feature"
	"github.com/meridianhealth/recordsearch/internal/engine/textproc"
)

// Component weights of the final score.
const (
	weightTFIDF    = 0.4
	weightMedical  = 0.3
	weightSemantic = 0.2
	weightMetadata = 0.1
)

// visitDateKey marks records carrying a visit date; its presence earns a
// fixed boost in place of a real recency computation.
const visitDateKey = "visit_date"

// recordTypeKey is the metadata key matched as a substring of the query.
const recordTypeKey = "record_type"

// Breakdown holds the four component scores for one document, kept in search
// results for score analysis.
type Breakdown struct {
	TFIDF    float64 `json:"tfidf"`
	Medical  float64 `json:"medical"`
	Semantic float64 `json:"semantic"`
	Metadata float64 `json:"metadata"`
}

// Combine returns the weighted sum of the component scores.
func Combine(b Breakdown) float64 {
	return b.TFIDF*weightTFIDF +
		b.Medical*weightMedical +
		b.Semantic*weightSemantic +
		b.Metadata*weightMetadata
}

// TFIDF scores query terms against a document's term sequence. For each
// query term found in the document it accumulates
// (occurrences/docLen) * ln((totalDocs+1)/(df+1)), then normalises by the
// query length. Zero when either side has no terms.
func TFIDF(queryTerms, docTerms []string, totalDocs int, docFreq func(term string) int) float64 {
	if len(queryTerms) == 0 || len(docTerms) == 0 {
		return 0
	}
	termFreq := make(map[string]int, len(docTerms))
	for _, t := range docTerms {
		termFreq[t]++
	}
	score := 0.0
	for _, term := range queryTerms {
		occurrences, ok := termFreq[term]
		if !ok {
			continue
		}
		tf := float64(occurrences) / float64(len(docTerms))
		idf := math.Log(float64(totalDocs+1) / float64(docFreq(term)+1))
		score += tf * idf
	}
	return score / float64(len(queryTerms))
}

// MedicalRelevance is the fraction of medical-vocabulary query terms that
// also occur in the document. Zero when the query carries no medical terms.
func MedicalRelevance(queryTerms, docTerms []string) float64 {
	medicalQuery := make([]string, 0, len(queryTerms))
	for _, t := range queryTerms {
		if textproc.IsMedicalTerm(t) {
			medicalQuery = append(medicalQuery, t)
		}
	}
	if len(medicalQuery) == 0 {
		return 0
	}
	docSet := make(map[string]struct{}, len(docTerms))
	for _, t := range docTerms {
		docSet[t] = struct{}{}
	}
	matches := 0
	for _, t := range medicalQuery {
		if _, ok := docSet[t]; ok {
			matches++
		}
	}
	return float64(matches) / float64(len(medicalQuery))
}

// Semantic remaps the cosine similarity of two feature vectors from [-1, 1]
// to [0, 1]. Zero-norm vectors score 0 rather than 0.5.
func Semantic(queryVec, docVec []float64) float64 {
	cos, ok := feature.Cosine(queryVec, docVec)
	if !ok {
		return 0
	}
	return (cos + 1) / 2
}

// MetadataBoost adds 0.1 when the record carries a visit date and 0.3 when
// its record type appears verbatim in the query text, clamped to 1.0.
func MetadataBoost(queryText string, metadata map[string]string) float64 {
	boost := 0.0
	if _, ok := metadata[visitDateKey]; ok {
		boost += 0.1
	}
	recordType := strings.ToLower(metadata[recordTypeKey])
	if recordType != "" && strings.Contains(strings.ToLower(queryText), recordType) {
		boost += 0.3
	}
	return math.Min(boost, 1.0)
}
