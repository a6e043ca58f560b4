package engine

import "github.com/meridianhealth/recordsearch/internal/engine/ranker"

// Document is an indexed record. RawText is kept verbatim; NormalizedText
// and Terms are derived once at (re)index time and never mutated in place.
type Document struct {
	ID             string
	RawText        string
	NormalizedText string
	Terms          []string
	Metadata       map[string]string
}

// Result is one ranked search hit: the caller's identifier, the composite
// score with its component breakdown, and the metadata the document was
// indexed with. Resolving the identifier back to the authoritative record is
// the caller's job.
type Result struct {
	ID        string            `json:"id"`
	Score     float64           `json:"score"`
	Metadata  map[string]string `json:"metadata"`
	Breakdown ranker.Breakdown  `json:"score_breakdown"`
}

// Stats is a point-in-time summary of the index for monitoring.
type Stats struct {
	TotalDocuments        int     `json:"total_documents"`
	UniqueTerms           int     `json:"unique_terms"`
	MedicalTermsIndexed   int     `json:"medical_terms_indexed"`
	AverageDocumentLength float64 `json:"average_document_length"`
}
