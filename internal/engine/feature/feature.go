// Package feature builds the fixed-length numeric summaries the relevance
// engine uses as a cosine-similarity proxy for semantic relatedness. The
// vectors are not learned embeddings: they combine simple text statistics, a
// one-hot record-type block, and a deterministic per-document filler channel.
package feature

import (
	"crypto/sha256"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/meridianhealth/recordsearch/internal/engine/textproc"
)

// Dimensions is the fixed length of every feature vector:
// 2 text statistics + 1 medical density + 4 record-type one-hot + 10 filler.
const Dimensions = 17

// fillerDims is the number of trailing deterministic filler dimensions.
const fillerDims = 10

// recordTypes is the ordered list encoded by the one-hot block. Any other
// record type (including "query") leaves the block all-zero.
var recordTypes = [4]string{"consultation", "lab_result", "imaging", "prescription"}

// QueryRecordType is the record type assigned to query vectors so their
// one-hot block never matches a stored document's.
const QueryRecordType = "query"

// Build constructs the feature vector for normalised text. The seed keys the
// filler channel; Build is a pure function of (normalized, recordType, seed),
// so the same document always produces the same vector.
func Build(normalized string, recordType string, seed string) []float64 {
	vec := make([]float64, 0, Dimensions)

	words := strings.Fields(normalized)
	vec = append(vec, float64(utf8.RuneCountInString(normalized)))
	vec = append(vec, float64(len(words)))

	medical := 0
	for _, w := range words {
		if textproc.IsMedicalTerm(w) {
			medical++
		}
	}
	vec = append(vec, float64(medical)/math.Max(float64(len(words)), 1))

	for _, rt := range recordTypes {
		if rt == recordType {
			vec = append(vec, 1.0)
		} else {
			vec = append(vec, 0.0)
		}
	}

	return append(vec, filler(seed)...)
}

// filler expands the seed into ten floats in [0, 0.1). Hashing the seed
// instead of drawing from a random source keeps scores reproducible across
// runs and processes.
func filler(seed string) []float64 {
	sum := sha256.Sum256([]byte(seed))
	out := make([]float64, fillerDims)
	for i := range out {
		// Three hash bytes per dimension give a 24-bit fraction.
		v := uint32(sum[3*i])<<16 | uint32(sum[3*i+1])<<8 | uint32(sum[3*i+2])
		out[i] = float64(v) / float64(1<<24) * 0.1
	}
	return out
}

// Cosine returns the cosine similarity of a and b. The second return value
// is false when the similarity is undefined: mismatched lengths or a
// zero-norm operand.
func Cosine(a, b []float64) (float64, bool) {
	if len(a) != len(b) {
		return 0, false
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0, false
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), true
}
