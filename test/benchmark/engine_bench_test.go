package benchmark

import (
	"fmt"
	"testing"

	"github.com/meridianhealth/recordsearch/internal/engine"
)

var recordTexts = []string{
	"severe migraine headache with aura lasting several hours",
	"type 2 diabetes mellitus follow up on metformin dosage",
	"chest x-ray imaging shows no acute findings",
	"prescribed lisinopril for hypertension management",
	"persistent cough fever and fatigue over two weeks",
	"mri of lumbar spine ordered for chronic back pain",
	"post surgery physical therapy progressing well",
	"lab results show elevated glucose and cholesterol",
}

var recordTypes = []string{"consultation", "lab_result", "imaging", "prescription"}

func seedEngine(b *testing.B, n int) *engine.Engine {
	b.Helper()
	e := engine.New()
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("doc-%d", i)
		metadata := map[string]string{
			"record_type": recordTypes[i%len(recordTypes)],
			"visit_date":  "2026-03-15",
		}
		if err := e.Index(id, recordTexts[i%len(recordTexts)], metadata); err != nil {
			b.Fatal(err)
		}
	}
	return e
}

// BenchmarkEngineIndex measures per-document insert throughput at various
// pre-loaded corpus sizes.
func BenchmarkEngineIndex(b *testing.B) {
	sizes := []int{100, 1000, 5000}
	for _, preload := range sizes {
		b.Run(fmt.Sprintf("preload_%d", preload), func(b *testing.B) {
			e := seedEngine(b, preload)
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				id := fmt.Sprintf("bench-%d", i)
				if err := e.Index(id, recordTexts[i%len(recordTexts)], nil); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// BenchmarkEngineSearch measures end-to-end query latency over a 10 000
// document corpus.
func BenchmarkEngineSearch(b *testing.B) {
	e := seedEngine(b, 10000)
	queries := []string{
		"migraine headache",
		"diabetes metformin",
		"chest imaging",
		"hypertension medication",
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		results := e.Search(queries[i%len(queries)], 10, nil)
		_ = results
	}
}

// BenchmarkEngineSearchParallel measures concurrent read throughput under the
// shared read lock.
func BenchmarkEngineSearchParallel(b *testing.B) {
	e := seedEngine(b, 10000)

	b.ReportAllocs()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			results := e.Search("migraine headache", 10, nil)
			_ = results
		}
	})
}

// BenchmarkEngineSearchFiltered measures the cost of metadata filtering on
// top of scoring.
func BenchmarkEngineSearchFiltered(b *testing.B) {
	e := seedEngine(b, 10000)
	filters := map[string]string{"record_type": "consultation"}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		results := e.Search("migraine headache", 10, filters)
		_ = results
	}
}

// BenchmarkEngineUpdate measures in-place replacement cost including the
// document frequency rebookkeeping.
func BenchmarkEngineUpdate(b *testing.B) {
	e := seedEngine(b, 1000)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		id := fmt.Sprintf("doc-%d", i%1000)
		if err := e.Update(id, recordTexts[(i+1)%len(recordTexts)], nil); err != nil {
			b.Fatal(err)
		}
	}
}
