// Package benchmark contains Go benchmarks for text processing, feature
// extraction, and the relevance engine, measuring throughput and allocation
// behaviour.
package benchmark

import (
	"fmt"
	"strings"
	"testing"

	"github.com/meridianhealth/recordsearch/internal/engine/feature"
	"github.com/meridianhealth/recordsearch/internal/engine/textproc"
)

var sampleTexts = map[string]string{
	"short": "Patient presents with severe migraine headache and nausea",
	"medium": `Patient is a 54 year old with a history of type 2 diabetes mellitus
        and hypertension, presenting with intermittent chest pain radiating to the
        left arm. ECG shows no acute changes. Troponin negative on serial draws.
        Started on aspirin and referred to cardiology for stress testing. Blood
        pressure controlled on lisinopril, HbA1c 7.2 on metformin. Follow up in
        two weeks with repeat labs and medication review.`,
	"long": strings.Repeat(`Comprehensive review of systems was performed. The patient
        reports chronic fatigue, occasional dizziness, and recurring headaches over
        the past three months. Physical examination reveals mild tenderness in the
        upper abdomen. Laboratory results show elevated glucose and borderline
        cholesterol levels. Imaging of the chest was unremarkable. Treatment plan
        includes dietary modification, increased physical activity, metformin
        titration, and a follow up appointment in six weeks for repeat labs. `, 20),
}

func BenchmarkNormalize(b *testing.B) {
	for name, text := range sampleTexts {
		b.Run(name, func(b *testing.B) {
			b.ReportAllocs()
			b.SetBytes(int64(len(text)))
			for i := 0; i < b.N; i++ {
				normalized := textproc.Normalize(text)
				_ = normalized
			}
		})
	}
}

func BenchmarkTokenize(b *testing.B) {
	for name, text := range sampleTexts {
		normalized := textproc.Normalize(text)
		b.Run(name, func(b *testing.B) {
			b.ReportAllocs()
			b.SetBytes(int64(len(normalized)))
			for i := 0; i < b.N; i++ {
				tokens := textproc.Tokenize(normalized)
				_ = tokens
			}
		})
	}
}

func BenchmarkTokenizeParallel(b *testing.B) {
	normalized := textproc.Normalize(sampleTexts["medium"])
	b.ReportAllocs()
	b.SetBytes(int64(len(normalized)))
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			tokens := textproc.Tokenize(normalized)
			_ = tokens
		}
	})
}

func BenchmarkIsMedicalTerm(b *testing.B) {
	terms := []string{
		"migraine", "metformin", "diabetes", "hypertension",
		"paperwork", "appointment", "chest", "fatigue",
	}
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		for _, term := range terms {
			_ = textproc.IsMedicalTerm(term)
		}
	}
}

func BenchmarkFeatureBuild(b *testing.B) {
	for name, text := range sampleTexts {
		normalized := textproc.Normalize(text)
		b.Run(name, func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				vec := feature.Build(normalized, "consultation", "bench-doc")
				_ = vec
			}
		})
	}
}

func BenchmarkCosine(b *testing.B) {
	q := feature.Build(textproc.Normalize(sampleTexts["short"]), feature.QueryRecordType, "query-seed")
	docs := make([][]float64, 100)
	for i := range docs {
		docs[i] = feature.Build(textproc.Normalize(sampleTexts["medium"]), "consultation", fmt.Sprintf("doc-%d", i))
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		sim, _ := feature.Cosine(q, docs[i%len(docs)])
		_ = sim
	}
}
