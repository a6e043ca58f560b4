package textproc

import (
	"reflect"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lowercases", "Severe Migraine", "severe migraine"},
		{"collapses whitespace", "fever\t and \n  chills", "fever and chills"},
		{"strips punctuation", "nausea, vomiting; rash!", "nausea vomiting rash"},
		{"keeps hyphen and slash", "follow-up 10 mg/dl", "follow-up 10 mg/dl"},
		{"keeps underscore", "lab_result pending", "lab_result pending"},
		{"trims edges", "  headache  ", "headache"},
		{"empty input", "", ""},
		{"only punctuation", "..!?,,", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"Severe migraine headache with aura, lasted six hours!",
		"Type 2 diabetes mellitus — follow up (metformin)",
		"  BP 120/80,   HR 72  ",
		"",
	}
	for _, in := range inputs {
		once := Normalize(in)
		if twice := Normalize(once); twice != once {
			t.Errorf("Normalize not idempotent for %q: first %q, second %q", in, once, twice)
		}
	}
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{
			"drops stop words",
			"pain in the chest with nausea",
			[]string{"pain", "chest", "nausea"},
		},
		{
			"drops short tokens",
			"bp is 90 over 60 mm hg",
			[]string{"over"},
		},
		{
			"preserves order and duplicates",
			"fever chills fever",
			[]string{"fever", "chills", "fever"},
		},
		{"empty", "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tokenize(Normalize(tt.in))
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Tokenize(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestIsMedicalTerm(t *testing.T) {
	for _, term := range []string{"migraine", "headache", "metformin", "therapy", "rash"} {
		if !IsMedicalTerm(term) {
			t.Errorf("IsMedicalTerm(%q) = false, want true", term)
		}
	}
	for _, term := range []string{"patient", "followup", "MIGRAINE", ""} {
		if IsMedicalTerm(term) {
			t.Errorf("IsMedicalTerm(%q) = true, want false", term)
		}
	}
}

func TestVocabularyFlattened(t *testing.T) {
	// Every category entry must be reachable through the flattened set,
	// including the multi-word ones.
	total := 0
	for category, terms := range medicalTerms {
		total += len(terms)
		for _, term := range terms {
			if !IsMedicalTerm(term) {
				t.Errorf("category %s term %q missing from flattened vocabulary", category, term)
			}
		}
	}
	if VocabularySize() != total {
		t.Errorf("VocabularySize() = %d, want %d", VocabularySize(), total)
	}
}
