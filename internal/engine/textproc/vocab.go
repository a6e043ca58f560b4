package textproc

// The vocabulary is grouped by clinical category for maintainability; only
// the flattened set matters for term classification. Multi-word entries
// never match a single token but are kept so the category lists stay
// complete.
var medicalTerms = map[string][]string{
	"symptoms": {
		"headache", "fever", "pain", "nausea", "fatigue", "cough",
		"shortness of breath", "dizziness", "vomiting", "rash",
	},
	"conditions": {
		"hypertension", "diabetes", "asthma", "pneumonia",
		"migraine", "anxiety", "depression", "arthritis",
	},
	"treatments": {
		"medication", "therapy", "surgery", "rest", "hydration",
		"antibiotics", "physical therapy", "counseling",
	},
	"medications": {
		"ibuprofen", "acetaminophen", "amoxicillin", "insulin",
		"albuterol", "metformin", "lisinopril", "aspirin",
	},
}

var medicalVocabulary = flattenVocabulary()

func flattenVocabulary() map[string]struct{} {
	vocab := make(map[string]struct{})
	for _, terms := range medicalTerms {
		for _, t := range terms {
			vocab[t] = struct{}{}
		}
	}
	return vocab
}
