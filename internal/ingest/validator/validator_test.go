package validator

import (
	"errors"
	"strings"
	"testing"

	"github.com/meridianhealth/recordsearch/internal/ingest"
)

func TestValidateRecordEvent(t *testing.T) {
	tests := []struct {
		name       string
		event      ingest.RecordEvent
		wantFields []string
	}{
		{
			name: "valid create",
			event: ingest.RecordEvent{
				Op:       ingest.OpCreate,
				RecordID: "rec-1",
				Text:     "patient reports migraine",
				Metadata: map[string]string{"record_type": "consultation"},
			},
		},
		{
			name: "valid delete without text",
			event: ingest.RecordEvent{
				Op:       ingest.OpDelete,
				RecordID: "rec-1",
			},
		},
		{
			name:       "unknown op",
			event:      ingest.RecordEvent{Op: "upsert", RecordID: "rec-1", Text: "x"},
			wantFields: []string{"op"},
		},
		{
			name:       "missing record id",
			event:      ingest.RecordEvent{Op: ingest.OpCreate, RecordID: "   ", Text: "x"},
			wantFields: []string{"record_id"},
		},
		{
			name: "record id too long",
			event: ingest.RecordEvent{
				Op:       ingest.OpCreate,
				RecordID: strings.Repeat("a", 256),
				Text:     "x",
			},
			wantFields: []string{"record_id"},
		},
		{
			name:       "create without text",
			event:      ingest.RecordEvent{Op: ingest.OpCreate, RecordID: "rec-1", Text: "  "},
			wantFields: []string{"text"},
		},
		{
			name: "text too long",
			event: ingest.RecordEvent{
				Op:       ingest.OpUpdate,
				RecordID: "rec-1",
				Text:     strings.Repeat("x", 1048577),
			},
			wantFields: []string{"text"},
		},
		{
			name: "empty metadata key",
			event: ingest.RecordEvent{
				Op:       ingest.OpCreate,
				RecordID: "rec-1",
				Text:     "x",
				Metadata: map[string]string{"": "v"},
			},
			wantFields: []string{"metadata"},
		},
		{
			name:       "multiple failures reported together",
			event:      ingest.RecordEvent{Op: "noop", RecordID: "", Text: ""},
			wantFields: []string{"op", "record_id", "text"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRecordEvent(&tt.event)
			if len(tt.wantFields) == 0 {
				if err != nil {
					t.Fatalf("ValidateRecordEvent() = %v, want nil", err)
				}
				return
			}

			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("ValidateRecordEvent() = %v, want *ValidationError", err)
			}
			if len(verr.Fields) != len(tt.wantFields) {
				t.Fatalf("got %d field errors %v, want %d", len(verr.Fields), verr.Fields, len(tt.wantFields))
			}
			for _, field := range tt.wantFields {
				if _, ok := verr.Fields[field]; !ok {
					t.Errorf("missing error for field %q in %v", field, verr.Fields)
				}
			}
		})
	}
}
