// Package validator checks record-change events before they reach the
// index, returning per-field error details for rejected events.
package validator

import (
	"fmt"
	"strings"

	"github.com/meridianhealth/recordsearch/internal/ingest"
)

const (
	maxRecordIDLength = 255
	maxTextLength     = 1048576
)

// ValidationError holds per-field validation failure messages.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	var parts []string
	for field, msg := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s:%s", field, msg))
	}
	return strings.Join(parts, "; ")
}

// ValidateRecordEvent checks the event's op, record id, and text against the
// accepted bounds. Delete events carry no text.
func ValidateRecordEvent(event *ingest.RecordEvent) error {
	errs := make(map[string]string)

	switch event.Op {
	case ingest.OpCreate, ingest.OpUpdate, ingest.OpDelete:
	default:
		errs["op"] = fmt.Sprintf("unknown op %q", event.Op)
	}

	id := strings.TrimSpace(event.RecordID)
	if id == "" {
		errs["record_id"] = "record id is required"
	} else if len(id) > maxRecordIDLength {
		errs["record_id"] = fmt.Sprintf("record id must be at most %d characters", maxRecordIDLength)
	}

	if event.Op == ingest.OpCreate || event.Op == ingest.OpUpdate {
		if strings.TrimSpace(event.Text) == "" {
			errs["text"] = "text is required for create and update events"
		} else if len(event.Text) > maxTextLength {
			errs["text"] = fmt.Sprintf("text must be at most %d bytes", maxTextLength)
		}
	}

	for key := range event.Metadata {
		if key == "" {
			errs["metadata"] = "metadata keys must not be empty"
			break
		}
	}

	if len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}
