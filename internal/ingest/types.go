// Package ingest defines the record-change event schema the record
// management layer publishes to Kafka. The consumer subpackage applies these
// events to the relevance index.
package ingest

import "time"

// Op identifies the mutation a RecordEvent carries.
type Op string

const (
	OpCreate Op = "create"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// RecordEvent is the Kafka message payload emitted whenever a medical record
// changes. Text is the already-composed searchable body (summary plus
// diagnostic and treatment text); the engine never sees the encrypted
// source fields.
type RecordEvent struct {
	Op         Op                `json:"op"`
	RecordID   string            `json:"record_id"`
	Text       string            `json:"text,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	OccurredAt time.Time         `json:"occurred_at"`
}
