// Package store rebuilds the in-memory relevance index from the
// authoritative record table at startup. The engine keeps no persistence of
// its own, so a restart replays the full record set once and then follows
// the Kafka event stream.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/meridianhealth/recordsearch/internal/search"
	"github.com/meridianhealth/recordsearch/pkg/postgres"
)

// Loader streams records out of Postgres and indexes them. Deployments that
// encrypt clinical text at rest point the configured table at a decrypting
// view; the loader itself never handles key material.
type Loader struct {
	db     *postgres.Client
	table  string
	logger *slog.Logger
}

// New creates a Loader reading from the given table or view.
func New(db *postgres.Client, table string) *Loader {
	return &Loader{
		db:     db,
		table:  table,
		logger: slog.Default().With("component", "index-loader"),
	}
}

// WarmIndex indexes every record in the table and returns the number loaded.
// Individual bad rows are logged and skipped so one malformed record cannot
// block startup.
func (l *Loader) WarmIndex(ctx context.Context, svc *search.Service) (int, error) {
	query := fmt.Sprintf(
		`SELECT id, patient_id, record_type, visit_date, chief_complaint, diagnosis, treatment
		 FROM %s ORDER BY id`, l.table,
	)
	rows, err := l.db.DB.QueryContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("querying records from %s: %w", l.table, err)
	}
	defer rows.Close()

	loaded := 0
	for rows.Next() {
		var (
			id, patientID, recordType, visitDate string
			chiefComplaint, diagnosis, treatment sql.NullString
		)
		if err := rows.Scan(&id, &patientID, &recordType, &visitDate,
			&chiefComplaint, &diagnosis, &treatment); err != nil {
			l.logger.Error("skipping unreadable record row", "error", err)
			continue
		}

		text := composeText(chiefComplaint.String, diagnosis.String, treatment.String)
		metadata := map[string]string{
			"record_id":   id,
			"patient_id":  patientID,
			"record_type": recordType,
			"visit_date":  visitDate,
		}
		docID := fmt.Sprintf("medical_record_%s", id)
		if err := svc.IndexRecord(ctx, docID, text, metadata); err != nil {
			l.logger.Error("skipping unindexable record", "record_id", id, "error", err)
			continue
		}
		loaded++
	}
	if err := rows.Err(); err != nil {
		return loaded, fmt.Errorf("iterating records from %s: %w", l.table, err)
	}

	l.logger.Info("index warm-up complete", "records_loaded", loaded)
	return loaded, nil
}

// composeText joins the searchable record fields into the indexed body,
// matching what the record layer publishes on change events.
func composeText(fields ...string) string {
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		if f != "" {
			parts = append(parts, f)
		}
	}
	return strings.Join(parts, " ")
}
