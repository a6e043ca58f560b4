// Package consumer applies record-change events from Kafka to the relevance
// index, keeping the in-memory index in step with the authoritative record
// store.
package consumer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/meridianhealth/recordsearch/internal/ingest"
	"github.com/meridianhealth/recordsearch/internal/ingest/validator"
	"github.com/meridianhealth/recordsearch/internal/search"
	"github.com/meridianhealth/recordsearch/internal/search/cache"
	apperrors "github.com/meridianhealth/recordsearch/pkg/errors"
	"github.com/meridianhealth/recordsearch/pkg/kafka"
)

// RecordConsumer wraps a Kafka consumer to drive index mutations.
type RecordConsumer struct {
	consumer *kafka.Consumer
	logger   *slog.Logger
}

// New creates a RecordConsumer backed by the given Kafka consumer.
func New(kafkaConsumer *kafka.Consumer) *RecordConsumer {
	return &RecordConsumer{
		consumer: kafkaConsumer,
		logger:   slog.Default().With("component", "record-consumer"),
	}
}

// Start begins consuming Kafka messages. It blocks until ctx is cancelled.
func (rc *RecordConsumer) Start(ctx context.Context) error {
	rc.logger.Info("record consumer starting")
	return rc.consumer.Start(ctx)
}

// HandleMessage returns a Kafka MessageHandler that validates each record
// event and applies it to the index via the search service. Malformed
// events are logged and dropped rather than redelivered; the query cache,
// when present, is invalidated after every applied mutation.
func HandleMessage(svc *search.Service, queryCache *cache.QueryCache) kafka.MessageHandler {
	logger := slog.Default().With("component", "record-consumer")
	return func(ctx context.Context, key []byte, value []byte) error {
		event, err := kafka.DecodeJSON[ingest.RecordEvent](value)
		if err != nil {
			logger.Error("failed to decode record event",
				"error", err,
				"key", string(key),
			)
			return nil
		}
		if err := validator.ValidateRecordEvent(&event); err != nil {
			logger.Error("invalid record event dropped",
				"record_id", event.RecordID,
				"op", event.Op,
				"error", err,
			)
			return nil
		}

		if err := applyEvent(ctx, svc, event); err != nil {
			if errors.Is(err, apperrors.ErrRecordNotFound) {
				// Events can outlive their records: a delete racing a late
				// update, or replayed offsets after a restart.
				logger.Warn("record event targets unknown record",
					"record_id", event.RecordID,
					"op", event.Op,
				)
				return nil
			}
			return fmt.Errorf("applying %s event for record %s: %w", event.Op, event.RecordID, err)
		}

		if queryCache != nil {
			if err := queryCache.Invalidate(ctx); err != nil {
				logger.Error("cache invalidation after mutation failed", "error", err)
			}
		}

		logger.Info("record event applied",
			"record_id", event.RecordID,
			"op", event.Op,
		)
		return nil
	}
}

func applyEvent(ctx context.Context, svc *search.Service, event ingest.RecordEvent) error {
	switch event.Op {
	case ingest.OpCreate:
		return svc.IndexRecord(ctx, event.RecordID, event.Text, event.Metadata)
	case ingest.OpUpdate:
		return svc.UpdateRecord(ctx, event.RecordID, event.Text, event.Metadata)
	case ingest.OpDelete:
		return svc.RemoveRecord(ctx, event.RecordID)
	default:
		return fmt.Errorf("unhandled op %q: %w", event.Op, apperrors.ErrInvalidInput)
	}
}
