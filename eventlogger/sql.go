package eventlogger

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/billbatista/acasinha-splitter/database"
	"github.com/google/uuid"
)

type sqlEventLogger struct {
	db      *sql.DB
	dialect database.Dialect
}

func NewSqlEventLogger(db *sql.DB, dialect database.Dialect) *sqlEventLogger {
	return &sqlEventLogger{
		db:      db,
		dialect: dialect,
	}
}

func (el *sqlEventLogger) Save(ctx context.Context, e Event) error {
	jsonData, err := json.Marshal(e.Data)
	if err != nil {
		return fmt.Errorf("encoding event data: %w", err)
	}
	jsonMetadata, err := json.Marshal(e.Metadata)
	if err != nil {
		return fmt.Errorf("encoding event metadata: %w", err)
	}
	statement := el.dialect.Rebind(`INSERT INTO ledger_events (id, event_type, event_data, event_metadata, created_at) VALUES (?, ?, ?, ?, ?)`)
	_, err = el.db.ExecContext(ctx, statement, e.ID.String(), e.Type, string(jsonData), string(jsonMetadata), e.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting event: %w", err)
	}

	return nil
}

// GetByType returns the events of the given type, oldest first. Data is
// returned as raw JSON.
func (el *sqlEventLogger) GetByType(ctx context.Context, eventType string) ([]Event, error) {
	query := el.dialect.Rebind(`SELECT id, event_type, event_data, event_metadata, created_at FROM ledger_events WHERE event_type = ? ORDER BY created_at`)
	result, err := el.db.QueryContext(ctx, query, eventType)
	if err != nil {
		return nil, err
	}
	defer result.Close()

	events := make([]Event, 0)
	for result.Next() {
		var event Event
		var id string
		var jsonData, jsonMetadata []byte
		if err := result.Scan(&id, &event.Type, &jsonData, &jsonMetadata, &event.CreatedAt); err != nil {
			return events, err
		}
		if event.ID, err = uuidFromString(id); err != nil {
			return events, err
		}
		event.Data = json.RawMessage(jsonData)
		if len(jsonMetadata) > 0 {
			if err := json.Unmarshal(jsonMetadata, &event.Metadata); err != nil {
				return events, fmt.Errorf("decoding event metadata: %w", err)
			}
		}

		events = append(events, event)
	}

	if err := result.Err(); err != nil {
		return events, err
	}

	return events, nil
}

var errInvalidEventID = errors.New("invalid event id")

func uuidFromString(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, errors.Join(errInvalidEventID, err)
	}
	return id, nil
}
