package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/billbatista/acasinha-splitter/database"
)

// repository keeps the serialized ledger as a single row of the
// ledger_states key/value table.
type repository struct {
	db      *sql.DB
	dialect database.Dialect
	key     string
}

func NewRepository(db *sql.DB, dialect database.Dialect, key string) *repository {
	if key == "" {
		key = StorageKey
	}
	return &repository{db: db, dialect: dialect, key: key}
}

func (r *repository) Load(ctx context.Context) ([]byte, error) {
	query := r.dialect.Rebind(`SELECT state FROM ledger_states WHERE key = ?`)

	var state string
	err := r.db.QueryRowContext(ctx, query, r.key).Scan(&state)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying ledger state: %w", err)
	}

	return []byte(state), nil
}

func (r *repository) Save(ctx context.Context, data []byte) error {
	query := r.dialect.Rebind(`INSERT INTO ledger_states (key, state, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET state = excluded.state, updated_at = excluded.updated_at`)

	_, err := r.db.ExecContext(ctx, query, r.key, string(data), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("saving ledger state: %w", err)
	}
	return nil
}

func (r *repository) Clear(ctx context.Context) error {
	query := r.dialect.Rebind(`DELETE FROM ledger_states WHERE key = ?`)
	_, err := r.db.ExecContext(ctx, query, r.key)
	if err != nil {
		return fmt.Errorf("clearing ledger state: %w", err)
	}
	return nil
}
