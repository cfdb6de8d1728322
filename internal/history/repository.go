package history

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Repository persists records to sqlite so history survives restarts.
// The in-memory Store stays authoritative for reads; persistence is
// write-behind and best-effort.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new record repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "history").Logger(),
	}
}

// Save inserts a record row with its payload serialized as JSON
func (r *Repository) Save(kind Kind, record Record) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to serialize record: %w", err)
	}

	id, _ := record["id"].(string)
	timestamp, _ := record["timestamp"].(string)
	status, _ := record["status"].(string)
	duration, _ := record["duration"].(float64)

	query := `
		INSERT OR REPLACE INTO records
		(id, kind, timestamp, status, duration, payload, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		id,
		string(kind),
		timestamp,
		status,
		duration,
		string(payload),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save record: %w", err)
	}

	r.log.Debug().
		Str("kind", string(kind)).
		Str("id", id).
		Msg("Record persisted")

	return nil
}

// ListRecent returns up to limit records of a kind, most recent first
func (r *Repository) ListRecent(kind Kind, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT payload FROM records
		WHERE kind = ?
		ORDER BY created_at DESC
		LIMIT ?
	`

	rows, err := r.db.Query(query, string(kind), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}

		record := make(Record)
		if err := json.Unmarshal([]byte(payload), &record); err != nil {
			r.log.Warn().Err(err).Msg("Skipping undecodable record payload")
			continue
		}
		records = append(records, record)
	}

	return records, rows.Err()
}
