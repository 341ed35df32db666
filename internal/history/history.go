// internal/history/history.go
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"copyflow/internal/common/logger"
)

// Entry is one completed generation stored for later inspection.
type Entry struct {
	ID             string
	ProductName    string
	Category       string
	Style          string
	Method         string
	AssistantID    string
	Success        bool
	DurationMillis int64
	Response       interface{}
	CreatedAt      time.Time
}

// Store persists generation history in Postgres. Writes are best effort and
// must never fail the request that produced the entry.
type Store struct {
	db     *sql.DB
	logger logger.Logger
}

func NewStore(db *sql.DB, log logger.Logger) *Store {
	return &Store{
		db:     db,
		logger: log.With(map[string]interface{}{"component": "history"}),
	}
}

const createTableSQL = `
CREATE TABLE IF NOT EXISTS generation_history (
	id           UUID PRIMARY KEY,
	product_name TEXT NOT NULL,
	category     TEXT NOT NULL,
	style        TEXT NOT NULL,
	method       TEXT NOT NULL,
	assistant_id TEXT,
	success      BOOLEAN NOT NULL,
	duration_ms  BIGINT NOT NULL,
	response     JSONB,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// EnsureSchema creates the history table when it does not exist yet.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, createTableSQL)
	return err
}

const insertSQL = `
INSERT INTO generation_history
	(id, product_name, category, style, method, assistant_id, success, duration_ms, response, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

// Insert writes one entry. Missing ID and CreatedAt are filled in.
func (s *Store) Insert(ctx context.Context, entry Entry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	var response []byte
	if entry.Response != nil {
		var err error
		response, err = json.Marshal(entry.Response)
		if err != nil {
			s.logger.Warn("Failed to encode history response payload", map[string]interface{}{
				"error": err.Error(),
			})
			response = nil
		}
	}

	_, err := s.db.ExecContext(ctx, insertSQL,
		entry.ID,
		entry.ProductName,
		entry.Category,
		entry.Style,
		entry.Method,
		entry.AssistantID,
		entry.Success,
		entry.DurationMillis,
		response,
		entry.CreatedAt,
	)
	if err != nil {
		s.logger.Warn("Failed to insert history entry", map[string]interface{}{
			"category": entry.Category,
			"error":    err.Error(),
		})
	}
	return err
}

const recentSQL = `
SELECT id, product_name, category, style, method, assistant_id, success, duration_ms, created_at
FROM generation_history
ORDER BY created_at DESC
LIMIT $1`

// Recent returns the newest entries without their response payloads.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, recentSQL, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var assistantID sql.NullString
		if err := rows.Scan(&e.ID, &e.ProductName, &e.Category, &e.Style, &e.Method, &assistantID, &e.Success, &e.DurationMillis, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.AssistantID = assistantID.String
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
