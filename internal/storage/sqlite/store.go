// Package sqlite implements the primary interaction store on SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"math"

	_ "modernc.org/sqlite"

	"github.com/lailalab/aigateway/internal/domain"
	"github.com/lailalab/aigateway/internal/storage"
)

const defaultListLimit = 100

// Store is a SQLite implementation of storage.InteractionStore.
type Store struct {
	db *sql.DB
}

var _ storage.InteractionStore = (*Store)(nil)

// New opens (or creates) the database at dbPath and initializes the schema.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL; PRAGMA synchronous=NORMAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	store := &Store{db: db}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

func (s *Store) initSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS chat_logs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER,
			session_id TEXT NOT NULL,
			timestamp TIMESTAMP NOT NULL,
			module TEXT NOT NULL,
			sender TEXT NOT NULL,
			turn INTEGER NOT NULL,
			message TEXT NOT NULL,
			ai_model TEXT,
			response_time_sec REAL,
			context TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_chat_logs_session ON chat_logs(session_id)`,
		`CREATE INDEX IF NOT EXISTS idx_chat_logs_module ON chat_logs(module)`,
		`CREATE INDEX IF NOT EXISTS idx_chat_logs_timestamp ON chat_logs(timestamp)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("exec schema statement: %w", err)
		}
	}
	return nil
}

// SaveInteraction writes one record inside a transaction.
func (s *Store) SaveInteraction(ctx context.Context, rec *domain.InteractionRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO chat_logs
			(user_id, session_id, timestamp, module, sender, turn, message, ai_model, response_time_sec, context)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		nullableInt64(rec.UserID),
		rec.SessionID,
		rec.Timestamp,
		rec.Module,
		string(rec.Sender),
		rec.Turn,
		rec.Message,
		nullableString(rec.AIModel),
		responseTimeSec(rec.ResponseTimeMS),
		rec.Context,
	)
	if err != nil {
		return fmt.Errorf("insert chat log: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit chat log: %w", err)
	}
	return nil
}

// ListInteractions returns records newest-first.
func (s *Store) ListInteractions(ctx context.Context, opts storage.ListOptions) ([]domain.InteractionRecord, error) {
	query := `
		SELECT user_id, session_id, timestamp, module, sender, turn, message, ai_model, response_time_sec, context
		FROM chat_logs WHERE 1=1`
	var args []any

	if opts.SessionID != "" {
		query += " AND session_id = ?"
		args = append(args, opts.SessionID)
	}
	if opts.Module != "" {
		query += " AND module = ?"
		args = append(args, opts.Module)
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	query += " ORDER BY timestamp DESC, id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query chat logs: %w", err)
	}
	defer rows.Close()

	var records []domain.InteractionRecord
	for rows.Next() {
		var (
			rec      domain.InteractionRecord
			userID   sql.NullInt64
			aiModel  sql.NullString
			respSec  sql.NullFloat64
			sender   string
			tsHolder sql.NullTime
		)
		if err := rows.Scan(&userID, &rec.SessionID, &tsHolder, &rec.Module, &sender, &rec.Turn, &rec.Message, &aiModel, &respSec, &rec.Context); err != nil {
			return nil, fmt.Errorf("scan chat log: %w", err)
		}
		rec.Sender = domain.Sender(sender)
		if tsHolder.Valid {
			rec.Timestamp = tsHolder.Time
		}
		if userID.Valid {
			id := userID.Int64
			rec.UserID = &id
		}
		if aiModel.Valid {
			rec.AIModel = aiModel.String
		}
		if respSec.Valid {
			ms := int64(math.Round(respSec.Float64 * 1000))
			rec.ResponseTimeMS = &ms
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chat logs: %w", err)
	}
	return records, nil
}

// CountBySession counts records for a session, optionally filtered by module.
func (s *Store) CountBySession(ctx context.Context, sessionID, module string) (int, error) {
	query := "SELECT COUNT(*) FROM chat_logs WHERE session_id = ?"
	args := []any{sessionID}
	if module != "" {
		query += " AND module = ?"
		args = append(args, module)
	}

	var count int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count chat logs: %w", err)
	}
	return count, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func nullableInt64(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullableString(v string) any {
	if v == "" {
		return nil
	}
	return v
}

// responseTimeSec converts milliseconds to the stored seconds column,
// rounded to two decimals.
func responseTimeSec(ms *int64) any {
	if ms == nil {
		return nil
	}
	return math.Round(float64(*ms)/10) / 100
}
