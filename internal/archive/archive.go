// Package archive keeps a local SQLite copy of fetched log records so that
// sessions can be grouped across pages on request.
package archive

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"crmadmin/internal/model"

	_ "modernc.org/sqlite"
)

// Archive is a SQLite-backed log record store.
type Archive struct {
	db *sql.DB
}

// Open opens or creates the archive at path.
func Open(path string) (*Archive, error) {
	if path == "" {
		return nil, errors.New("archive path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create archive dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	db.SetMaxOpenConns(1)

	a := &Archive{db: db}
	if err := a.migrate(); err != nil {
		db.Close() //nolint:errcheck
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return a, nil
}

// Close closes the database.
func (a *Archive) Close() error {
	return a.db.Close()
}

func (a *Archive) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS log_records (
		seq         INTEGER PRIMARY KEY AUTOINCREMENT,
		id          TEXT NOT NULL UNIQUE,
		session_id  TEXT NOT NULL DEFAULT '',
		type        TEXT NOT NULL,
		action_type TEXT NOT NULL DEFAULT '',
		message     TEXT NOT NULL DEFAULT '',
		details     TEXT NOT NULL DEFAULT '',
		image_id    TEXT NOT NULL DEFAULT '',
		created_at  DATETIME NOT NULL,
		pulled_at   DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_log_records_session ON log_records(session_id);
	CREATE INDEX IF NOT EXISTS idx_log_records_created ON log_records(created_at);
	`
	_, err := a.db.Exec(schema)
	return err
}

// Save upserts records by id. Existing rows keep their original insertion
// sequence so relative order is stable across repeated pulls.
func (a *Archive) Save(ctx context.Context, records []model.LogRecord) (int, error) {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO log_records (id, session_id, type, action_type, message, details, image_id, created_at, pulled_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			session_id = excluded.session_id,
			type = excluded.type,
			action_type = excluded.action_type,
			message = excluded.message,
			details = excluded.details,
			image_id = excluded.image_id,
			created_at = excluded.created_at,
			pulled_at = excluded.pulled_at`)
	if err != nil {
		return 0, fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close() //nolint:errcheck

	now := time.Now().UTC()
	saved := 0
	for _, r := range records {
		if r.ID == "" {
			continue
		}
		if _, err := stmt.ExecContext(ctx,
			r.ID, r.SessionID, string(r.Type), r.ActionType, r.Message, r.Details, r.ImageID,
			r.CreatedAt.UTC(), now,
		); err != nil {
			return saved, fmt.Errorf("insert %s: %w", r.ID, err)
		}
		saved++
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return saved, nil
}

// Query narrows archived records. Empty fields match everything.
type Query struct {
	SessionID  string
	Types      []model.LogType
	ActionType string
	Search     string
	From       time.Time
	To         time.Time
	// Limit keeps only the most recent matches when positive.
	Limit int
}

// Records returns matching records ordered by created_at, then by the order
// in which they were first archived.
func (a *Archive) Records(ctx context.Context, q Query) ([]model.LogRecord, error) {
	var (
		where []string
		args  []any
	)
	if q.SessionID != "" {
		where = append(where, "session_id = ?")
		args = append(args, q.SessionID)
	}
	if len(q.Types) > 0 {
		marks := make([]string, len(q.Types))
		for i, t := range q.Types {
			marks[i] = "?"
			args = append(args, strings.ToUpper(string(t)))
		}
		where = append(where, "type IN ("+strings.Join(marks, ",")+")")
	}
	if q.ActionType != "" {
		where = append(where, "action_type = ?")
		args = append(args, q.ActionType)
	}
	if q.Search != "" {
		where = append(where, "(message LIKE ? OR details LIKE ?)")
		like := "%" + q.Search + "%"
		args = append(args, like, like)
	}
	if !q.From.IsZero() {
		where = append(where, "created_at >= ?")
		args = append(args, q.From.UTC())
	}
	if !q.To.IsZero() {
		where = append(where, "created_at <= ?")
		args = append(args, q.To.UTC())
	}

	const columns = "id, session_id, type, action_type, message, details, image_id, created_at"
	stmt := "SELECT " + columns + ", seq FROM log_records"
	if len(where) > 0 {
		stmt += " WHERE " + strings.Join(where, " AND ")
	}
	if q.Limit > 0 {
		stmt = fmt.Sprintf("SELECT %s FROM (%s ORDER BY created_at DESC, seq DESC LIMIT %d)", columns, stmt, q.Limit)
	} else {
		stmt = "SELECT " + columns + " FROM (" + stmt + ")"
	}
	stmt += " ORDER BY created_at ASC, seq ASC"

	rows, err := a.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var out []model.LogRecord
	for rows.Next() {
		var (
			r   model.LogRecord
			typ string
		)
		if err := rows.Scan(&r.ID, &r.SessionID, &typ, &r.ActionType, &r.Message, &r.Details, &r.ImageID, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		r.Type = model.LogType(typ)
		out = append(out, r)
	}
	return out, rows.Err()
}

// Count returns the number of archived records.
func (a *Archive) Count(ctx context.Context) (int, error) {
	var n int
	err := a.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM log_records").Scan(&n)
	return n, err
}

// DefaultPath returns the archive location under the user cache directory.
func DefaultPath() string {
	if p := os.Getenv("CRMADMIN_ARCHIVE"); p != "" {
		return p
	}
	dir, err := os.UserCacheDir()
	if err != nil {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".cache")
	}
	return filepath.Join(dir, "crmadmin", "logs.db")
}
