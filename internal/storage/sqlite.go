package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver registration.

	"newsbot/internal/model"
	"newsbot/migrations"
)

const timeLayout = "2006-01-02T15:04:05Z"

// SQLite implements Storage backed by a SQLite database.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at dsn and runs pending migrations.
func NewSQLite(dsn string) (*SQLite, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=OFF"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("disable foreign keys: %w", err)
	}

	if err := migrations.Run(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLite{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// GetOrCreateUser returns the user's preferences, creating a default-empty
// record on first sight. Idempotent.
func (s *SQLite) GetOrCreateUser(ctx context.Context, chatID int64) (*model.Preferences, error) {
	now := time.Now().UTC().Format(timeLayout)
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO users (chat_id, macros, branches, created_at) VALUES (?, '[]', '[]', ?)`,
		chatID, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return s.getUser(ctx, s.db, chatID)
}

// ToggleMacro flips macro membership for the user, atomically, and returns
// the updated preferences.
func (s *SQLite) ToggleMacro(ctx context.Context, chatID int64, macro string) (*model.Preferences, error) {
	return s.toggle(ctx, chatID, macro, "macros")
}

// ToggleBranch flips branch membership for the user, atomically, and
// returns the updated preferences.
func (s *SQLite) ToggleBranch(ctx context.Context, chatID int64, branch string) (*model.Preferences, error) {
	return s.toggle(ctx, chatID, branch, "branches")
}

func (s *SQLite) toggle(ctx context.Context, chatID int64, value, column string) (*model.Preferences, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC().Format(timeLayout)
	if _, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO users (chat_id, macros, branches, created_at) VALUES (?, '[]', '[]', ?)`,
		chatID, now,
	); err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}

	prefs, err := s.getUser(ctx, tx, chatID)
	if err != nil {
		return nil, err
	}

	var set []string
	if column == "macros" {
		set = toggleSet(prefs.Macros, value)
		prefs.Macros = set
	} else {
		set = toggleSet(prefs.Branches, value)
		prefs.Branches = set
	}

	// column is one of two literals above, never user input
	query := fmt.Sprintf(`UPDATE users SET %s = ? WHERE chat_id = ?`, column)
	if _, err := tx.ExecContext(ctx, query, marshalSet(set), chatID); err != nil {
		return nil, fmt.Errorf("update %s: %w", column, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit toggle: %w", err)
	}
	return prefs, nil
}

// SetMacros replaces the user's macro set wholesale.
func (s *SQLite) SetMacros(ctx context.Context, chatID int64, macros []string) error {
	return s.replaceSet(ctx, chatID, "macros", macros)
}

// SetBranches replaces the user's branch set wholesale.
func (s *SQLite) SetBranches(ctx context.Context, chatID int64, branches []string) error {
	return s.replaceSet(ctx, chatID, "branches", branches)
}

func (s *SQLite) replaceSet(ctx context.Context, chatID int64, column string, set []string) error {
	now := time.Now().UTC().Format(timeLayout)
	// Single-statement upsert: a crash can never leave a half-written record.
	query := fmt.Sprintf(
		`INSERT INTO users (chat_id, %s, created_at) VALUES (?, ?, ?)
		 ON CONFLICT(chat_id) DO UPDATE SET %s = excluded.%s`,
		column, column, column,
	)
	if _, err := s.db.ExecContext(ctx, query, chatID, marshalSet(set), now); err != nil {
		return fmt.Errorf("set %s: %w", column, err)
	}
	return nil
}

// ResetPreferences clears both sets to empty, which means "match everything".
func (s *SQLite) ResetPreferences(ctx context.Context, chatID int64) error {
	now := time.Now().UTC().Format(timeLayout)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (chat_id, macros, branches, created_at) VALUES (?, '[]', '[]', ?)
		 ON CONFLICT(chat_id) DO UPDATE SET macros = '[]', branches = '[]'`,
		chatID, now,
	)
	if err != nil {
		return fmt.Errorf("reset preferences: %w", err)
	}
	return nil
}

// ListUsers returns all known user identities.
func (s *SQLite) ListUsers(ctx context.Context) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT chat_id FROM users ORDER BY chat_id`)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var users []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, id)
	}
	return users, rows.Err()
}

// MarkSent records that an article URL has been delivered to the user.
func (s *SQLite) MarkSent(ctx context.Context, chatID int64, url string) error {
	now := time.Now().UTC().Format(timeLayout)
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO sent_items (chat_id, url, sent_at) VALUES (?, ?, ?)`,
		chatID, url, now,
	)
	if err != nil {
		return fmt.Errorf("mark sent: %w", err)
	}
	return nil
}

// FilterUnsent returns the subset of urls not yet delivered to the user,
// preserving input order.
func (s *SQLite) FilterUnsent(ctx context.Context, chatID int64, urls []string) ([]string, error) {
	if len(urls) == 0 {
		return nil, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(urls)), ",")
	args := make([]any, 0, len(urls)+1)
	args = append(args, chatID)
	for _, u := range urls {
		args = append(args, u)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT url FROM sent_items WHERE chat_id = ? AND url IN (`+placeholders+`)`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("query sent: %w", err)
	}
	defer func() { _ = rows.Close() }()

	sent := make(map[string]struct{})
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, fmt.Errorf("scan sent url: %w", err)
		}
		sent[u] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var unsent []string
	for _, u := range urls {
		if _, ok := sent[u]; !ok {
			unsent = append(unsent, u)
		}
	}
	return unsent, nil
}

// PruneSentBefore deletes sent-history entries older than cutoff and
// returns the number of rows removed.
func (s *SQLite) PruneSentBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM sent_items WHERE sent_at < ?`,
		cutoff.UTC().Format(timeLayout),
	)
	if err != nil {
		return 0, fmt.Errorf("prune sent: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *SQLite) getUser(ctx context.Context, q querier, chatID int64) (*model.Preferences, error) {
	row := q.QueryRowContext(ctx,
		`SELECT chat_id, macros, branches, created_at FROM users WHERE chat_id = ?`, chatID,
	)

	var p model.Preferences
	var macros, branches string
	var created sql.NullString
	if err := row.Scan(&p.ChatID, &macros, &branches, &created); err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}

	var err error
	if p.Macros, err = unmarshalSet(macros); err != nil {
		return nil, fmt.Errorf("decode macros: %w", err)
	}
	if p.Branches, err = unmarshalSet(branches); err != nil {
		return nil, fmt.Errorf("decode branches: %w", err)
	}
	if created.Valid {
		p.CreatedAt, _ = time.Parse(timeLayout, created.String)
	}
	return &p, nil
}

func toggleSet(set []string, value string) []string {
	for i, v := range set {
		if v == value {
			return append(set[:i:i], set[i+1:]...)
		}
	}
	return append(set, value)
}

func marshalSet(set []string) string {
	if set == nil {
		set = []string{}
	}
	data, _ := json.Marshal(set)
	return string(data)
}

func unmarshalSet(raw string) ([]string, error) {
	if raw == "" {
		return nil, nil
	}
	var set []string
	if err := json.Unmarshal([]byte(raw), &set); err != nil {
		return nil, err
	}
	if len(set) == 0 {
		return nil, nil
	}
	return set, nil
}
