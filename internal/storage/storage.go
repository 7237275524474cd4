package storage

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"telegram-mood-diary/internal/models"
)

//go:embed schema.sql
var ddl embed.FS

type DB struct{ *sql.DB }

// New opens (or creates) the database at path and applies the schema.
// ":memory:" gives a private in-memory database.
func New(path string) (*DB, error) {
	dsn := path
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("creating data directory: %w", err)
			}
		}
		dsn = path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// single writer avoids "database is locked"
	db.SetMaxOpenConns(1)

	if err = migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}
	return &DB{db}, nil
}

func migrate(db *sql.DB) error {
	b, err := ddl.ReadFile("schema.sql")
	if err != nil {
		return err
	}
	_, err = db.Exec(string(b))
	return err
}

func (d *DB) Ping(ctx context.Context) error {
	return d.PingContext(ctx)
}

// ---------- moods -----------------------------------------------------------

// Append records one mood entry. Levels outside 1..7 are rejected before
// touching the database.
func (d *DB) Append(ctx context.Context, userID int64, level int, date string) error {
	if !models.ValidLevel(level) {
		return &models.ValidationError{Field: "level", Value: level}
	}
	if _, err := time.Parse(models.DayLayout, date); err != nil {
		return &models.ValidationError{Field: "date", Value: date}
	}

	_, err := d.ExecContext(ctx, `
        INSERT INTO moods (user_id, level, date, created_at)
        VALUES (?,?,?,?)
    `, userID, level, date, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("inserting mood for %d: %w", userID, err)
	}
	return nil
}

// Query returns the user's entries ordered by date. An empty since returns
// the whole history.
func (d *DB) Query(ctx context.Context, userID int64, since string) ([]models.MoodEntry, error) {
	rows, err := d.QueryContext(ctx, `
        SELECT id, user_id, level, date
        FROM moods
        WHERE user_id = ? AND (? = '' OR date >= ?)
        ORDER BY date, id
    `, userID, since, since)
	if err != nil {
		return nil, fmt.Errorf("querying moods for %d: %w", userID, err)
	}
	defer rows.Close()

	res := []models.MoodEntry{}
	for rows.Next() {
		var e models.MoodEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.Level, &e.Date); err != nil {
			return nil, err
		}
		res = append(res, e)
	}
	return res, rows.Err()
}

// ClearData removes the whole mood history of a user.
func (d *DB) ClearData(ctx context.Context, userID int64) (int64, error) {
	tx, err := d.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM moods WHERE user_id = ?`, userID)
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	return n, tx.Commit()
}
