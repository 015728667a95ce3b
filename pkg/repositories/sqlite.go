package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS snapshots (
	room_code TEXT PRIMARY KEY,
	data BLOB NOT NULL,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(ctx context.Context, path string) (Repository, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %v", err)
	}

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		return nil, fmt.Errorf("failed to apply schema: %v", err)
	}

	return &SQLiteRepository{
		db: db,
	}, nil
}

func (r *SQLiteRepository) Close(ctx context.Context) error {
	return r.db.Close()
}

func (r *SQLiteRepository) SaveSnapshot(ctx context.Context, roomCode string, data []byte) error {
	q := `
	INSERT OR REPLACE INTO snapshots (room_code, data, updated_at)
	VALUES (?, ?, CURRENT_TIMESTAMP);
	`
	if _, err := r.db.ExecContext(ctx, q, roomCode, data); err != nil {
		return fmt.Errorf("failed to insert snapshot: %v", err)
	}
	return nil
}

func (r *SQLiteRepository) LoadSnapshot(ctx context.Context, roomCode string) ([]byte, error) {
	q := `
	SELECT data FROM snapshots WHERE room_code = ?;
	`
	var data []byte
	if err := r.db.QueryRowContext(ctx, q, roomCode).Scan(&data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &ErrNotFound{}
		}
		return nil, fmt.Errorf("failed to scan snapshot: %v", err)
	}
	return data, nil
}

func (r *SQLiteRepository) DeleteSnapshot(ctx context.Context, roomCode string) error {
	q := `
	DELETE FROM snapshots WHERE room_code = ?;
	`
	if _, err := r.db.ExecContext(ctx, q, roomCode); err != nil {
		return fmt.Errorf("failed to delete snapshot: %v", err)
	}
	return nil
}
