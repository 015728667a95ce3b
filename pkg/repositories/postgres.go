package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS snapshots (
	room_code TEXT PRIMARY KEY,
	data BYTEA NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

type PostgresRepository struct {
	conn *pgx.Conn
}

// NewPostgresRepository connects to the database and applies the snapshot
// schema. The caller is responsible for calling Close() on the repository.
func NewPostgresRepository(ctx context.Context, connStr string) (Repository, error) {
	conn, err := pgx.Connect(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %v", err)
	}

	if _, err := conn.Exec(ctx, postgresSchema); err != nil {
		return nil, fmt.Errorf("failed to apply schema: %v", err)
	}

	return &PostgresRepository{
		conn: conn,
	}, nil
}

func (r *PostgresRepository) Close(ctx context.Context) error {
	return r.conn.Close(ctx)
}

func (r *PostgresRepository) SaveSnapshot(ctx context.Context, roomCode string, data []byte) error {
	q := `
	INSERT INTO snapshots (room_code, data, updated_at) VALUES ($1, $2, now())
	ON CONFLICT (room_code) DO UPDATE SET data = $2, updated_at = now();
	`
	if _, err := r.conn.Exec(ctx, q, roomCode, data); err != nil {
		return fmt.Errorf("failed to insert snapshot: %v", err)
	}
	return nil
}

func (r *PostgresRepository) LoadSnapshot(ctx context.Context, roomCode string) ([]byte, error) {
	q := `
	SELECT data FROM snapshots WHERE room_code = $1;
	`
	var data []byte
	if err := r.conn.QueryRow(ctx, q, roomCode).Scan(&data); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &ErrNotFound{}
		}
		return nil, fmt.Errorf("failed to scan snapshot: %v", err)
	}
	return data, nil
}

func (r *PostgresRepository) DeleteSnapshot(ctx context.Context, roomCode string) error {
	q := `
	DELETE FROM snapshots WHERE room_code = $1;
	`
	if _, err := r.conn.Exec(ctx, q, roomCode); err != nil {
		return fmt.Errorf("failed to delete snapshot: %v", err)
	}
	return nil
}
