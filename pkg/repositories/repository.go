package repositories

import (
	"context"
	"fmt"
)

// Repository stores one serialized match snapshot per room code. All
// implementations are best-effort: callers treat failures as non-fatal.
type Repository interface {
	Close(ctx context.Context) error
	// SaveSnapshot writes or replaces the snapshot for a room code.
	SaveSnapshot(ctx context.Context, roomCode string, data []byte) error
	// LoadSnapshot returns the snapshot for a room code, or ErrNotFound.
	LoadSnapshot(ctx context.Context, roomCode string) ([]byte, error)
	// DeleteSnapshot discards the snapshot for a room code. Deleting a
	// missing snapshot is not an error.
	DeleteSnapshot(ctx context.Context, roomCode string) error
}

// ErrNotFound is returned when no snapshot exists for a room code.
type ErrNotFound struct{}

func (e *ErrNotFound) Error() string {
	return "not found"
}

// NewRepository creates a repository of the given type.
// Supported types: memory, sqlite, postgres.
func NewRepository(ctx context.Context, repositoryType string, connStr string) (Repository, error) {
	switch repositoryType {
	case "memory":
		return NewInMemoryRepository(), nil
	case "sqlite":
		return NewSQLiteRepository(ctx, connStr)
	case "postgres":
		return NewPostgresRepository(ctx, connStr)
	default:
		return nil, fmt.Errorf("unknown repository type: %s", repositoryType)
	}
}
