package repositories

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepositories(t *testing.T) {
	ctx := context.Background()

	repos := map[string]Repository{
		"memory": NewInMemoryRepository(),
	}
	sqlite, err := NewSQLiteRepository(ctx, filepath.Join(t.TempDir(), "snapshots.db"))
	require.NoError(t, err)
	repos["sqlite"] = sqlite

	for name, repository := range repos {
		t.Run(name, func(t *testing.T) {
			defer repository.Close(ctx)

			_, err := repository.LoadSnapshot(ctx, "GAME")
			var notFound *ErrNotFound
			require.ErrorAs(t, err, &notFound)

			require.NoError(t, repository.SaveSnapshot(ctx, "GAME", []byte(`{"v":1}`)))
			data, err := repository.LoadSnapshot(ctx, "GAME")
			require.NoError(t, err)
			assert.Equal(t, []byte(`{"v":1}`), data)

			// saving again replaces the snapshot
			require.NoError(t, repository.SaveSnapshot(ctx, "GAME", []byte(`{"v":2}`)))
			data, err = repository.LoadSnapshot(ctx, "GAME")
			require.NoError(t, err)
			assert.Equal(t, []byte(`{"v":2}`), data)

			// room codes are independent
			_, err = repository.LoadSnapshot(ctx, "OTHER")
			require.ErrorAs(t, err, &notFound)

			require.NoError(t, repository.DeleteSnapshot(ctx, "GAME"))
			_, err = repository.LoadSnapshot(ctx, "GAME")
			require.ErrorAs(t, err, &notFound)

			// deleting a missing snapshot is not an error
			require.NoError(t, repository.DeleteSnapshot(ctx, "GAME"))
		})
	}
}

func TestNewRepositoryUnknownType(t *testing.T) {
	_, err := NewRepository(context.Background(), "bogus", "")
	assert.Error(t, err)
}
