package workers

import (
	"context"

	"github.com/schmitti92/serverfinal/pkg/log"
	"github.com/schmitti92/serverfinal/pkg/repositories"
)

// SaveSnapshotRequest asks the worker to persist (or, with Delete set,
// discard) the snapshot of a room.
type SaveSnapshotRequest struct {
	RoomCode string
	Data     []byte
	Delete   bool
}

// SaveSnapshotWorker drains snapshot requests and writes them to the
// repository off the request path. Persistence is best-effort: failures are
// logged and the match continues in memory.
type SaveSnapshotWorker struct {
	repository       repositories.Repository
	saveSnapshotChan <-chan SaveSnapshotRequest
}

// NewSaveSnapshotWorkerOptions contains options for creating a new
// SaveSnapshotWorker.
type NewSaveSnapshotWorkerOptions struct {
	Repository       repositories.Repository
	SaveSnapshotChan <-chan SaveSnapshotRequest
}

func NewSaveSnapshotWorker(opts NewSaveSnapshotWorkerOptions) *SaveSnapshotWorker {
	return &SaveSnapshotWorker{
		repository:       opts.Repository,
		saveSnapshotChan: opts.SaveSnapshotChan,
	}
}

func (w *SaveSnapshotWorker) Start(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case request := <-w.saveSnapshotChan:
			w.handle(ctx, request)
		}
	}
}

func (w *SaveSnapshotWorker) handle(ctx context.Context, request SaveSnapshotRequest) {
	if request.Delete {
		if err := w.repository.DeleteSnapshot(ctx, request.RoomCode); err != nil {
			log.Error("Failed to delete snapshot for room %s: %v", request.RoomCode, err)
		}
		return
	}
	if err := w.repository.SaveSnapshot(ctx, request.RoomCode, request.Data); err != nil {
		log.Error("Failed to save snapshot for room %s: %v", request.RoomCode, err)
	}
}
