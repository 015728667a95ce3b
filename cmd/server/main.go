package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/schmitti92/serverfinal/pkg/api"
	"github.com/schmitti92/serverfinal/pkg/board"
	"github.com/schmitti92/serverfinal/pkg/log"
	"github.com/schmitti92/serverfinal/pkg/repositories"
	"github.com/schmitti92/serverfinal/pkg/rooms"
	"github.com/schmitti92/serverfinal/pkg/server"
	"github.com/schmitti92/serverfinal/pkg/workers"
)

const saveSnapshotChannelSize = 256

type stats struct {
	roomManager *rooms.Manager
	connManager *server.ConnManager
}

func (s *stats) RoomCount() int {
	return s.roomManager.RoomCount()
}

func (s *stats) ClientCount() int {
	return s.connManager.Count()
}

func main() {
	port := flag.Int("port", 10000, "HTTP port serving /, /health and /ws")
	boardPath := flag.String("board", "board.json", "Path to the board description file")
	repositoryType := flag.String("repository", "sqlite", "Repository type (memory, sqlite, postgres)")
	sqlitePath := flag.String("sqlite-path", "barikade.db", "Path to the SQLite database file")
	logLevel := flag.String("log-level", "info", "Log level")
	flag.Parse()

	parsedLogLevel, err := log.ParseLogLevel(*logLevel)
	if err != nil {
		panic(fmt.Sprintf("Failed to parse log level: %v", err))
	}
	logger := log.New(os.Stdout, "", log.DefaultLoggerFlag, parsedLogLevel)
	log.SetDefaultLogger(logger)
	log.Info("Log level set to %s", parsedLogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	graph, err := board.Load(*boardPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load board: %v", err))
	}
	log.Info("Loaded board from %s", *boardPath)

	connStr := *sqlitePath
	if *repositoryType == "postgres" {
		connStr = os.Getenv("DATABASE_URL")
		if connStr == "" {
			panic("DATABASE_URL environment variable must be set for the postgres repository")
		}
	}
	repository, err := repositories.NewRepository(ctx, *repositoryType, connStr)
	if err != nil {
		panic(fmt.Sprintf("Failed to create repository: %v", err))
	}
	defer repository.Close(ctx)

	saveSnapshotChan := make(chan workers.SaveSnapshotRequest, saveSnapshotChannelSize)
	saveSnapshotWorker := workers.NewSaveSnapshotWorker(workers.NewSaveSnapshotWorkerOptions{
		Repository:       repository,
		SaveSnapshotChan: saveSnapshotChan,
	})
	go saveSnapshotWorker.Start(ctx)

	roomManager := rooms.NewManager(rooms.NewManagerOptions{
		Graph:            graph,
		Repository:       repository,
		SaveSnapshotChan: saveSnapshotChan,
	})

	connManager := server.NewConnManager()
	wsServer := server.NewWSServer(server.NewWSServerOptions{
		ConnManager: connManager,
		RoomManager: roomManager,
	})

	router := api.NewRouter(&stats{roomManager: roomManager, connManager: connManager}, wsServer.Handler())
	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", *port),
		Handler: router,
	}

	go func() {
		<-ctx.Done()
		httpServer.Shutdown(context.Background())
	}()

	log.Info("Barikade server listening on %s", httpServer.Addr)
	if err := httpServer.ListenAndServe(); err != nil {
		if errors.Is(err, http.ErrServerClosed) {
			log.Info("Server closed")
			return
		}
		log.Error("Server error: %v", err)
	}
}
