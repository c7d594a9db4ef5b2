package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"taskboard/internal/board"
	"taskboard/internal/config"
	"taskboard/internal/realtime"
	"taskboard/internal/routes"
	"taskboard/internal/storage"
	"taskboard/internal/store"
)

type Server struct {
	Engine  *gin.Engine
	Storage storage.Storage
	Store   *store.Store
	Hub     *realtime.Hub
	Config  *config.Config

	unsubscribe func()
}

// Init opens the configured storage, loads the board and wires the router.
func Init(ctx context.Context, cfg *config.Config) (*Server, error) {
	kv, err := storage.Open(cfg.StorageOptions())
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	log.WithField("driver", cfg.Storage.Driver).Info("storage ready")

	st := store.New(ctx, kv, store.WithKey(cfg.Storage.Key))
	hub := realtime.NewHub()
	unsubscribe := st.Subscribe(func(ev store.Event) { hub.Publish(ev) })

	engine := routes.SetupRoutes(routes.Deps{
		Store: st,
		Board: board.NewController(st),
		Hub:   hub,
	})

	return &Server{
		Engine:      engine,
		Storage:     kv,
		Store:       st,
		Hub:         hub,
		Config:      cfg,
		unsubscribe: unsubscribe,
	}, nil
}

// Run serves until ctx is cancelled or SIGINT/SIGTERM arrives, then shuts
// down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:    ":" + s.Config.Server.Port,
		Handler: s.Engine,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("server running on port %s", s.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			s.Close()
			return fmt.Errorf("listen: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	s.Close()
	if err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	log.Info("server exited properly")
	return nil
}

// Close detaches the realtime hub and releases the storage backend.
func (s *Server) Close() {
	if s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
	}
	if err := s.Storage.Close(); err != nil {
		log.WithError(err).Warn("close storage")
	}
}
