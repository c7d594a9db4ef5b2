package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"taskboard/internal/config"
)

func TestInit_MemoryStorage(t *testing.T) {
	gin.SetMode(gin.TestMode)
	t.Setenv("TASKBOARD_STORAGE_DRIVER", "memory")
	cfg, err := config.Load(config.New(), "")
	require.NoError(t, err)

	s, err := Init(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(s.Close)

	require.True(t, s.Store.Seeded())
	w := httptest.NewRecorder()
	s.Engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/board", nil))
	require.Equal(t, http.StatusOK, w.Code)
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	gin.SetMode(gin.TestMode)
	t.Setenv("TASKBOARD_STORAGE_DRIVER", "memory")
	t.Setenv("TASKBOARD_SERVER_PORT", "0")
	cfg, err := config.Load(config.New(), "")
	require.NoError(t, err)

	s, err := Init(context.Background(), cfg)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, s.Run(ctx))
}
