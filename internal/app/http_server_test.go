package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	healthcheck "github.com/vladislavdragonenkov/storefront/internal/health"
	"github.com/vladislavdragonenkov/storefront/internal/version"
)

// adminHealth собирает health handler с проверками хранилища и кэша,
// как это делает buildApplication.
func adminHealth(storageErr, redisErr error) *healthcheck.Handler {
	h := healthcheck.NewHandler(version.Current())
	h.RegisterChecker("storage", healthcheck.NewFuncChecker("storage", func(context.Context) error {
		return storageErr
	}))
	h.RegisterChecker("redis", healthcheck.NewFuncChecker("redis", func(context.Context) error {
		return redisErr
	}))
	return h
}

func TestAdminMux_Probes(t *testing.T) {
	down := errors.New("connection refused")

	tests := []struct {
		name       string
		storageErr error
		redisErr   error
		readyz     int
		healthz    int
		unhealthy  []string
	}{
		{name: "all dependencies up", readyz: http.StatusOK, healthz: http.StatusOK},
		{
			name:       "storage down",
			storageErr: down,
			readyz:     http.StatusServiceUnavailable,
			healthz:    http.StatusServiceUnavailable,
			unhealthy:  []string{"storage"},
		},
		{
			name:      "redis down",
			redisErr:  down,
			readyz:    http.StatusServiceUnavailable,
			healthz:   http.StatusServiceUnavailable,
			unhealthy: []string{"redis"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux := newAdminMux(adminHealth(tt.storageErr, tt.redisErr))

			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
			assert.Equal(t, tt.readyz, w.Code)

			w = httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
			require.Equal(t, tt.healthz, w.Code)

			var report healthcheck.Response
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
			assert.Equal(t, "dev", report.Version)
			require.Contains(t, report.Checks, "storage")
			require.Contains(t, report.Checks, "redis")
			for _, name := range tt.unhealthy {
				assert.Equal(t, healthcheck.StatusUnhealthy, report.Checks[name].Status, name)
				assert.Equal(t, down.Error(), report.Checks[name].Message)
			}

			// liveness не зависит от внешних компонентов
			w = httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/livez", nil))
			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, "ok", w.Body.String())
		})
	}
}

func TestAdminMux_ExposesMetrics(t *testing.T) {
	mux := newAdminMux(adminHealth(nil, nil))

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")

	w = httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/products", nil))
	assert.Equal(t, http.StatusNotFound, w.Code, "catalog routes are not served on the admin listener")
}

func TestStartMetricsServer_StopsWithContext(t *testing.T) {
	logger := log.WithField("test", "admin-listener")
	addr := fmt.Sprintf("127.0.0.1:%d", findFreePort(t))
	url := "http://" + addr + "/livez"

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	srv := startMetricsServer(ctx, addr, logger, adminHealth(nil, nil))
	require.NotNil(t, srv)

	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()

	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return true
		}
		resp.Body.Close()
		return false
	}, 2*time.Second, 20*time.Millisecond, "admin listener should stop after cancellation")
}

func TestShutdownHTTP_NilServer(t *testing.T) {
	assert.NotPanics(t, func() { shutdownHTTP(nil, log.WithField("test", "nil-server")) })
}

// findFreePort находит свободный порт для тестов
func findFreePort(t *testing.T) int {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer listener.Close()

	return listener.Addr().(*net.TCPAddr).Port
}
