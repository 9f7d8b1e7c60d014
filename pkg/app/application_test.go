package app

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"pawcare/pkg/client"
	"pawcare/pkg/config"
	"pawcare/pkg/logger"
	"pawcare/pkg/middleware"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

type echoHandler struct{}

func (echoHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/open", func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		w.WriteHeader(http.StatusOK)
	})
	router.GET("/api/v1/private", func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		_, _ = io.WriteString(w, middleware.UserIDFrom(r.Context()))
	})
}

func testConfig() *config.Config {
	return &config.Config{
		RateLimitRequests: 100,
		RateLimitWindow:   time.Minute,
		RequestTimeout:    time.Second,
		IdempotencyTTL:    time.Minute,
		MaxRequestSize:    1 << 20,
		MetricsEnabled:    true,
		MetricsPath:       "/metrics",
		Log:               logger.New(logger.Config{Level: logger.ERROR, Output: io.Discard, Service: "bookings"}),
		Client:            client.NewClient(),
	}
}

func newTestApp(t *testing.T) *Application {
	t.Helper()
	a := NewApplication(testConfig())
	a.SetApp(echoHandler{}, "/api/v1/open")
	t.Cleanup(func() {
		a.idempotencyStore.Stop()
		a.rateLimiter.Stop()
	})
	return a
}

func get(h http.Handler, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestApplication_Routes(t *testing.T) {
	h := newTestApp(t).Handler()

	assert.Equal(t, http.StatusOK, get(h, "/health", nil).Code)
	assert.Equal(t, http.StatusOK, get(h, "/api/v1/open", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, get(h, "/api/v1/private", nil).Code)

	rec := get(h, "/api/v1/private", map[string]string{middleware.UserIDHeader: "user-1"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-1", rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(middleware.RequestIDHeader))
}

func TestApplication_MetricsEndpoint(t *testing.T) {
	h := newTestApp(t).Handler()
	get(h, "/api/v1/open", nil)

	rec := get(h, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "pawcare_bookings_http_requests_total")
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestApplication_MetricsDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.MetricsEnabled = false
	a := NewApplication(cfg)
	a.SetApp(echoHandler{})
	t.Cleanup(func() {
		a.idempotencyStore.Stop()
		a.rateLimiter.Stop()
	})

	assert.Nil(t, a.Metrics())
	assert.NotEqual(t, http.StatusOK, get(a.Handler(), "/metrics", nil).Code)
}

func TestMetricsNamespace(t *testing.T) {
	assert.Equal(t, "pawcare", metricsNamespace(""))
	assert.Equal(t, "pawcare_mongo_migration", metricsNamespace("mongo-migration"))
}

type stubPinger struct{ err error }

func (p stubPinger) Ping(ctx context.Context, rp *readpref.ReadPref) error { return p.err }

func TestHealthHandler_Ready(t *testing.T) {
	log := logger.New(logger.Config{Level: logger.ERROR, Output: io.Discard})

	router := httprouter.New()
	NewHealthHandler(stubPinger{}, log).RegisterRoutes(router)
	assert.Equal(t, http.StatusOK, get(router, "/ready", nil).Code)

	router = httprouter.New()
	NewHealthHandler(stubPinger{err: errors.New("no primary")}, log).RegisterRoutes(router)
	rec := get(router, "/ready", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "unavailable")
}
