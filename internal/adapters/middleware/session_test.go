package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/AchilleasB/baby-kliniek/intake-dashboard-service/internal/adapters/credstore"
	"github.com/AchilleasB/baby-kliniek/intake-dashboard-service/internal/core/services"
)

func newTestMiddleware() *SessionMiddleware {
	registry := services.NewSessionRegistry(func(string) *services.Dashboard {
		return services.NewDashboard(nil, credstore.NewMemoryStore(), nil, zap.NewNop())
	}, zap.NewNop())
	return NewSessionMiddleware(registry, zap.NewNop())
}

func TestRequireSession_NoCookie(t *testing.T) {
	mw := newTestMiddleware()

	called := false
	handler := mw.RequireSession(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/api/dashboard/requests", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, called)
}

func TestRequireSession_EmptyCookie(t *testing.T) {
	mw := newTestMiddleware()

	handler := mw.RequireSession(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run without a session")
	})

	req := httptest.NewRequest(http.MethodGet, "/api/dashboard/requests", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: ""})

	rec := httptest.NewRecorder()
	handler(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireSession_InjectsDashboard(t *testing.T) {
	mw := newTestMiddleware()

	handler := mw.RequireSession(func(w http.ResponseWriter, r *http.Request) {
		dash, ok := DashboardFrom(r.Context())
		require.True(t, ok)
		require.NotNil(t, dash)

		id, ok := SessionIDFrom(r.Context())
		require.True(t, ok)
		assert.Equal(t, "abc-123", id)

		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/dashboard/requests", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "abc-123"})

	rec := httptest.NewRecorder()
	handler(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
