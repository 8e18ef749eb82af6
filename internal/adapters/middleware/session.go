package middleware

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/AchilleasB/baby-kliniek/intake-dashboard-service/internal/core/services"
)

// SessionCookie carries the opaque session id; the credential pair itself
// never reaches the browser.
const SessionCookie = "intake_session"

type contextKey string

const (
	SessionIDKey contextKey = "sessionID"
	DashboardKey contextKey = "dashboard"
)

// SessionMiddleware resolves the per-session dashboard service from the
// session cookie and injects it into the request context.
type SessionMiddleware struct {
	registry *services.SessionRegistry
	logger   *zap.Logger
}

func NewSessionMiddleware(registry *services.SessionRegistry, logger *zap.Logger) *SessionMiddleware {
	return &SessionMiddleware{registry: registry, logger: logger}
}

func (m *SessionMiddleware) RequireSession(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(SessionCookie)
		if err != nil || cookie.Value == "" {
			m.logger.Debug("request without session cookie", zap.String("path", r.URL.Path))
			http.Error(w, "authentication required", http.StatusUnauthorized)
			return
		}

		dash := m.registry.Resolve(cookie.Value)

		ctx := context.WithValue(r.Context(), SessionIDKey, cookie.Value)
		ctx = context.WithValue(ctx, DashboardKey, dash)

		next(w, r.WithContext(ctx))
	}
}

// DashboardFrom returns the session's dashboard service from the context.
func DashboardFrom(ctx context.Context) (*services.Dashboard, bool) {
	dash, ok := ctx.Value(DashboardKey).(*services.Dashboard)
	return dash, ok
}

// SessionIDFrom returns the session id from the context.
func SessionIDFrom(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(SessionIDKey).(string)
	return id, ok
}
