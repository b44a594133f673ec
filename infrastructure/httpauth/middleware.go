package httpauth

import (
	"context"
	"encoding/json"
	stdErrors "errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/reglet-dev/skillguard/application/auth"
	"github.com/reglet-dev/skillguard/domain/errors"
	"github.com/reglet-dev/skillguard/domain/ports"
	"github.com/reglet-dev/skillguard/domain/rbac"
	"github.com/reglet-dev/skillguard/infrastructure/telemetry"
)

// SessionCookie is the cookie carrying the session token for browser clients.
const SessionCookie = "skillguard_session"

type userKey struct{}

// WithUser returns a copy of ctx carrying u.
func WithUser(ctx context.Context, u *rbac.UserWithRole) context.Context {
	return context.WithValue(ctx, userKey{}, u)
}

// UserFromContext returns the authenticated user or nil. It never fails and
// satisfies ports.UserResolver.
func UserFromContext(ctx context.Context) (*rbac.UserWithRole, error) {
	u, _ := ctx.Value(userKey{}).(*rbac.UserWithRole)
	return u, nil
}

var _ ports.UserResolver = UserFromContext

// Option configures a Middleware.
type Option func(*Middleware)

// WithLogger sets the logger for authentication failures.
func WithLogger(l *slog.Logger) Option {
	return func(m *Middleware) {
		m.logger = l
	}
}

// WithAccessMetrics records every RBAC decision.
func WithAccessMetrics(am *telemetry.AccessMetrics) Option {
	return func(m *Middleware) {
		m.metrics = am
	}
}

// WithAuthorizer routes permission decisions of Require through a.
// Without it the static role table decides.
func WithAuthorizer(a ports.Authorizer) Option {
	return func(m *Middleware) {
		m.authorizer = a
	}
}

// Middleware resolves session tokens to users and guards routes.
type Middleware struct {
	sessions   *SessionManager
	users      ports.UserStore
	logger     *slog.Logger
	metrics    *telemetry.AccessMetrics
	authorizer ports.Authorizer
}

// NewMiddleware creates a Middleware.
func NewMiddleware(sessions *SessionManager, users ports.UserStore, opts ...Option) *Middleware {
	m := &Middleware{sessions: sessions, users: users, logger: slog.Default()}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Authenticate attaches the session user to the request context. Requests
// without a token pass through anonymously; a bad token is rejected with 401.
// The user's role is read from the store so role changes apply immediately.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := tokenFromRequest(r)
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := m.sessions.Parse(token)
		if err != nil {
			m.logger.DebugContext(r.Context(), "rejected session token", slog.Any("error", err))
			m.metrics.RecordDecision(r.Context(), telemetry.OutcomeUnauthenticated)
			WriteError(w, &errors.UnauthorizedError{Message: "invalid or expired session"})
			return
		}

		user, err := m.users.Get(r.Context(), claims.Subject)
		if err != nil {
			if stdErrors.Is(err, rbac.ErrUserNotFound) {
				m.metrics.RecordDecision(r.Context(), telemetry.OutcomeUnauthenticated)
				WriteError(w, &errors.UnauthorizedError{Message: "session user no longer exists"})
				return
			}
			m.logger.ErrorContext(r.Context(), "loading session user", slog.Any("error", err))
			WriteError(w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
	})
}

// Require guards a route. With no permissions it only requires a user;
// otherwise any one of permissions suffices, or all of them if requireAll.
func (m *Middleware) Require(permissions []rbac.Permission, requireAll bool) func(http.Handler) http.Handler {
	guard := auth.CreateAuthMiddleware(auth.MiddlewareOptions{
		GetUser:     UserFromContext,
		Permissions: permissions,
		RequireAll:  requireAll,
		Authorizer:  m.authorizer,
	})
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, err := guard(r.Context()); err != nil {
				m.metrics.RecordDecision(r.Context(), outcomeOf(err))
				WriteError(w, err)
				return
			}
			m.metrics.RecordDecision(r.Context(), telemetry.OutcomeAllowed)
			next.ServeHTTP(w, r)
		})
	}
}

func outcomeOf(err error) string {
	if errors.IsUnauthorized(err) {
		return telemetry.OutcomeUnauthenticated
	}
	return telemetry.OutcomeForbidden
}

func tokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}
	if c, err := r.Cookie(SessionCookie); err == nil {
		return c.Value
	}
	return ""
}

// StatusOf maps an error to its HTTP status.
func StatusOf(err error) int {
	var (
		capability *errors.CapabilityError
		approval   *errors.ApprovalError
	)
	switch {
	case errors.IsUnauthorized(err):
		return http.StatusUnauthorized
	case errors.IsForbidden(err), stdErrors.As(err, &capability), stdErrors.As(err, &approval):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// WriteError writes err as a JSON ErrorDetail with the status from StatusOf.
func WriteError(w http.ResponseWriter, err error) {
	WriteJSON(w, StatusOf(err), errors.ToErrorDetail(err))
}

// WriteJSON writes v as a JSON response.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
