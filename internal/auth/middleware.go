package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"tendermarket/db"
)

type contextKey struct{}

var principalKey contextKey

// WithPrincipal stores the authenticated user on the request context.
func WithPrincipal(ctx context.Context, u *db.User) context.Context {
	return context.WithValue(ctx, principalKey, u)
}

// PrincipalFromContext returns the authenticated user set by RequireAuth.
func PrincipalFromContext(ctx context.Context) (*db.User, bool) {
	u, ok := ctx.Value(principalKey).(*db.User)
	return u, ok
}

// UserResolver resolves a token subject to a stored user.
type UserResolver interface {
	GetUserByID(ctx context.Context, id int) (*db.User, error)
}

// Middleware guards protected routes: it validates the bearer token and
// loads the user it refers to.
type Middleware struct {
	jwt   *JWT
	users UserResolver
	log   *zap.Logger
}

func NewMiddleware(jwtService *JWT, users UserResolver, log *zap.Logger) *Middleware {
	return &Middleware{jwt: jwtService, users: users, log: log}
}

func (m *Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			m.unauthorized(w)
			return
		}

		claims, err := m.jwt.ValidateToken(token)
		if err != nil {
			m.unauthorized(w)
			return
		}

		userID, err := claims.UserID()
		if err != nil {
			m.unauthorized(w)
			return
		}

		user, err := m.users.GetUserByID(r.Context(), userID)
		if err != nil {
			m.log.Debug("token subject does not resolve to a user",
				zap.Int("user_id", userID), zap.Error(err))
			m.unauthorized(w)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), user)))
	})
}

func (m *Middleware) unauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": "Could not validate credentials"})
}
