package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/goccy/go-json"
	"github.com/raunelaunch/fooddiscovery/internal/domain/entities"
	"github.com/rs/zerolog/log"
)

type contextKey string

const (
	sessionKey contextKey = "session"
	tokenKey   contextKey = "session_token"
)

// SessionLookup resolves a bearer token to a live session
type SessionLookup interface {
	CurrentSession(ctx context.Context, token string) (*entities.Session, error)
}

// BearerToken extracts the token of an "Authorization: Bearer" header
func BearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// RequireSession rejects requests without a live session and stores the
// session in the request context.
func RequireSession(sessions SessionLookup) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			token := BearerToken(r)
			if token == "" {
				writeUnauthorized(w, "missing bearer token")
				return
			}

			session, err := sessions.CurrentSession(r.Context(), token)
			if err != nil {
				log.Error().Err(err).Msg("Session lookup failed")
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				_ = json.NewEncoder(w).Encode(map[string]string{"error": "internal server error"})
				return
			}
			if session == nil {
				writeUnauthorized(w, "session expired or invalid")
				return
			}

			ctx := context.WithValue(r.Context(), sessionKey, session)
			ctx = context.WithValue(ctx, tokenKey, token)
			next(w, r.WithContext(ctx))
		}
	}
}

// SessionFromContext returns the session stored by RequireSession
func SessionFromContext(ctx context.Context) (*entities.Session, string, bool) {
	session, ok := ctx.Value(sessionKey).(*entities.Session)
	if !ok {
		return nil, "", false
	}
	token, _ := ctx.Value(tokenKey).(string)
	return session, token, true
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", "Bearer")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
