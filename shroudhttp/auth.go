// Package shroudhttp is the HTTP request boundary for shroud: it turns a
// bearer token into the caller's role snapshot and renders masked responses.
package shroudhttp

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/zoobzio/shroud"
)

// Claims are the token claims read at the boundary.
type Claims struct {
	Roles []string `json:"roles"`
	jwt.RegisteredClaims
}

// Authenticator verifies HS256 bearer tokens and stores the caller's roles
// in the request context.
type Authenticator struct {
	secret []byte
	names  shroud.RoleNames
	parser *jwt.Parser
	logger *slog.Logger
}

// AuthOption configures an Authenticator.
type AuthOption func(*Authenticator)

// WithRoleNames sets the role names that grant elevated and executive privileges.
func WithRoleNames(names shroud.RoleNames) AuthOption {
	return func(a *Authenticator) { a.names = names }
}

// WithLogger sets the logger for rejected tokens.
func WithLogger(logger *slog.Logger) AuthOption {
	return func(a *Authenticator) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithIssuer requires the iss claim to match.
func WithIssuer(issuer string) AuthOption {
	return func(a *Authenticator) {
		a.parser = jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithIssuer(issuer),
			jwt.WithExpirationRequired(),
		)
	}
}

// NewAuthenticator creates an Authenticator for tokens signed with secret.
func NewAuthenticator(secret []byte, opts ...AuthOption) *Authenticator {
	a := &Authenticator{
		secret: secret,
		names:  shroud.DefaultRoleNames(),
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithExpirationRequired(),
		),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Verify parses and validates a token, returning the caller's role snapshot.
func (a *Authenticator) Verify(token string) (shroud.Roles, error) {
	claims := &Claims{}
	parsed, err := a.parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return a.secret, nil
	})
	if err != nil {
		return shroud.Roles{}, fmt.Errorf("verify token: %w", err)
	}
	if !parsed.Valid {
		return shroud.Roles{}, errors.New("verify token: invalid token")
	}
	return a.names.Snapshot(claims.Roles...), nil
}

// Middleware stores the role snapshot of authenticated callers.
// Requests without an Authorization header proceed with no snapshot;
// a malformed or invalid bearer token is rejected with 401.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			next.ServeHTTP(w, r)
			return
		}

		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			a.logger.Warn("rejected authorization header", slog.String("path", r.URL.Path))
			writeError(w, http.StatusUnauthorized, "invalid authorization header")
			return
		}

		roles, err := a.Verify(strings.TrimSpace(token))
		if err != nil {
			a.logger.Warn("rejected bearer token",
				slog.String("path", r.URL.Path),
				slog.Any("error", err))
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		next.ServeHTTP(w, r.WithContext(shroud.WithRoles(r.Context(), roles)))
	})
}

// writeError writes a small JSON error body.
func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
