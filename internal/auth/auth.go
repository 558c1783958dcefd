// Package auth gates the admin-only endpoints. Callers present a bearer
// token; the bcrypt hash of the expected token lives in configuration, so
// the plaintext never sits on disk.
package auth

import (
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/optomall/optomall/internal/platform/httpx"
)

// Admin verifies admin bearer tokens.
type Admin struct {
	logger    *slog.Logger
	tokenHash []byte
}

// NewAdmin builds the gate. An empty hash disables admin access entirely.
func NewAdmin(logger *slog.Logger, tokenHash string) *Admin {
	return &Admin{logger: logger, tokenHash: []byte(tokenHash)}
}

// Enabled reports whether an admin token is configured.
func (a *Admin) Enabled() bool {
	return len(a.tokenHash) > 0
}

// Require rejects requests without a valid admin bearer token.
func (a *Admin) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			httpx.Problem(w, http.StatusForbidden, "Forbidden", "admin_required")
			return
		}
		if !a.Enabled() || bcrypt.CompareHashAndPassword(a.tokenHash, []byte(token)) != nil {
			a.logger.Warn("admin token rejected", slog.String("path", r.URL.Path))
			httpx.Problem(w, http.StatusForbidden, "Forbidden", "admin_required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, prefix))
}
