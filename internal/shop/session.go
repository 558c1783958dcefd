package shop

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
)

type contextKey struct{}

var sessionKeyCtx contextKey

// SessionMiddleware ensures every request carries a guest session key. The
// key is generated once per device and reused from the cookie afterwards,
// so local state survives restarts and can be mirrored remotely.
func SessionMiddleware(cookieName string, ttl time.Duration, secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var key string
			if cookie, err := r.Cookie(cookieName); err == nil && cookie.Value != "" {
				key = cookie.Value
			} else {
				key = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     cookieName,
					Value:    key,
					Path:     "/",
					MaxAge:   int(ttl / time.Second),
					HttpOnly: true,
					Secure:   secure,
					SameSite: http.SameSiteLaxMode,
				})
			}
			ctx := context.WithValue(r.Context(), sessionKeyCtx, key)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionKeyFromContext returns the guest session key, empty when the
// middleware did not run.
func SessionKeyFromContext(ctx context.Context) string {
	key, _ := ctx.Value(sessionKeyCtx).(string)
	return key
}
