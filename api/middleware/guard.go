package middleware

import (
	"errors"
	"net/http"

	"github.com/pickspot/vendor-portal/internal/session"
	"github.com/pickspot/vendor-portal/pkg/logger"
)

// Guard gates protected pages before any handler runs. A request with an
// access cookie passes through. A request holding only a refresh cookie gets
// one server-side refresh attempt; on success the new access cookie rides on
// the response and the page is served. Anything else is redirected to the
// entry page.
func Guard(entryPath string, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			store := TokenStoreFromContext(ctx)
			if store == nil {
				http.Redirect(w, r, entryPath, http.StatusFound)
				return
			}

			if store.Get() != "" {
				next.ServeHTTP(w, r)
				return
			}

			if !store.HasRefreshCookie() {
				http.Redirect(w, r, entryPath, http.StatusFound)
				return
			}

			coord := CoordinatorFromContext(ctx)
			if coord == nil {
				http.Redirect(w, r, entryPath, http.StatusFound)
				return
			}

			cookie := store.RefreshCookie()
			result, ok := coord.Cached(cookie)
			if !ok {
				refreshed, err := coord.Refresh(ctx, cookie)
				if err != nil {
					if logg != nil {
						logg.Warn(ctx, "guard.refresh_failed")
					}
					// Only a rejected credential is terminal. A transient
					// upstream failure must not destroy a refresh cookie
					// that may still be good on the next attempt.
					if errors.Is(err, session.ErrSessionExpired) {
						store.Clear()
					}
					http.Redirect(w, r, entryPath, http.StatusFound)
					return
				}
				result = refreshed
			}

			store.Set(result.AccessToken)
			store.ApplySetCookies(result.SetCookies)
			next.ServeHTTP(w, r)
		})
	}
}

// RedirectAuthenticated keeps signed-in users off public entry pages by
// sending anyone holding an access cookie to the landing page.
func RedirectAuthenticated(landingPath string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			store := TokenStoreFromContext(r.Context())
			if store != nil && store.Get() != "" {
				http.Redirect(w, r, landingPath, http.StatusFound)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
