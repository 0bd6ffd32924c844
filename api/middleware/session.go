package middleware

import (
	"net/http"

	"github.com/pickspot/vendor-portal/api/responses"
	"github.com/pickspot/vendor-portal/internal/session"
	"github.com/pickspot/vendor-portal/internal/token"
	"github.com/pickspot/vendor-portal/pkg/auth"
	"github.com/pickspot/vendor-portal/pkg/config"
	"github.com/pickspot/vendor-portal/pkg/enums"
	pkgerrors "github.com/pickspot/vendor-portal/pkg/errors"
	"github.com/pickspot/vendor-portal/pkg/logger"
)

// WithSession binds a cookie-backed token store and the shared refresh
// coordinator to every request. All credential reads and writes downstream go
// through the store in the context.
func WithSession(cfg config.CookieConfig, coord *session.Coordinator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			store := token.NewStore(cfg, w, r)
			ctx := WithTokenStore(r.Context(), store)
			ctx = WithCoordinator(ctx, coord)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// PageIdentity decodes the access token for page requests and enforces the
// role and suspension routing rules. It expects Guard to have run first, so a
// missing or undecodable token clears credentials and redirects to the entry
// page.
func PageIdentity(entryPath, landingPath, adminPath, agentPath, suspendedPath string, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			store := TokenStoreFromContext(r.Context())
			if store == nil {
				http.Redirect(w, r, entryPath, http.StatusFound)
				return
			}

			claims, err := auth.DecodeAccessToken(store.Get())
			if err != nil {
				store.Clear()
				http.Redirect(w, r, entryPath, http.StatusFound)
				return
			}
			identity := claims.Identity()

			if target := routeFor(identity, r.URL.Path, landingPath, adminPath, agentPath, suspendedPath); target != "" && target != r.URL.Path {
				http.Redirect(w, r, target, http.StatusFound)
				return
			}

			ctx := WithIdentity(r.Context(), &identity)
			if logg != nil {
				ctx = logg.WithVendorID(ctx, identity.VendorID)
				ctx = logg.WithActorRole(ctx, identity.Role.String())
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// routeFor returns the path the identity must be sent to, or "" when the
// current path is acceptable. Re-entry on an already-correct path is a no-op,
// which keeps the redirects loop-free.
func routeFor(identity auth.Identity, path, landingPath, adminPath, agentPath, suspendedPath string) string {
	if identity.Suspended() {
		if path == landingPath {
			return suspendedPath
		}
		return ""
	}
	switch identity.Role {
	case enums.RoleAdmin:
		if path == landingPath {
			return adminPath
		}
	case enums.RoleAgent:
		if path == landingPath {
			return agentPath
		}
	case enums.RoleVendor:
		if path == adminPath || path == agentPath {
			return landingPath
		}
	}
	return ""
}

// RequireIdentity decodes the access token for API requests and seeds the
// context, answering 401 instead of redirecting.
func RequireIdentity(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			store := TokenStoreFromContext(r.Context())
			if store == nil || store.Get() == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			claims, err := auth.DecodeAccessToken(store.Get())
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}
			identity := claims.Identity()

			ctx := WithIdentity(r.Context(), &identity)
			if logg != nil {
				ctx = logg.WithVendorID(ctx, identity.VendorID)
				ctx = logg.WithActorRole(ctx, identity.Role.String())
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRoles gates an API route to the listed roles.
func RequireRoles(logg *logger.Logger, roles ...enums.Role) func(http.Handler) http.Handler {
	allowed := make(map[enums.Role]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := IdentityFromContext(r.Context())
			if identity == nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}
			if _, ok := allowed[identity.Role]; !ok {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "role required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
