package tenancy

import (
	"net/http"

	"github.com/vitrinehq/vitrine/app/models"
	"github.com/vitrinehq/vitrine/pkg/auth"
	"github.com/vitrinehq/vitrine/pkg/database"
	"github.com/vitrinehq/vitrine/pkg/response"
)

// ResolveFromOrigin is the public-API middleware: it resolves the
// tenant from the Origin/Referer headers and stores the result in the
// request context. It never rejects a request; an unknown origin just
// scopes everything to empty.
func ResolveFromOrigin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		res := ResolveOrigin(database.DB, r.Header.Get("Origin"), r.Header.Get("Referer"))
		next.ServeHTTP(w, r.WithContext(WithResolution(r.Context(), res)))
	})
}

// ResolveFromPrincipal is the admin middleware: it resolves the tenant
// from the authenticated user's link. Run it after the auth middleware
// so the claims are present.
func ResolveFromPrincipal(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		res := None()
		if claims := auth.ClaimsFromCtx(r.Context()); claims != nil {
			var user models.User
			if err := database.DB.First(&user, claims.UserID).Error; err == nil {
				res = ResolveUser(database.DB, &user)
			}
		}
		next.ServeHTTP(w, r.WithContext(WithResolution(r.Context(), res)))
	})
}

// RequireSuperuser admits only principals resolved to the all-tenants
// scope. Run it after ResolveFromPrincipal: the superuser bit is read
// from the database-loaded user there, never from token claims, so a
// revoked superuser loses access on the next request rather than at
// token expiry.
func RequireSuperuser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !FromCtx(r.Context()).IsAll() {
			response.Forbidden(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}
