package middlewares

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/oauth"
)

// RequireRole authorizes a bearer token and checks its roles claim for
// the wanted role. Missing or foreign tokens get 401 from the oauth
// layer; a valid token without the role gets 403.
func RequireRole(secret, role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return chi.Chain(oauth.Authorize(secret, nil), hasRole(role)).Handler(next)
	}
}

func hasRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := r.Context().Value(oauth.ClaimsContext).(map[string]string)
			if !ok {
				http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
				return
			}

			found := false
			if rolesClaim, ok := claims["roles"]; ok {
				for _, have := range strings.Split(rolesClaim, ",") {
					if strings.TrimSpace(have) == role {
						found = true
						break
					}
				}
			}

			if !found {
				http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
