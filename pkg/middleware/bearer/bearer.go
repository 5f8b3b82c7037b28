// Package bearer authenticates requests against a single pre-shared token
// sent as "Authorization: Bearer <token>".
package bearer

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/go-chi/render"
	"github.com/vadimbarashkov/bookmarks/pkg/middleware"
	"github.com/vadimbarashkov/bookmarks/pkg/response"
)

const scheme = "Bearer "

// New returns a middleware that rejects requests whose bearer token does not
// equal token with 401. An empty token rejects every request.
func New(token string) middleware.Middleware {
	want := []byte(token)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got, ok := tokenFromHeader(r.Header.Get("Authorization"))
			if !ok || len(want) == 0 || subtle.ConstantTimeCompare([]byte(got), want) != 1 {
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.UnauthorizedResponse)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func tokenFromHeader(header string) (string, bool) {
	if !strings.HasPrefix(header, scheme) {
		return "", false
	}

	token := strings.TrimPrefix(header, scheme)
	if token == "" {
		return "", false
	}

	return token, true
}
