package chi

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// Service info, health and metrics stay reachable without a key.
var publicPaths = map[string]bool{
	"/":        true,
	"/health":  true,
	"/metrics": true,
}

// BearerAuthMiddleware rejects requests whose Authorization header does not carry
// one of apiKeys as a Bearer token. With no non-empty keys auth is off.
func BearerAuthMiddleware(apiKeys []string) func(http.Handler) http.Handler {
	keys := make([][]byte, 0, len(apiKeys))
	for _, k := range apiKeys {
		if k != "" {
			keys = append(keys, []byte(k))
		}
	}

	return func(next http.Handler) http.Handler {
		if len(keys) == 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if publicPaths[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}
			token, problem := bearerToken(r)
			if problem == "" && !knownKey(keys, token) {
				problem = "invalid api key"
			}
			if problem != "" {
				w.Header().Set("WWW-Authenticate", `Bearer realm="profilematch"`)
				writeError(w, http.StatusUnauthorized, ErrorResponseCodeUnauthorized, problem)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// bearerToken extracts the token, or describes why the header is unusable.
func bearerToken(r *http.Request) (token, problem string) {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return "", "missing authorization header"
	}
	scheme, rest, ok := strings.Cut(auth, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", "authorization header must use Bearer scheme"
	}
	return strings.TrimSpace(rest), ""
}

func knownKey(keys [][]byte, token string) bool {
	t := []byte(token)
	found := false
	for _, k := range keys {
		if subtle.ConstantTimeCompare(k, t) == 1 {
			found = true
		}
	}
	return found
}
