package chi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestBearerAuthMiddleware(t *testing.T) {
	tests := []struct {
		name   string
		keys   []string
		path   string
		header string
		want   int
	}{
		{name: "no keys", path: "/profiles", want: http.StatusOK},
		{name: "only empty keys", keys: []string{"", ""}, path: "/profiles", want: http.StatusOK},
		{name: "missing header", keys: []string{"secret"}, path: "/profiles", want: http.StatusUnauthorized},
		{name: "basic scheme", keys: []string{"secret"}, path: "/profiles",
			header: "Basic dXNlcjpwYXNz", want: http.StatusUnauthorized},
		{name: "wrong token", keys: []string{"secret"}, path: "/profiles",
			header: "Bearer wrong-key", want: http.StatusUnauthorized},
		{name: "valid token", keys: []string{"secret"}, path: "/profiles",
			header: "Bearer secret", want: http.StatusOK},
		{name: "scheme is case-insensitive", keys: []string{"secret"}, path: "/profiles",
			header: "bearer secret", want: http.StatusOK},
		{name: "second key", keys: []string{"key1", "key2"}, path: "/profiles/search",
			header: "Bearer key2", want: http.StatusOK},
		{name: "root is public", keys: []string{"secret"}, path: "/", want: http.StatusOK},
		{name: "health is public", keys: []string{"secret"}, path: "/health", want: http.StatusOK},
		{name: "metrics is public", keys: []string{"secret"}, path: "/metrics", want: http.StatusOK},
		{name: "public match is exact", keys: []string{"secret"}, path: "/healthz", want: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := BearerAuthMiddleware(tt.keys)(okHandler())

			req := httptest.NewRequest(http.MethodGet, tt.path, http.NoBody)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if rr.Code != tt.want {
				t.Fatalf("status = %d, want %d", rr.Code, tt.want)
			}
			if tt.want != http.StatusUnauthorized {
				return
			}
			if rr.Header().Get("WWW-Authenticate") == "" {
				t.Error("expected WWW-Authenticate header")
			}
			var errResp ErrorResponse
			if err := json.NewDecoder(rr.Body).Decode(&errResp); err != nil {
				t.Fatalf("decode error response: %v", err)
			}
			if errResp.Code != ErrorResponseCodeUnauthorized {
				t.Errorf("code = %s, want %s", errResp.Code, ErrorResponseCodeUnauthorized)
			}
		})
	}
}
