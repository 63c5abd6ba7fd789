package middleware

import (
	"crypto/subtle"
	"log"
	"net"
	"net/http"
	"os"
	"strings"
)

// WebhookKeyMiddleware gates the partner webhook behind a shared API key.
// An empty WEBHOOK_API_KEY disables the check (local development).
func WebhookKeyMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		expected := os.Getenv("WEBHOOK_API_KEY")
		if expected == "" {
			next.ServeHTTP(w, r)
			return
		}

		apiKey := r.Header.Get("x-api-key")
		if subtle.ConstantTimeCompare([]byte(apiKey), []byte(expected)) != 1 {
			log.Printf("[SECURITY] Blocked webhook call - invalid API key. IP=%s Path=%s", getClientIP(r), r.URL.Path)
			http.Error(w, "Invalid or missing API key", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func getClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return strings.TrimSpace(strings.Split(fwd, ",")[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
