package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORSPolicy is an origin allow-list. A "*" entry allows any origin.
type CORSPolicy struct {
	cors *cors.Cors
}

// NewCORSPolicy builds a policy from origins.
func NewCORSPolicy(origins []string) *CORSPolicy {
	return &CORSPolicy{cors: cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders: []string{"authorization", "x-client-info", "apikey", "content-type"},
		MaxAge:         300,
		// Preflights fall through so they are answered with 204 below.
		OptionsPassthrough: true,
	})}
}

// Handler applies the policy and answers every OPTIONS request with 204.
func (p *CORSPolicy) Handler(next http.Handler) http.Handler {
	return p.cors.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	}))
}
