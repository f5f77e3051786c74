// Package api provides the HTTP API server for ingesting documents and
// answering queries.
package api

// Config is the API server configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g., ":8081")
	ListenAddr string

	// Key guards all /v1 routes via the X-API-Key header when non-empty.
	Key string

	// RateLimit is the allowed requests per minute per client IP.
	// Zero disables rate limiting.
	RateLimit int
}
