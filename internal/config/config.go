package config

import (
	"os"
	"time"
)

const (
	// Development server address
	DevServerAddr = "127.0.0.1:3334"

	// Short-link routes are served below this prefix
	LinksPrefix = "/links"

	// Redis defaults
	RedisPassword = ""
	RedisDB       = 0

	// Paste settings
	PasteTTL       = 72 * time.Hour
	MaxPayloadSize = 5_000_000 // 5MB

	// Server-assigned paste id length
	IDLength = 7
)

// RedisURI returns the "host:port" of the development server's Redis, or
// "" to run on the in-memory store.
func RedisURI() string {
	return os.Getenv("REDIS_URI")
}

// TrustProxy returns true if X-Forwarded-For and X-Real-IP headers should be trusted.
// Set TRUST_PROXY=true when running behind a reverse proxy.
func TrustProxy() bool {
	return os.Getenv("TRUST_PROXY") == "true"
}

// BlacklistedPhrases contains spam/attack patterns to reject.
var BlacklistedPhrases = []string{
	"Cookie: mstshash=Administ",
	"-esystem('cmd /c echo .close",
	"md /c echo Set xHttp=createobjec",
}
