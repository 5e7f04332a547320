// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables (ASSIGNPORTAL_*),
// configuration files, or command-line flags (loaded in LoadConfig).
// WAFFLE's CoreConfig covers ports, TLS, logging and the environment name;
// everything the assignment portal itself needs lives here.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Bearer tokens
	JWTSecret string // HS256 signing secret (must be strong in production)
	JWTIssuer string // "iss" claim written and required

	// Credentials
	BcryptCost int

	// Login throttling (per client IP and per username)
	LoginRateLimit  int           // attempts per window; 0 disables
	LoginRateWindow time.Duration // window length

	// Reject uploads addressed to a username that is not an admin.
	RequireKnownAdmin bool

	// Audit logging: "all", "db", "log" or "off"
	AuditLogAuth  string
	AuditLogAdmin string

	// Optional admin account created at startup when missing
	SeedAdminUsername string
	SeedAdminPassword string

	// DB operation timeouts (zero keeps the defaults)
	TimeoutShort  time.Duration
	TimeoutMedium time.Duration
}
