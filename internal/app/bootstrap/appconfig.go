// internal/app/bootstrap/appconfig.go
package bootstrap

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// WAFFLE's CoreConfig handles framework-level settings (ports, TLS,
// logging, CORS). AppConfig is everything specific to localchambers:
// database, sessions, storage, external services, and feature modes.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string
	MongoDatabase    string
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Session management configuration
	SessionKey    string // secret key for signing session cookies
	SessionName   string // cookie name
	SessionDomain string // cookie domain (blank means current host)

	// Packet storage configuration
	StorageLocalPath string // directory for generated handoff packets
	StorageSecret    string // HMAC key for signed download URLs

	// Base URL for OAuth callbacks and signed download links
	BaseURL string

	// Gemini configuration for the chamber guide
	GeminiAPIKey string
	GeminiModel  string

	// Payment gateway configuration for membership join
	PaymentBaseURL string
	PaymentAPIKey  string

	// Google OAuth configuration
	GoogleClientID     string
	GoogleClientSecret string

	// Audit logging settings: "all" (db+log), "db", "log", or "off"
	AuditLogVerify string
	AuditLogAdmin  string
	AuditLogAuth   string

	// Listing projection delivery: "auto" tries the change stream and
	// falls back to the write hook, "stream" and "hook" force a mode.
	ProjectionMode string
}
