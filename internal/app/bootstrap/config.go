// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for localchambers.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, session_name, etc.
//   - Environment variables: LOCALCHAMBERS_MONGO_URI, LOCALCHAMBERS_SESSION_NAME, etc.
//   - Command-line flags: --mongo_uri, --session_name, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "localchambers", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size"},

	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "localchambers-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},

	// Packet storage
	{Name: "storage_local_path", Default: "./data/packets", Desc: "Local storage path for handoff packets"},
	{Name: "storage_secret", Default: "", Desc: "HMAC key for signed download URLs (defaults to session_key)"},

	{Name: "base_url", Default: "http://localhost:8080", Desc: "Base URL for OAuth callbacks and download links"},

	// Chamber guide (Gemini)
	{Name: "gemini_api_key", Default: "", Desc: "Gemini API key for the chamber guide"},
	{Name: "gemini_model", Default: "gemini-2.0-flash", Desc: "Gemini model name"},

	// Payment gateway
	{Name: "payment_base_url", Default: "", Desc: "Payment gateway base URL"},
	{Name: "payment_api_key", Default: "", Desc: "Payment gateway API key"},

	// Google OAuth
	{Name: "google_client_id", Default: "", Desc: "Google OAuth2 client ID"},
	{Name: "google_client_secret", Default: "", Desc: "Google OAuth2 client secret"},

	// Audit logging
	{Name: "audit_log_verify", Default: "all", Desc: "Verification event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_log_admin", Default: "all", Desc: "Admin event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_log_auth", Default: "all", Desc: "Auth event logging: 'all' (db+log), 'db', 'log', or 'off'"},

	// Listing projection
	{Name: "projection_mode", Default: "auto", Desc: "Listing projection delivery: 'auto', 'stream', or 'hook'"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "LOCALCHAMBERS", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		SessionKey:    appValues.String("session_key"),
		SessionName:   appValues.String("session_name"),
		SessionDomain: appValues.String("session_domain"),

		StorageLocalPath: appValues.String("storage_local_path"),
		StorageSecret:    appValues.String("storage_secret"),

		BaseURL: appValues.String("base_url"),

		GeminiAPIKey: appValues.String("gemini_api_key"),
		GeminiModel:  appValues.String("gemini_model"),

		PaymentBaseURL: appValues.String("payment_base_url"),
		PaymentAPIKey:  appValues.String("payment_api_key"),

		GoogleClientID:     appValues.String("google_client_id"),
		GoogleClientSecret: appValues.String("google_client_secret"),

		AuditLogVerify: appValues.String("audit_log_verify"),
		AuditLogAdmin:  appValues.String("audit_log_admin"),
		AuditLogAuth:   appValues.String("audit_log_auth"),

		ProjectionMode: appValues.String("projection_mode"),
	}

	if appCfg.StorageSecret == "" {
		appCfg.StorageSecret = appCfg.SessionKey
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation before anything
// connects.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}

	switch appCfg.ProjectionMode {
	case "auto", "stream", "hook":
	default:
		return fmt.Errorf("projection_mode must be 'auto', 'stream', or 'hook', got %q", appCfg.ProjectionMode)
	}

	if appCfg.GeminiAPIKey == "" {
		logger.Warn("gemini_api_key not set; chamber guide will return errors")
	}
	if appCfg.PaymentBaseURL == "" {
		logger.Warn("payment_base_url not set; card payments will fail")
	}

	return nil
}
