// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). WAFFLE's CoreConfig handles
// framework-level settings (ports, TLS, log level); AppConfig is where
// everything specific to CardHub lives.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64 // Max connection pool size
	MongoMinPoolSize uint64 // Min connection pool size

	// Session management configuration
	SessionKey    string        // Secret key for signing session cookies (must be strong in production)
	SessionName   string        // Cookie name for sessions (default: cardhub-session)
	SessionDomain string        // Cookie domain (blank means current host)
	SessionMaxAge time.Duration // Session lifetime

	// NFC tag codec configuration. The key and IV are a compatibility
	// contract with tags already in the field; changing them orphans
	// every issued card.
	NfcKeyHex   string // AES-256 key, 64 hex chars (32 bytes)
	NfcIVHex    string // CBC IV, 32 hex chars (16 bytes)
	CardBaseURL string // Absolute URL of the public card endpoint written into tags

	// Bridge configuration. Empty disables bridge notifications.
	BridgeURL string // Endpoint of the desktop NFC writer

	// Email/SMTP configuration
	MailSMTPHost string // SMTP server host (e.g., localhost for Mailpit)
	MailSMTPPort int    // SMTP server port (e.g., 1025 for Mailpit, 587 for SES)
	MailSMTPUser string // SMTP username (empty for Mailpit)
	MailSMTPPass string // SMTP password
	MailFrom     string // From email address (e.g., noreply@cardhub.app)
	MailFromName string // From display name (e.g., CardHub)

	// SiteName appears in credential emails.
	SiteName string

	// Photo upload configuration
	UploadDir string // Local directory uploads are written to
	UploadURL string // URL prefix the static file handler serves uploads from

	// Audit logging settings
	AuditLogAuth  string // Auth event logging: "all" (db+log), "db", "log", or "off"
	AuditLogAdmin string // Admin event logging, same values
	AuditLogCard  string // Public tap resolution logging, same values

	// Superadmin bootstrap. Created on startup if no superadmin exists.
	SuperAdminLoginID  string
	SuperAdminPassword string
}
