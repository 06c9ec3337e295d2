// internal/app/bootstrap/config.go
package bootstrap

import (
	"encoding/hex"
	"fmt"
	"net/url"
	"time"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for CardHub.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, session_name, etc.
//   - Environment variables: CARDHUB_MONGO_URI, CARDHUB_SESSION_NAME, etc.
//   - Command-line flags: --mongo_uri, --session_name, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "cardhub", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},

	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "cardhub-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},
	{Name: "session_max_age", Default: "168h", Desc: "Session lifetime (e.g., 24h, 168h)"},

	// NFC tag codec. The defaults are development keys; production must
	// set the key material that issued tags were encrypted with.
	{Name: "nfc_key", Default: "3031323334353637383961626364656630313233343536373839616263646566", Desc: "AES-256 tag key, 64 hex chars"},
	{Name: "nfc_iv", Default: "30313233343536373839616263646566", Desc: "AES-CBC tag IV, 32 hex chars"},
	{Name: "card_base_url", Default: "http://localhost:8080/card", Desc: "Absolute URL of the public card endpoint written into NFC tags"},

	{Name: "bridge_url", Default: "", Desc: "NFC writer bridge endpoint (empty disables notifications)"},

	// Email/SMTP configuration
	{Name: "mail_smtp_host", Default: "localhost", Desc: "SMTP server host"},
	{Name: "mail_smtp_port", Default: 1025, Desc: "SMTP server port"},
	{Name: "mail_smtp_user", Default: "", Desc: "SMTP username"},
	{Name: "mail_smtp_pass", Default: "", Desc: "SMTP password"},
	{Name: "mail_from", Default: "noreply@cardhub.app", Desc: "From email address"},
	{Name: "mail_from_name", Default: "CardHub", Desc: "From display name"},

	{Name: "site_name", Default: "CardHub", Desc: "Site name used in credential emails"},

	// Photo uploads
	{Name: "upload_dir", Default: "./uploads", Desc: "Local directory for uploaded photos"},
	{Name: "upload_url", Default: "/files", Desc: "URL prefix for serving uploaded photos"},

	// Audit logging settings
	{Name: "audit_log_auth", Default: "all", Desc: "Auth event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_log_admin", Default: "all", Desc: "Admin event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_log_card", Default: "db", Desc: "Card tap logging: 'all' (db+log), 'db', 'log', or 'off'"},

	// Superadmin bootstrap
	{Name: "superadmin_login_id", Default: "", Desc: "Login ID of the superadmin user (created on startup if no superadmin exists)"},
	{Name: "superadmin_password", Default: "", Desc: "Initial superadmin password (only used at creation)"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// It is called early in startup so that both WAFFLE and the app have
// access to configuration before any backends or handlers are built.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, CARDHUB_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "CARDHUB", appConfigKeys)
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
		SessionMaxAge: appValues.Duration("session_max_age", 168*time.Hour),

		NfcKeyHex:   appValues.String("nfc_key"),
		NfcIVHex:    appValues.String("nfc_iv"),
		CardBaseURL: appValues.String("card_base_url"),

		BridgeURL: appValues.String("bridge_url"),

		MailSMTPHost: appValues.String("mail_smtp_host"),
		MailSMTPPort: appValues.Int("mail_smtp_port"),
		MailSMTPUser: appValues.String("mail_smtp_user"),
		MailSMTPPass: appValues.String("mail_smtp_pass"),
		MailFrom:     appValues.String("mail_from"),
		MailFromName: appValues.String("mail_from_name"),

		SiteName: appValues.String("site_name"),

		UploadDir: appValues.String("upload_dir"),
		UploadURL: appValues.String("upload_url"),

		AuditLogAuth:  appValues.String("audit_log_auth"),
		AuditLogAdmin: appValues.String("audit_log_admin"),
		AuditLogCard:  appValues.String("audit_log_card"),

		SuperAdminLoginID:  appValues.String("superadmin_login_id"),
		SuperAdminPassword: appValues.String("superadmin_password"),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
// CardHub validates the MongoDB URI and the NFC key material here so a
// misconfigured deployment fails before it can issue unreadable tags.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}

	key, err := hex.DecodeString(appCfg.NfcKeyHex)
	if err != nil {
		return fmt.Errorf("nfc_key is not valid hex: %w", err)
	}
	if len(key) != 32 {
		return fmt.Errorf("nfc_key must decode to 32 bytes, got %d", len(key))
	}
	iv, err := hex.DecodeString(appCfg.NfcIVHex)
	if err != nil {
		return fmt.Errorf("nfc_iv is not valid hex: %w", err)
	}
	if len(iv) != 16 {
		return fmt.Errorf("nfc_iv must decode to 16 bytes, got %d", len(iv))
	}

	u, err := url.Parse(appCfg.CardBaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("card_base_url must be an absolute URL, got %q", appCfg.CardBaseURL)
	}

	if appCfg.SuperAdminLoginID != "" && appCfg.SuperAdminPassword == "" {
		return fmt.Errorf("superadmin_login_id is set but superadmin_password is empty")
	}

	return nil
}
