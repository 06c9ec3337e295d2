// internal/app/bootstrap/routes.go
package bootstrap

import (
	"encoding/hex"
	"net/http"

	adminsfeature "github.com/dalemusser/cardhub/internal/app/features/admins"
	activityfeature "github.com/dalemusser/cardhub/internal/app/features/auditlog"
	cardfeature "github.com/dalemusser/cardhub/internal/app/features/card"
	companiesfeature "github.com/dalemusser/cardhub/internal/app/features/companies"
	companyfeature "github.com/dalemusser/cardhub/internal/app/features/company"
	errorsfeature "github.com/dalemusser/cardhub/internal/app/features/errors"
	healthfeature "github.com/dalemusser/cardhub/internal/app/features/health"
	holdersfeature "github.com/dalemusser/cardhub/internal/app/features/holders"
	loginfeature "github.com/dalemusser/cardhub/internal/app/features/login"
	logoutfeature "github.com/dalemusser/cardhub/internal/app/features/logout"
	nfcfeature "github.com/dalemusser/cardhub/internal/app/features/nfc"
	photosfeature "github.com/dalemusser/cardhub/internal/app/features/photos"
	productsfeature "github.com/dalemusser/cardhub/internal/app/features/products"
	profilefeature "github.com/dalemusser/cardhub/internal/app/features/profile"
	settingsfeature "github.com/dalemusser/cardhub/internal/app/features/settings"
	socialsfeature "github.com/dalemusser/cardhub/internal/app/features/socials"
	"github.com/dalemusser/cardhub/internal/app/store/audit"
	companystore "github.com/dalemusser/cardhub/internal/app/store/companies"
	"github.com/dalemusser/cardhub/internal/app/store/emaillogs"
	productstore "github.com/dalemusser/cardhub/internal/app/store/products"
	settingsstore "github.com/dalemusser/cardhub/internal/app/store/settings"
	socialstore "github.com/dalemusser/cardhub/internal/app/store/socials"
	userstore "github.com/dalemusser/cardhub/internal/app/store/users"
	"github.com/dalemusser/cardhub/internal/app/system/auditlog"
	"github.com/dalemusser/cardhub/internal/app/system/auth"
	"github.com/dalemusser/cardhub/internal/app/system/bridge"
	"github.com/dalemusser/cardhub/internal/app/system/mailer"
	"github.com/dalemusser/cardhub/internal/app/system/tagcodec"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// the Startup hook have completed.
//
// Route map:
//
//	public     GET  /health, GET /card, POST /api/login, POST /api/logout
//	signed in  /api/profile, /api/photos
//	admin      /api/holders, /api/products, /api/company, /api/socials,
//	           /api/nfc, /api/activity
//	superadmin /api/companies, /api/admins, /api/settings
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(
		appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain,
		appCfg.SessionMaxAge, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	db := deps.MongoDatabase

	// LoadSessionUser fetches fresh user data on each request so role
	// changes and deactivation take effect immediately.
	sessionMgr.SetUserFetcher(userstore.NewFetcher(db))

	// Key material was validated in ValidateConfig; decode cannot fail here.
	nfcKey, _ := hex.DecodeString(appCfg.NfcKeyHex)
	nfcIV, _ := hex.DecodeString(appCfg.NfcIVHex)
	codec, err := tagcodec.New(nfcKey, nfcIV, appCfg.CardBaseURL)
	if err != nil {
		logger.Error("tag codec init failed", zap.Error(err))
		return nil, err
	}

	users := userstore.New(db)
	companies := companystore.New(db)
	products := productstore.New(db)
	socials := socialstore.New(db)
	settings := settingsstore.New(db)
	auditStore := audit.New(db)
	emailLogs := emaillogs.New(db)

	auditLog := auditlog.New(auditStore, logger, auditlog.Config{
		Auth:  appCfg.AuditLogAuth,
		Admin: appCfg.AuditLogAdmin,
		Card:  appCfg.AuditLogCard,
	})

	mail := mailer.New(
		appCfg.MailSMTPHost, appCfg.MailSMTPPort,
		appCfg.MailSMTPUser, appCfg.MailSMTPPass,
		appCfg.MailFrom, appCfg.MailFromName,
		emailLogs, logger)

	notifier := bridge.New(appCfg.BridgeURL, logger)

	errLog := errorsfeature.NewErrorLogger(logger)

	r := chi.NewRouter()

	// Global auth middleware: loads the session user into context if
	// signed in.
	r.Use(sessionMgr.LoadSessionUser)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Public tap resolution. No session required; a tap on a physical
	// card must resolve without login.
	cardHandler := cardfeature.NewHandler(codec, users, companies, products, socials, errLog, auditLog, logger)
	r.Route("/card", cardHandler.MountRoutes)

	// Authentication
	loginHandler := loginfeature.NewHandler(users, sessionMgr, errLog, auditLog, logger)
	r.Route("/api/login", loginHandler.MountRoutes)

	logoutHandler := logoutfeature.NewHandler(sessionMgr, auditLog, logger)
	r.Route("/api/logout", logoutHandler.MountRoutes)

	// Any signed-in user: own profile and photo uploads.
	r.Group(func(pr chi.Router) {
		pr.Use(sessionMgr.RequireSignedIn)

		profileHandler := profilefeature.NewHandler(users, errLog, auditLog, logger)
		pr.Route("/api/profile", profileHandler.MountRoutes)

		photosHandler := photosfeature.NewHandler(appCfg.UploadDir, appCfg.UploadURL, errLog, logger)
		pr.Route("/api/photos", photosHandler.MountRoutes)
	})

	// Company admins (and superadmins acting on a named company).
	r.Group(func(ar chi.Router) {
		ar.Use(sessionMgr.RequireRole("admin", "superadmin"))

		holdersHandler := holdersfeature.NewHandler(users, mail, appCfg.SiteName, errLog, auditLog, logger)
		ar.Route("/api/holders", holdersHandler.MountRoutes)

		productsHandler := productsfeature.NewHandler(products, errLog, auditLog, logger)
		ar.Route("/api/products", productsHandler.MountRoutes)

		companyHandler := companyfeature.NewHandler(companies, errLog, auditLog, logger)
		ar.Route("/api/company", companyHandler.MountRoutes)

		socialsHandler := socialsfeature.NewHandler(socials, errLog, auditLog, logger)
		ar.Route("/api/socials", socialsHandler.MountRoutes)

		nfcHandler := nfcfeature.NewHandler(codec, users, notifier, errLog, auditLog, logger)
		ar.Route("/api/nfc", nfcHandler.MountRoutes)

		activityHandler := activityfeature.NewHandler(auditStore, errLog, logger)
		ar.Route("/api/activity", activityHandler.MountRoutes)
	})

	// Superadmins only.
	r.Group(func(sr chi.Router) {
		sr.Use(sessionMgr.RequireRole("superadmin"))

		companiesHandler := companiesfeature.NewHandler(companies, users, errLog, auditLog, logger)
		sr.Route("/api/companies", companiesHandler.MountRoutes)

		adminsHandler := adminsfeature.NewHandler(users, mail, appCfg.SiteName, errLog, auditLog, logger)
		sr.Route("/api/admins", adminsHandler.MountRoutes)

		settingsHandler := settingsfeature.NewHandler(settings, errLog, auditLog, logger)
		sr.Route("/api/settings", settingsHandler.MountRoutes)
	})

	// Uploaded photos with pre-compressed file support (gzip/brotli)
	r.Handle(appCfg.UploadURL+"/*", fileserver.Handler(appCfg.UploadURL, appCfg.UploadDir))

	return r, nil
}
