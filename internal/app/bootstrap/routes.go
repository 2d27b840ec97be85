// internal/app/bootstrap/routes.go
package bootstrap

import (
	"context"
	"net/http"

	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	accountfeature "github.com/localchambers/localchambers/internal/app/features/account"
	adminfeature "github.com/localchambers/localchambers/internal/app/features/admin"
	authgooglefeature "github.com/localchambers/localchambers/internal/app/features/authgoogle"
	directoryfeature "github.com/localchambers/localchambers/internal/app/features/directory"
	guidefeature "github.com/localchambers/localchambers/internal/app/features/guide"
	handofffeature "github.com/localchambers/localchambers/internal/app/features/handoff"
	healthfeature "github.com/localchambers/localchambers/internal/app/features/health"
	joinfeature "github.com/localchambers/localchambers/internal/app/features/join"
	verifyfeature "github.com/localchambers/localchambers/internal/app/features/verify"
	"github.com/localchambers/localchambers/internal/app/store/audit"
	chamberstore "github.com/localchambers/localchambers/internal/app/store/chambers"
	credentialstore "github.com/localchambers/localchambers/internal/app/store/credentials"
	"github.com/localchambers/localchambers/internal/app/system/auditlog"
	"github.com/localchambers/localchambers/internal/app/system/auth"
	"github.com/localchambers/localchambers/internal/app/system/blob"
)

// BuildHandler constructs the root HTTP handler for the app.
//
// WAFFLE calls this after configuration, DB connection, schema setup, and
// Startup have completed. All feature routers mount here: the public
// directory and join endpoints, the claim-gated admin dashboard, the
// verification and handoff flows, the AI guide, and auth.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	client := deps.MongoClient
	db := deps.MongoDatabase

	auditLog := auditlog.New(audit.New(db), logger, auditlog.Config{
		Verify: appCfg.AuditLogVerify,
		Admin:  appCfg.AuditLogAdmin,
		Auth:   appCfg.AuditLogAuth,
	})

	// The organizations store is shared so that, in hook mode, every
	// write path feeds the listing projection.
	chambers := chamberstore.New(client, db)
	credentials := credentialstore.New(db)
	if projectionMode == "hook" && projector != nil {
		chambers.SetWriteHook(func(ctx context.Context, id string, after bson.M) {
			if err := projector.Apply(ctx, id, after); err != nil {
				logger.Error("listing projection failed",
					zap.String("chamber_id", id), zap.Error(err))
			}
		})
	}

	packetStore, err := blob.NewLocal(appCfg.StorageLocalPath, appCfg.BaseURL+"/files", []byte(appCfg.StorageSecret), logger)
	if err != nil {
		logger.Error("packet storage init failed", zap.Error(err))
		return nil, err
	}

	r := chi.NewRouter()

	// Global auth middleware: loads SessionUser into context if signed in.
	r.Use(sessionMgr.LoadSessionUser)

	healthHandler := healthfeature.NewHandler(client, projectionMode, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Signed packet downloads.
	r.Handle("/files/*", http.StripPrefix("/files", packetStore))

	// Accounts and sessions.
	accountHandler := accountfeature.NewHandler(db, sessionMgr, auditLog, logger)
	r.Mount("/api/auth", accountfeature.Routes(accountHandler, sessionMgr))

	googleHandler := authgooglefeature.NewHandler(db, sessionMgr, auditLog,
		appCfg.GoogleClientID, appCfg.GoogleClientSecret, appCfg.BaseURL, logger)
	r.Mount("/auth/google", authgooglefeature.Routes(googleHandler))

	// Chamber verification.
	verifyHandler := verifyfeature.NewHandler(client, db, auditLog, logger)
	verifyHandler.Service = verifyfeature.NewService(chambers, credentials, logger)
	r.Mount("/api/verify", verifyfeature.Routes(verifyHandler, sessionMgr))

	// Membership handoff packets.
	handoffHandler := handofffeature.NewHandler(client, db, packetStore, auditLog, logger)
	r.Mount("/api/handoff", handofffeature.Routes(handoffHandler, sessionMgr))

	// AI chamber guide.
	gemini := guidefeature.NewGeminiClient(appCfg.GeminiAPIKey, appCfg.GeminiModel, logger)
	guideHandler := guidefeature.NewHandler(gemini, logger)
	r.Mount("/api/guide", guidefeature.Routes(guideHandler, sessionMgr))

	// Membership join.
	gateway := joinfeature.NewHTTPGateway(appCfg.PaymentBaseURL, appCfg.PaymentAPIKey, logger)
	joinHandler := joinfeature.NewHandler(client, db, gateway, logger)
	r.Mount("/api/join", joinfeature.Routes(joinHandler))

	// Admin dashboard.
	adminHandler := adminfeature.NewHandler(client, db, auditLog, logger)
	adminHandler.Chambers = chambers
	r.Mount("/api/admin", adminfeature.Routes(adminHandler, sessionMgr))

	// Public directory, search, profiles, and the agent index.
	directoryHandler := directoryfeature.NewHandler(client, db, logger)
	r.Mount("/api", directoryfeature.Routes(directoryHandler))

	return r, nil
}
