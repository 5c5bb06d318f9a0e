// internal/app/bootstrap/routes.go
package bootstrap

import (
	"errors"
	"net/http"

	auditlogfeature "github.com/dalemusser/projecthub/internal/app/features/auditlog"
	groupsfeature "github.com/dalemusser/projecthub/internal/app/features/groups"
	healthfeature "github.com/dalemusser/projecthub/internal/app/features/health"
	invitationsfeature "github.com/dalemusser/projecthub/internal/app/features/invitations"
	studentsfeature "github.com/dalemusser/projecthub/internal/app/features/students"
	"github.com/dalemusser/projecthub/internal/app/system/auth"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// the Startup hook have completed. The session cookie is issued upstream;
// LoadSessionUser only reads it so the acting student is available to every
// handler through auth.CurrentUser(r).
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	if deps.Runtime == nil || deps.Runtime.Engine == nil {
		return nil, errors.New("build handler: services not started")
	}
	rt := deps.Runtime

	// Secure cookies are enabled in production mode.
	secure := coreCfg != nil && coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, appCfg.SessionMaxAge, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	r := chi.NewRouter()
	r.Use(sessionMgr.LoadSessionUser)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, appCfg.StoreType, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Group lifecycle
	groupsHandler := groupsfeature.NewHandler(rt.Engine, logger)
	r.Mount("/groups", groupsfeature.Routes(groupsHandler, sessionMgr.RequireSignedIn))

	// Available-student search for invite pickers
	studentsHandler := studentsfeature.NewHandler(rt.Engine, logger)
	r.Mount("/students", studentsfeature.Routes(studentsHandler, sessionMgr.RequireSignedIn))

	// Emailed invitation links
	invitationsHandler := invitationsfeature.NewHandler(rt.Engine, rt.Tokens, logger)
	r.Mount("/invitations", invitationsfeature.Routes(invitationsHandler, sessionMgr.RequireSignedIn, rt.Accept))

	// Lifecycle history for administrators; the memory store keeps no events.
	if deps.Audit != nil {
		auditHandler := auditlogfeature.NewHandler(deps.Audit, logger)
		r.Mount("/audit", auditlogfeature.Routes(auditHandler, sessionMgr.RequireRole(auth.RoleAdmin)))
	}

	return r, nil
}
