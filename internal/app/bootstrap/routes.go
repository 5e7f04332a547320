// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	adminsfeature "github.com/dalemusser/assignportal/internal/app/features/admins"
	assignmentsfeature "github.com/dalemusser/assignportal/internal/app/features/assignments"
	auditlogfeature "github.com/dalemusser/assignportal/internal/app/features/auditlog"
	healthfeature "github.com/dalemusser/assignportal/internal/app/features/health"
	loginfeature "github.com/dalemusser/assignportal/internal/app/features/login"
	registerfeature "github.com/dalemusser/assignportal/internal/app/features/register"
	uploadfeature "github.com/dalemusser/assignportal/internal/app/features/upload"
	"github.com/dalemusser/assignportal/internal/app/store/audit"
	assignmentstore "github.com/dalemusser/assignportal/internal/app/store/assignments"
	userstore "github.com/dalemusser/assignportal/internal/app/store/users"
	"github.com/dalemusser/assignportal/internal/app/system/apierr"
	"github.com/dalemusser/assignportal/internal/app/system/auditlog"
	"github.com/dalemusser/assignportal/internal/app/system/auth"
	"github.com/dalemusser/assignportal/internal/app/system/credentials"
	"github.com/dalemusser/assignportal/internal/app/system/jsonutil"
	"github.com/dalemusser/assignportal/internal/app/system/reqlog"
	"github.com/dalemusser/assignportal/internal/app/system/tokens"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// Startup have completed.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	return newRouter(appCfg, deps, logger), nil
}

// newRouter builds every store and service once and mounts the feature routers.
func newRouter(appCfg AppConfig, deps DBDeps, logger *zap.Logger) chi.Router {
	db := deps.MongoDatabase

	users := userstore.New(db)
	assignments := assignmentstore.New(db)
	creds := credentials.New(users, appCfg.BcryptCost)
	issuer := tokens.NewIssuer(appCfg.JWTSecret, appCfg.JWTIssuer)
	guard := auth.NewGuard(issuer, users, logger)
	auditStore := audit.New(db)
	auditLog := auditlog.New(auditStore, logger, auditlog.Config{
		Auth:  appCfg.AuditLogAuth,
		Admin: appCfg.AuditLogAdmin,
	})

	r := chi.NewRouter()
	r.Use(reqlog.Middleware(logger))
	r.Use(apierr.Recoverer(logger))

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		apierr.Write(w, req, nil, apierr.NotFound("Not found"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		jsonutil.Write(w, http.StatusMethodNotAllowed, apierr.Message{Message: "Method not allowed"})
	})

	// Health check endpoint for load balancers and orchestrators
	r.Mount("/health", healthfeature.Routes(healthfeature.NewHandler(deps.MongoClient, logger)))

	// Accounts
	r.Mount("/register", registerfeature.Routes(registerfeature.NewHandler(creds, auditLog, logger)))
	r.Mount("/login", loginfeature.Routes(&loginfeature.Handler{
		Creds:    creds,
		Tokens:   issuer,
		Limiter:  deps.LoginLimiter,
		AuditLog: auditLog,
		Log:      logger,
	}))
	r.Mount("/admins", adminsfeature.Routes(&adminsfeature.Handler{Users: users, Log: logger}))

	// Submissions (any signed-in user)
	r.Mount("/upload", uploadfeature.Routes(&uploadfeature.Handler{
		Assignments:       assignments,
		Users:             users,
		RequireKnownAdmin: appCfg.RequireKnownAdmin,
		Log:               logger,
	}, guard))

	// Own submissions (signed in) and review queue (admins only)
	r.Mount("/assignments", assignmentsfeature.Routes(&assignmentsfeature.Handler{
		Assignments: assignments,
		AuditLog:    auditLog,
		Log:         logger,
	}, guard))

	// Audit log (admins only)
	r.Mount("/audit", auditlogfeature.Routes(auditlogfeature.NewHandler(auditStore, logger), guard))

	return r
}
