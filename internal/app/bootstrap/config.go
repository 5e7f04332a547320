// internal/app/bootstrap/config.go
package bootstrap

import (
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/assignportal/internal/app/system/auditlog"
	"github.com/dalemusser/assignportal/internal/app/system/credentials"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// devJWTSecret is the default signing secret; ValidateConfig refuses it in prod.
const devJWTSecret = "dev-only-change-me-please-0123456789ABCDEF"

// appConfigKeys defines the configuration keys for the assignment portal.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, jwt_secret, etc.
//   - Environment variables: ASSIGNPORTAL_MONGO_URI, ASSIGNPORTAL_JWT_SECRET, etc.
//   - Command-line flags: --mongo_uri, --jwt_secret, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "assignportal", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},

	{Name: "jwt_secret", Default: devJWTSecret, Desc: "HS256 token signing secret (must be strong in production)"},
	{Name: "jwt_issuer", Default: "assignportal", Desc: "Token issuer (iss claim)"},

	{Name: "bcrypt_cost", Default: 12, Desc: "bcrypt cost for password hashes (4-31)"},

	// Login throttling
	{Name: "login_rate_limit", Default: 10, Desc: "Login attempts allowed per window per IP and per username (0 disables)"},
	{Name: "login_rate_window", Default: "1m", Desc: "Login throttling window (e.g., 1m, 30s)"},

	{Name: "require_known_admin", Default: true, Desc: "Reject uploads addressed to a username that is not an admin"},

	// Audit logging settings
	{Name: "audit_log_auth", Default: "all", Desc: "Auth event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_log_admin", Default: "all", Desc: "Admin event logging: 'all' (db+log), 'db', 'log', or 'off'"},

	// Admin bootstrap
	{Name: "seed_admin_username", Default: "", Desc: "Username of an admin account to create on startup if missing"},
	{Name: "seed_admin_password", Default: "", Desc: "Password for the seeded admin account"},

	// Timeouts
	{Name: "timeout_short", Default: "5s", Desc: "Timeout for single-document DB operations"},
	{Name: "timeout_medium", Default: "10s", Desc: "Timeout for list queries and assignment decisions"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig merges flags > env > files > defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "ASSIGNPORTAL", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		JWTSecret: appValues.String("jwt_secret"),
		JWTIssuer: appValues.String("jwt_issuer"),

		BcryptCost: appValues.Int("bcrypt_cost"),

		LoginRateLimit:  appValues.Int("login_rate_limit"),
		LoginRateWindow: appValues.Duration("login_rate_window", time.Minute),

		RequireKnownAdmin: appValues.Bool("require_known_admin"),

		AuditLogAuth:  appValues.String("audit_log_auth"),
		AuditLogAdmin: appValues.String("audit_log_admin"),

		SeedAdminUsername: appValues.String("seed_admin_username"),
		SeedAdminPassword: appValues.String("seed_admin_password"),

		TimeoutShort:  appValues.Duration("timeout_short", 5*time.Second),
		TimeoutMedium: appValues.Duration("timeout_medium", 10*time.Second),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	return validateAppConfig(coreCfg.Env, appCfg)
}

func validateAppConfig(env string, appCfg AppConfig) error {
	var errs []error

	if appCfg.MongoDatabase == "" {
		errs = append(errs, errors.New("mongo_database must be set"))
	}
	if appCfg.MongoMinPoolSize > appCfg.MongoMaxPoolSize {
		errs = append(errs, fmt.Errorf("mongo_min_pool_size (%d) exceeds mongo_max_pool_size (%d)",
			appCfg.MongoMinPoolSize, appCfg.MongoMaxPoolSize))
	}
	if appCfg.JWTSecret == "" {
		errs = append(errs, errors.New("jwt_secret must be set"))
	} else if env == "prod" && appCfg.JWTSecret == devJWTSecret {
		errs = append(errs, errors.New("jwt_secret must be changed from the development default in prod"))
	}
	if appCfg.BcryptCost < bcrypt.MinCost || appCfg.BcryptCost > bcrypt.MaxCost {
		errs = append(errs, fmt.Errorf("bcrypt_cost must be between %d and %d, got %d",
			bcrypt.MinCost, bcrypt.MaxCost, appCfg.BcryptCost))
	}
	if appCfg.LoginRateLimit > 0 && appCfg.LoginRateWindow <= 0 {
		errs = append(errs, errors.New("login_rate_window must be positive when login_rate_limit is set"))
	}
	if !auditlog.ValidMode(appCfg.AuditLogAuth) {
		errs = append(errs, fmt.Errorf("audit_log_auth: unknown mode %q", appCfg.AuditLogAuth))
	}
	if !auditlog.ValidMode(appCfg.AuditLogAdmin) {
		errs = append(errs, fmt.Errorf("audit_log_admin: unknown mode %q", appCfg.AuditLogAdmin))
	}
	if (appCfg.SeedAdminUsername == "") != (appCfg.SeedAdminPassword == "") {
		errs = append(errs, errors.New("seed_admin_username and seed_admin_password must be set together"))
	}
	if len(appCfg.SeedAdminPassword) > credentials.MaxPasswordBytes {
		errs = append(errs, fmt.Errorf("seed_admin_password must be at most %d bytes", credentials.MaxPasswordBytes))
	}

	return errors.Join(errs...)
}
