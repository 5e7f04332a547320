// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	userstore "github.com/dalemusser/assignportal/internal/app/store/users"
	"github.com/dalemusser/assignportal/internal/app/system/credentials"
	"github.com/dalemusser/assignportal/internal/app/system/timeouts"
	"github.com/dalemusser/assignportal/internal/domain/models"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	timeouts.Configure(timeouts.Config{
		Short:  appCfg.TimeoutShort,
		Medium: appCfg.TimeoutMedium,
	})
	cur := timeouts.Current()
	logger.Info("timeouts configured",
		zap.Duration("ping", cur.Ping),
		zap.Duration("short", cur.Short),
		zap.Duration("medium", cur.Medium))

	if appCfg.SeedAdminUsername != "" {
		if err := ensureSeedAdmin(ctx, deps, appCfg, logger); err != nil {
			return err
		}
	}
	return nil
}

// ensureSeedAdmin creates the configured admin account when it does not
// exist. An existing account is left untouched, whatever its role.
func ensureSeedAdmin(ctx context.Context, deps DBDeps, appCfg AppConfig, logger *zap.Logger) error {
	users := userstore.New(deps.MongoDatabase)

	role, found, err := users.RoleOf(ctx, appCfg.SeedAdminUsername)
	if err != nil {
		return fmt.Errorf("seed admin lookup: %w", err)
	}
	if found {
		if role != models.RoleAdmin {
			logger.Warn("seed admin username exists without admin role; leaving it unchanged",
				zap.String("username", appCfg.SeedAdminUsername),
				zap.String("role", role))
		}
		return nil
	}

	creds := credentials.New(users, appCfg.BcryptCost)
	err = creds.Register(ctx, appCfg.SeedAdminUsername, appCfg.SeedAdminPassword, models.RoleAdmin)
	if errors.Is(err, credentials.ErrConflict) {
		// Another instance won the race.
		return nil
	}
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	logger.Info("seed admin created", zap.String("username", appCfg.SeedAdminUsername))
	return nil
}
