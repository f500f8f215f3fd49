package migrate

import (
	"context"
	"fmt"

	"github.com/packwise/packwise-backend/pkg/config"
	"github.com/packwise/packwise-backend/pkg/db"
	"github.com/packwise/packwise-backend/pkg/logger"
)

// MaybeRunDev brings the schema up automatically on boot. It is a no-op
// outside dev or when the auto-migrate flag is off; production rollouts go
// through cmd/migrate explicitly.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if !cfg.App.IsDev() || !cfg.FeatureFlags.AutoMigrate {
		return nil
	}

	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}

	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "dir": DefaultDir})
	logg.Info(ctx, "running goose migrations (dev auto-run)")

	if err := Run(ctx, sqlDB, DefaultDir, "up"); err != nil {
		return fmt.Errorf("running goose up: %w", err)
	}

	logg.Info(ctx, "goose migrations completed")
	return nil
}
