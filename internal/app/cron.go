package app

import (
	"context"
	"fmt"
	"time"

	"github.com/rescue-chip/core/internal/models"
	"github.com/rescue-chip/core/internal/modules/device"
	pkgcron "github.com/rescue-chip/core/internal/pkg/cron"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// registerCronJobs registers all scheduled background jobs. Scan access
// logs are append-only audit rows and are deliberately never cleaned up.
func registerCronJobs(sched *pkgcron.Scheduler, db *gorm.DB, logger *zap.Logger) {
	cronLogger := logger.Named("cron")
	deviceStore := device.NewStore(db)

	sched.Register(pkgcron.Job{
		Name:        "clear_expired_device_tokens",
		Description: "Limpia tokens de verificación de dispositivo expirados",
		Interval:    time.Hour,
		Fn: func(ctx context.Context) error {
			n, err := deviceStore.ClearExpiredTokens(ctx)
			if err != nil {
				cronLogger.Warn("failed to clear expired verification tokens", zap.Error(err))
				return err
			}
			if n > 0 {
				cronLogger.Info(fmt.Sprintf("cleared %d expired verification tokens", n))
			}
			return nil
		},
	})

	sched.Register(pkgcron.Job{
		Name:        "purge_expired_auth_sessions",
		Description: "Elimina sesiones de cuenta expiradas hace más de 30 días",
		Interval:    24 * time.Hour,
		Fn: func(ctx context.Context) error {
			cutoff := time.Now().AddDate(0, 0, -30)
			result := db.WithContext(ctx).Unscoped().
				Where("expires_at < ?", cutoff).
				Delete(&models.UserSession{})
			if result.Error != nil {
				cronLogger.Warn("failed to purge expired auth sessions", zap.Error(result.Error))
				return result.Error
			}
			if result.RowsAffected > 0 {
				cronLogger.Info(fmt.Sprintf("purged %d expired auth sessions", result.RowsAffected))
			}
			return nil
		},
	})
}
