// file: internals/route/index.go
package routes

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"kampusku_backend/internals/configs"
	alertRoute "kampusku_backend/internals/features/analytics/alerts/route"
	alertService "kampusku_backend/internals/features/analytics/alerts/service"
	jobsRoute "kampusku_backend/internals/features/analytics/jobs/route"
	riskRoute "kampusku_backend/internals/features/analytics/risk/route"
	riskService "kampusku_backend/internals/features/analytics/risk/service"
	snapshotRoute "kampusku_backend/internals/features/analytics/snapshots/route"
	snapshotService "kampusku_backend/internals/features/analytics/snapshots/service"
	notifRoute "kampusku_backend/internals/features/home/notifications/route"
	notifService "kampusku_backend/internals/features/home/notifications/service"
	authMiddleware "kampusku_backend/internals/middlewares/auth"
	"kampusku_backend/internals/scheduler"
)

// Deps is everything the HTTP layer hands to feature routes.
type Deps struct {
	Config *configs.Config
	DB     *gorm.DB
	Redis  *redis.Client
	Log    *zap.Logger

	Risk          *riskService.RiskScoringService
	Alerts        *alertService.AlertService
	Snapshots     *snapshotService.SnapshotService
	Notifications *notifService.NotificationService
	Runner        *scheduler.Runner
}

var startTime time.Time

func SetupRoutes(app *fiber.App, d Deps) {
	startTime = time.Now()

	BaseRoutes(app, d)

	jwt := authMiddleware.AuthJWT(authMiddleware.AuthJWTOpts{
		Secret:              d.Config.JWTSecret,
		AllowCookieFallback: true,
		IsRevoked:           revocationChecker(d.Redis),
		Log:                 d.Log,
	})

	// ===================== PRIVATE (USER) =====================
	d.Log.Info("[INFO] Setting up USER group...")
	user := app.Group("/api/u", jwt)
	notifRoute.NotificationUserRoutes(user, d.Notifications, d.Log)

	// ===================== ADMIN (staff) =====================
	d.Log.Info("[INFO] Setting up ADMIN group (Auth + staff roles)...")
	admin := app.Group("/api/a", jwt, authMiddleware.StaffOnly())

	riskRoute.RiskScoreAdminRoutes(admin, d.Risk, d.Log)
	alertRoute.RiskAlertAdminRoutes(admin, d.Alerts, d.Log)
	snapshotRoute.SnapshotAdminRoutes(admin, d.Snapshots, d.Log)
	jobsRoute.JobsAdminRoutes(admin, d.Runner, d.Log)
}

// revocationChecker looks up "token_revoked:<token>" in redis; nil without redis.
func revocationChecker(rdb *redis.Client) func(ctx context.Context, raw string) (bool, error) {
	if rdb == nil {
		return nil
	}
	return func(ctx context.Context, raw string) (bool, error) {
		n, err := rdb.Exists(ctx, "token_revoked:"+raw).Result()
		if err != nil {
			return false, err
		}
		return n > 0, nil
	}
}
