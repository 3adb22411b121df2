package database

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"kampusku_backend/internals/configs"
	alertModel "kampusku_backend/internals/features/analytics/alerts/model"
	riskModel "kampusku_backend/internals/features/analytics/risk/model"
	snapshotModel "kampusku_backend/internals/features/analytics/snapshots/model"
	notifModel "kampusku_backend/internals/features/home/notifications/model"
)

func ConnectDB(cfg configs.DBConfig, log *zap.Logger) (*gorm.DB, error) {
	log.Info("🔌 Connecting to PostgreSQL...", zap.String("host", cfg.Host), zap.String("db", cfg.Name))

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  cfg.DSN(),
		PreferSimpleProtocol: true, // PgBouncer transaction pooling
	}), &gorm.Config{
		Logger: configs.NewGormLogger(log),
	})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	log.Info("✅ DB connected.")
	return db, nil
}

func TunePool(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxIdleTime(60 * time.Second)
	sqlDB.SetConnMaxLifetime(10 * time.Minute)
	return nil
}

// Migrate creates the tables owned by the analytics core. The academic
// tables belong to the CRUD service and are only read here.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&riskModel.StudentRiskScoreModel{},
		&alertModel.RiskAlertModel{},
		&snapshotModel.DailySnapshotModel{},
		&snapshotModel.GradeSnapshotModel{},
		&snapshotModel.AttendanceStatsModel{},
		&notifModel.UserNotificationModel{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	// NULL faculty/program is a scope of its own, so plain UNIQUE is not enough.
	return db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS uq_daily_snapshot_scope ON daily_snapshots (
			daily_snapshot_date,
			COALESCE(daily_snapshot_faculty_id, '00000000-0000-0000-0000-000000000000'::uuid),
			COALESCE(daily_snapshot_program_id, '00000000-0000-0000-0000-000000000000'::uuid)
		)`).Error
}

func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
