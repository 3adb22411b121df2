// internals/features/analytics/jobs/service/daily_snapshot_job.go
package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	snapshotService "kampusku_backend/internals/features/analytics/snapshots/service"
	"kampusku_backend/internals/helpers/logger"
)

const DailySnapshotJobName = "DailySnapshot"

type SnapshotBuilder interface {
	CreateDailySnapshots(ctx context.Context) (snapshotService.DailyResult, error)
	RefreshStudentAggregates(ctx context.Context) (snapshotService.StudentAggregateResult, error)
}

// DailySnapshotJob records today's university/faculty/program snapshots and
// refreshes per-student grade and attendance aggregates.
type DailySnapshotJob struct {
	snapshots SnapshotBuilder
	log       *zap.Logger
}

func NewDailySnapshotJob(snapshots SnapshotBuilder, log *zap.Logger) *DailySnapshotJob {
	return &DailySnapshotJob{snapshots: snapshots, log: logger.OrNop(log).Named("jobs")}
}

func (j *DailySnapshotJob) Name() string { return DailySnapshotJobName }

func (j *DailySnapshotJob) Interval() time.Duration { return 24 * time.Hour }

func (j *DailySnapshotJob) Execute(ctx context.Context) error {
	daily, err := j.snapshots.CreateDailySnapshots(ctx)
	if err != nil {
		return fmt.Errorf("daily snapshots: %w", err)
	}

	agg, err := j.snapshots.RefreshStudentAggregates(ctx)
	if err != nil {
		return fmt.Errorf("student aggregates: %w", err)
	}

	j.log.Info("[JOB] daily snapshot done",
		zap.Int("snapshots_created", daily.Created),
		zap.Int("snapshots_skipped", daily.Skipped),
		zap.Int("students", agg.Students),
		zap.Int("students_failed", agg.Failed),
	)
	return nil
}
