// internals/features/analytics/jobs/service/risk_calculation_job.go
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	alertModel "kampusku_backend/internals/features/analytics/alerts/model"
	alertService "kampusku_backend/internals/features/analytics/alerts/service"
	riskModel "kampusku_backend/internals/features/analytics/risk/model"
	riskService "kampusku_backend/internals/features/analytics/risk/service"
	"kampusku_backend/internals/helpers/logger"
)

const (
	RiskCalculationJobName = "RiskCalculation"

	// AlertCheckMinScore selects which students get an alert check after recalculation.
	AlertCheckMinScore = 60
)

type RiskRecalculator interface {
	RecalculateAll(ctx context.Context) (riskService.BatchResult, error)
	ListAtOrAbove(ctx context.Context, minScore int) ([]riskModel.StudentRiskScoreModel, error)
}

type AlertChecker interface {
	CheckAndCreateAlerts(ctx context.Context, studentID uuid.UUID) ([]alertModel.RiskAlertModel, error)
}

type RiskCalculationResult struct {
	Checked        int
	AlertsCreated  int
	CheckFailed    int
	DispatchFailed int
}

// RiskCalculationJob recomputes every active student's score, then runs the
// alert check for each student at or above AlertCheckMinScore.
type RiskCalculationJob struct {
	risk   RiskRecalculator
	alerts AlertChecker
	log    *zap.Logger
}

func NewRiskCalculationJob(risk RiskRecalculator, alerts AlertChecker, log *zap.Logger) *RiskCalculationJob {
	return &RiskCalculationJob{risk: risk, alerts: alerts, log: logger.OrNop(log).Named("jobs")}
}

func (j *RiskCalculationJob) Name() string { return RiskCalculationJobName }

func (j *RiskCalculationJob) Interval() time.Duration { return 7 * 24 * time.Hour }

func (j *RiskCalculationJob) Execute(ctx context.Context) error {
	_, err := j.Run(ctx)
	return err
}

// Run is Execute with the per-student tally.
func (j *RiskCalculationJob) Run(ctx context.Context) (RiskCalculationResult, error) {
	var res RiskCalculationResult

	batch, err := j.risk.RecalculateAll(ctx)
	if err != nil {
		return res, fmt.Errorf("recalculate: %w", err)
	}

	atRisk, err := j.risk.ListAtOrAbove(ctx, AlertCheckMinScore)
	if err != nil {
		return res, fmt.Errorf("list at-risk students: %w", err)
	}

	for _, sc := range atRisk {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		studentID := sc.StudentRiskScoreStudentID
		res.Checked++

		created, err := j.alerts.CheckAndCreateAlerts(ctx, studentID)
		res.AlertsCreated += len(created)
		if err == nil {
			continue
		}

		if errors.Is(err, alertService.ErrDispatchFailed) {
			res.DispatchFailed++
			j.log.Error("[JOB] alert created but notification failed",
				zap.String("student_id", studentID.String()),
				zap.Error(err),
			)
			continue
		}
		res.CheckFailed++
		j.log.Warn("[JOB] alert check failed",
			zap.String("student_id", studentID.String()),
			zap.Error(err),
		)
	}

	j.log.Info("[JOB] risk calculation done",
		zap.Int("scored", batch.Succeeded),
		zap.Int("score_failures", batch.Failed),
		zap.Int("alert_checks", res.Checked),
		zap.Int("alerts_created", res.AlertsCreated),
		zap.Int("check_failures", res.CheckFailed),
		zap.Int("dispatch_failures", res.DispatchFailed),
	)
	return res, nil
}
