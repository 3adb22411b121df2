// internals/features/analytics/risk/service/risk_scoring_service.go
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	academicModel "kampusku_backend/internals/features/academics/model"
	"kampusku_backend/internals/features/analytics/risk/model"
	"kampusku_backend/internals/features/analytics/risk/scoring"
	"kampusku_backend/internals/helpers/clock"
	"kampusku_backend/internals/helpers/logger"
	"kampusku_backend/internals/metrics"
)

var ErrStudentNotFound = errors.New("student not found")
var ErrRiskScoreNotFound = errors.New("risk score not found")

// Repository is the data store the scoring service reads from and writes to.
// Lookups return gorm.ErrRecordNotFound when the row is missing.
type Repository interface {
	FindStudent(ctx context.Context, studentID uuid.UUID) (*academicModel.StudentModel, error)
	ListActiveStudentIDs(ctx context.Context) ([]uuid.UUID, error)
	ListApprovedGrades(ctx context.Context, studentID uuid.UUID) ([]academicModel.GradeModel, error)
	ListAttendance(ctx context.Context, studentID uuid.UUID) ([]academicModel.AttendanceModel, error)
	HasActivitySince(ctx context.Context, studentID uuid.UUID, since time.Time) (bool, error)

	UpsertRiskScore(ctx context.Context, row *model.StudentRiskScoreModel) error
	FindRiskScore(ctx context.Context, studentID uuid.UUID) (*model.StudentRiskScoreModel, error)
	ListRiskScores(ctx context.Context, f model.RiskScoreFilter) ([]model.StudentRiskScoreModel, int64, error)
	CountByLevel(ctx context.Context) (map[model.RiskLevel]int64, error)
	ListScoresAtOrAbove(ctx context.Context, minScore int) ([]model.StudentRiskScoreModel, error)
}

type RiskScoringService struct {
	repo  Repository
	clock clock.Clock
	log   *zap.Logger
}

func NewRiskScoringService(repo Repository, clk clock.Clock, log *zap.Logger) *RiskScoringService {
	return &RiskScoringService{
		repo:  repo,
		clock: clock.OrSystem(clk),
		log:   logger.OrNop(log).Named("risk"),
	}
}

// Assessment is the in-memory result of one extraction + aggregation.
type Assessment struct {
	StudentID       uuid.UUID
	Factors         scoring.Factors
	Overall         int
	Level           model.RiskLevel
	Explanations    []string
	Recommendations []string
	CalculatedAt    time.Time
}

// Assess extracts and aggregates without persisting.
func (s *RiskScoringService) Assess(ctx context.Context, studentID uuid.UUID) (*Assessment, error) {
	if _, err := s.repo.FindStudent(ctx, studentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		return nil, fmt.Errorf("load student: %w", err)
	}

	grades, err := s.repo.ListApprovedGrades(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("load grades: %w", err)
	}
	attendance, err := s.repo.ListAttendance(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("load attendance: %w", err)
	}

	now := s.clock.Now()
	active, err := s.repo.HasActivitySince(ctx, studentID, now.Add(-scoring.EngagementWindow))
	if err != nil {
		return nil, fmt.Errorf("load activity: %w", err)
	}

	in := scoring.Input{
		ApprovedGrades:    make([]scoring.GradeInput, 0, len(grades)),
		Attendance:        make([]scoring.AttendanceInput, 0, len(attendance)),
		HasRecentActivity: active,
	}
	for _, g := range grades {
		in.ApprovedGrades = append(in.ApprovedGrades, scoring.GradeInput{Value: g.GradeValue, ExamDate: g.GradeExamDate})
	}
	for _, a := range attendance {
		in.Attendance = append(in.Attendance, scoring.AttendanceInput{
			Date:     a.AttendanceDate,
			Attended: a.AttendanceStatus.Attended(),
			Absent:   a.AttendanceStatus == academicModel.AttendanceAbsent,
		})
	}

	factors := scoring.Extract(in)
	overall := scoring.Aggregate(factors)
	level := scoring.LevelFor(overall)

	return &Assessment{
		StudentID:       studentID,
		Factors:         factors,
		Overall:         overall,
		Level:           level,
		Explanations:    scoring.Explanations(factors),
		Recommendations: scoring.Recommendations(level),
		CalculatedAt:    now,
	}, nil
}

// CalculateForStudent recomputes and upserts the student's score row.
func (s *RiskScoringService) CalculateForStudent(ctx context.Context, studentID uuid.UUID) (*model.StudentRiskScoreModel, error) {
	a, err := s.Assess(ctx, studentID)
	if err != nil {
		return nil, err
	}

	row, err := a.toModel()
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpsertRiskScore(ctx, row); err != nil {
		return nil, fmt.Errorf("save risk score: %w", err)
	}

	metrics.RiskScoresComputed.WithLabelValues(string(row.StudentRiskScoreLevel)).Inc()
	s.log.Debug("[RISK] score updated",
		zap.String("student_id", studentID.String()),
		zap.Int("score", row.StudentRiskScoreOverall),
		zap.String("level", string(row.StudentRiskScoreLevel)),
	)
	return row, nil
}

type StudentFailure struct {
	StudentID uuid.UUID `json:"student_id"`
	Error     string    `json:"error"`
}

type BatchResult struct {
	Total     int              `json:"total"`
	Succeeded int              `json:"succeeded"`
	Failed    int              `json:"failed"`
	Failures  []StudentFailure `json:"failures,omitempty"`
}

// RecalculateAll walks every active student sequentially. Each student is
// persisted on its own; a failure is logged and the loop continues.
func (s *RiskScoringService) RecalculateAll(ctx context.Context) (BatchResult, error) {
	var res BatchResult

	ids, err := s.repo.ListActiveStudentIDs(ctx)
	if err != nil {
		return res, fmt.Errorf("list active students: %w", err)
	}
	res.Total = len(ids)

	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if _, err := s.CalculateForStudent(ctx, id); err != nil {
			res.Failed++
			res.Failures = append(res.Failures, StudentFailure{StudentID: id, Error: err.Error()})
			metrics.RiskCalculationFailures.Inc()
			s.log.Warn("[RISK] calculation failed", zap.String("student_id", id.String()), zap.Error(err))
			continue
		}
		res.Succeeded++
	}

	s.log.Info("[RISK] bulk recalculation finished",
		zap.Int("total", res.Total),
		zap.Int("succeeded", res.Succeeded),
		zap.Int("failed", res.Failed),
	)
	return res, nil
}

func (s *RiskScoringService) GetByStudent(ctx context.Context, studentID uuid.UUID) (*model.StudentRiskScoreModel, error) {
	row, err := s.repo.FindRiskScore(ctx, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRiskScoreNotFound
		}
		return nil, err
	}
	return row, nil
}

func (s *RiskScoringService) List(ctx context.Context, f model.RiskScoreFilter) ([]model.StudentRiskScoreModel, int64, error) {
	return s.repo.ListRiskScores(ctx, f)
}

func (s *RiskScoringService) ListAtOrAbove(ctx context.Context, minScore int) ([]model.StudentRiskScoreModel, error) {
	return s.repo.ListScoresAtOrAbove(ctx, minScore)
}

// LevelSummary counts current scores per level; missing levels are reported as 0.
func (s *RiskScoringService) LevelSummary(ctx context.Context) (map[model.RiskLevel]int64, error) {
	counts, err := s.repo.CountByLevel(ctx)
	if err != nil {
		return nil, err
	}
	out := map[model.RiskLevel]int64{
		model.RiskLevelLow:      0,
		model.RiskLevelMedium:   0,
		model.RiskLevelHigh:     0,
		model.RiskLevelCritical: 0,
	}
	for lvl, n := range counts {
		out[lvl] = n
	}
	return out, nil
}

func (a *Assessment) toModel() (*model.StudentRiskScoreModel, error) {
	explanations, err := json.Marshal(a.Explanations)
	if err != nil {
		return nil, fmt.Errorf("encode risk factors: %w", err)
	}
	details, err := json.Marshal(scoring.Details(a.Factors))
	if err != nil {
		return nil, fmt.Errorf("encode factor details: %w", err)
	}

	return &model.StudentRiskScoreModel{
		StudentRiskScoreStudentID:          a.StudentID,
		StudentRiskScoreOverall:            a.Overall,
		StudentRiskScoreLevel:              a.Level,
		StudentRiskScoreGradeFactor:        a.Factors.CurrentGrade.Score,
		StudentRiskScoreAttendanceFactor:   a.Factors.Attendance.Score,
		StudentRiskScoreTrendFactor:        a.Factors.GradeTrend.Score,
		StudentRiskScoreEngagementFactor:   a.Factors.Engagement.Score,
		StudentRiskScoreAbsenceRunFactor:   a.Factors.ConsecutiveAbsences.Score,
		StudentRiskScoreFailedCourseFactor: a.Factors.FailedCourses.Score,
		StudentRiskScoreRiskFactors:        datatypes.JSON(explanations),
		StudentRiskScoreFactorDetails:      datatypes.JSON(details),
		StudentRiskScoreRecommendations:    a.Recommendations,
		StudentRiskScoreCalculatedAt:       a.CalculatedAt,
	}, nil
}
