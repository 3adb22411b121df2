// internals/features/analytics/snapshots/service/snapshot_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"go.uber.org/zap"
	"gorm.io/gorm"

	academicModel "kampusku_backend/internals/features/academics/model"
	"kampusku_backend/internals/features/analytics/snapshots/model"
	"kampusku_backend/internals/helpers/clock"
	"kampusku_backend/internals/helpers/logger"
)

type Repository interface {
	ListFaculties(ctx context.Context) ([]academicModel.FacultyModel, error)
	ListPrograms(ctx context.Context) ([]academicModel.ProgramModel, error)
	ScopeStats(ctx context.Context, facultyID, programID *uuid.UUID) (model.ScopeStats, error)
	DailySnapshotExists(ctx context.Context, date time.Time, facultyID, programID *uuid.UUID) (bool, error)
	CreateDailySnapshot(ctx context.Context, row *model.DailySnapshotModel) error
	ListDailySnapshots(ctx context.Context, f model.DailySnapshotFilter) ([]model.DailySnapshotModel, int64, error)

	ListActiveStudentIDs(ctx context.Context) ([]uuid.UUID, error)
	ListGradeRecords(ctx context.Context, studentID uuid.UUID) ([]model.GradeRecord, error)
	ListAttendance(ctx context.Context, studentID uuid.UUID) ([]academicModel.AttendanceModel, error)
	UpsertGradeSnapshots(ctx context.Context, rows []model.GradeSnapshotModel) error
	UpsertAttendanceStats(ctx context.Context, rows []model.AttendanceStatsModel) error
	ListGradeSnapshots(ctx context.Context, studentID uuid.UUID) ([]model.GradeSnapshotModel, error)
	ListAttendanceStats(ctx context.Context, studentID uuid.UUID) ([]model.AttendanceStatsModel, error)
}

type SnapshotService struct {
	repo  Repository
	clock clock.Clock
	log   *zap.Logger
}

func NewSnapshotService(repo Repository, clk clock.Clock, log *zap.Logger) *SnapshotService {
	return &SnapshotService{
		repo:  repo,
		clock: clock.OrSystem(clk),
		log:   logger.OrNop(log).Named("snapshots"),
	}
}

type DailyResult struct {
	Created int `json:"created"`
	Skipped int `json:"skipped"`
}

type StudentAggregateResult struct {
	Students int `json:"students"`
	Failed   int `json:"failed"`
}

type scope struct {
	facultyID *uuid.UUID
	programID *uuid.UUID
}

// CreateDailySnapshots writes today's university, faculty and program rows.
// Rows that already exist for today are left untouched.
func (s *SnapshotService) CreateDailySnapshots(ctx context.Context) (DailyResult, error) {
	var res DailyResult
	today := Today(s.clock.Now())

	faculties, err := s.repo.ListFaculties(ctx)
	if err != nil {
		return res, fmt.Errorf("list faculties: %w", err)
	}
	programs, err := s.repo.ListPrograms(ctx)
	if err != nil {
		return res, fmt.Errorf("list programs: %w", err)
	}

	scopes := make([]scope, 0, 1+len(faculties)+len(programs))
	scopes = append(scopes, scope{})
	for i := range faculties {
		scopes = append(scopes, scope{facultyID: &faculties[i].FacultyID})
	}
	for i := range programs {
		scopes = append(scopes, scope{facultyID: &programs[i].ProgramFacultyID, programID: &programs[i].ProgramID})
	}

	for _, sc := range scopes {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		created, err := s.snapshotScope(ctx, today, sc)
		if err != nil {
			return res, err
		}
		if created {
			res.Created++
		} else {
			res.Skipped++
		}
	}

	s.log.Info("[SNAPSHOT] daily snapshots done",
		zap.String("date", today.Format("2006-01-02")),
		zap.Int("created", res.Created),
		zap.Int("skipped", res.Skipped),
	)
	return res, nil
}

func (s *SnapshotService) snapshotScope(ctx context.Context, date time.Time, sc scope) (bool, error) {
	exists, err := s.repo.DailySnapshotExists(ctx, date, sc.facultyID, sc.programID)
	if err != nil {
		return false, fmt.Errorf("check snapshot: %w", err)
	}
	if exists {
		return false, nil
	}

	st, err := s.repo.ScopeStats(ctx, sc.facultyID, sc.programID)
	if err != nil {
		return false, fmt.Errorf("scope stats: %w", err)
	}

	row := &model.DailySnapshotModel{
		DailySnapshotDate:            date,
		DailySnapshotFacultyID:       sc.facultyID,
		DailySnapshotProgramID:       sc.programID,
		DailySnapshotTotalStudents:   st.TotalStudents,
		DailySnapshotActiveStudents:  st.ActiveStudents,
		DailySnapshotAverageGrade:    round2(st.AverageGrade),
		DailySnapshotAttendanceRate:  round2(st.AttendanceRate),
		DailySnapshotGradesSubmitted: st.GradesSubmitted,
		DailySnapshotGradesApproved:  st.GradesApproved,
	}
	if err := s.repo.CreateDailySnapshot(ctx, row); err != nil {
		if IsUniqueViolation(err) {
			// another writer got there first
			return false, nil
		}
		return false, fmt.Errorf("save snapshot: %w", err)
	}
	return true, nil
}

// RefreshStudentAggregates rebuilds grade snapshots and attendance stats for
// every active student. A failing student is logged and skipped.
func (s *SnapshotService) RefreshStudentAggregates(ctx context.Context) (StudentAggregateResult, error) {
	var res StudentAggregateResult

	ids, err := s.repo.ListActiveStudentIDs(ctx)
	if err != nil {
		return res, fmt.Errorf("list active students: %w", err)
	}

	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		res.Students++
		if err := s.RefreshStudent(ctx, id); err != nil {
			res.Failed++
			s.log.Warn("[SNAPSHOT] student aggregates failed", zap.String("student_id", id.String()), zap.Error(err))
		}
	}

	s.log.Info("[SNAPSHOT] student aggregates done",
		zap.Int("students", res.Students),
		zap.Int("failed", res.Failed),
	)
	return res, nil
}

func (s *SnapshotService) RefreshStudent(ctx context.Context, studentID uuid.UUID) error {
	grades, err := s.repo.ListGradeRecords(ctx, studentID)
	if err != nil {
		return fmt.Errorf("load grades: %w", err)
	}
	if rows := BuildGradeSnapshots(studentID, grades); len(rows) > 0 {
		if err := s.repo.UpsertGradeSnapshots(ctx, rows); err != nil {
			return fmt.Errorf("save grade snapshots: %w", err)
		}
	}

	attendance, err := s.repo.ListAttendance(ctx, studentID)
	if err != nil {
		return fmt.Errorf("load attendance: %w", err)
	}
	if rows := BuildAttendanceStats(studentID, attendance); len(rows) > 0 {
		if err := s.repo.UpsertAttendanceStats(ctx, rows); err != nil {
			return fmt.Errorf("save attendance stats: %w", err)
		}
	}
	return nil
}

func (s *SnapshotService) ListDaily(ctx context.Context, f model.DailySnapshotFilter) ([]model.DailySnapshotModel, int64, error) {
	return s.repo.ListDailySnapshots(ctx, f)
}

func (s *SnapshotService) GradeSnapshotsFor(ctx context.Context, studentID uuid.UUID) ([]model.GradeSnapshotModel, error) {
	return s.repo.ListGradeSnapshots(ctx, studentID)
}

func (s *SnapshotService) AttendanceStatsFor(ctx context.Context, studentID uuid.UUID) ([]model.AttendanceStatsModel, error) {
	return s.repo.ListAttendanceStats(ctx, studentID)
}

// Today truncates t to its UTC calendar date.
func Today(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// IsUniqueViolation recognises 23505 from pgx, lib/pq, or gorm's translated error.
func IsUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		return pgxErr.Code == "23505"
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == "23505"
	}
	return false
}
