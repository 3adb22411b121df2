// internals/features/analytics/risk/repository/risk_repository.go
package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	academicModel "kampusku_backend/internals/features/academics/model"
	"kampusku_backend/internals/features/analytics/risk/model"
)

type RiskRepository struct {
	DB *gorm.DB
}

func NewRiskRepository(db *gorm.DB) *RiskRepository {
	return &RiskRepository{DB: db}
}

func (r *RiskRepository) FindStudent(ctx context.Context, studentID uuid.UUID) (*academicModel.StudentModel, error) {
	var s academicModel.StudentModel
	if err := r.DB.WithContext(ctx).
		Where("student_id = ?", studentID).
		Take(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *RiskRepository) ListActiveStudentIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.DB.WithContext(ctx).
		Model(&academicModel.StudentModel{}).
		Where("student_is_active = ?", true).
		Order("student_created_at ASC").
		Pluck("student_id", &ids).Error
	return ids, err
}

// ListApprovedGrades returns approved grades, newest exam first.
func (r *RiskRepository) ListApprovedGrades(ctx context.Context, studentID uuid.UUID) ([]academicModel.GradeModel, error) {
	var rows []academicModel.GradeModel
	err := r.DB.WithContext(ctx).
		Where("grade_student_id = ? AND grade_status = ?", studentID, academicModel.GradeStatusApproved).
		Order("grade_exam_date DESC").
		Find(&rows).Error
	return rows, err
}

func (r *RiskRepository) ListAttendance(ctx context.Context, studentID uuid.UUID) ([]academicModel.AttendanceModel, error) {
	var rows []academicModel.AttendanceModel
	err := r.DB.WithContext(ctx).
		Where("attendance_student_id = ?", studentID).
		Order("attendance_date ASC").
		Find(&rows).Error
	return rows, err
}

// HasActivitySince: any grade or attendance row created after since.
func (r *RiskRepository) HasActivitySince(ctx context.Context, studentID uuid.UUID, since time.Time) (bool, error) {
	var exists bool
	err := r.DB.WithContext(ctx).Raw(`
		SELECT EXISTS (
			SELECT 1 FROM grades WHERE grade_student_id = ? AND grade_created_at >= ?
		) OR EXISTS (
			SELECT 1 FROM attendances WHERE attendance_student_id = ? AND attendance_created_at >= ?
		)
	`, studentID, since, studentID, since).Scan(&exists).Error
	return exists, err
}

// UpsertRiskScore replaces the student's live row (unique on student id).
func (r *RiskRepository) UpsertRiskScore(ctx context.Context, row *model.StudentRiskScoreModel) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "student_risk_score_student_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"student_risk_score_overall",
				"student_risk_score_level",
				"student_risk_score_grade_factor",
				"student_risk_score_attendance_factor",
				"student_risk_score_trend_factor",
				"student_risk_score_engagement_factor",
				"student_risk_score_absence_run_factor",
				"student_risk_score_failed_course_factor",
				"student_risk_score_risk_factors",
				"student_risk_score_factor_details",
				"student_risk_score_recommendations",
				"student_risk_score_calculated_at",
				"student_risk_score_updated_at",
			}),
		}).Create(row).Error
	})
}

func (r *RiskRepository) FindRiskScore(ctx context.Context, studentID uuid.UUID) (*model.StudentRiskScoreModel, error) {
	var row model.StudentRiskScoreModel
	if err := r.DB.WithContext(ctx).
		Where("student_risk_score_student_id = ?", studentID).
		Take(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *RiskRepository) ListRiskScores(ctx context.Context, f model.RiskScoreFilter) ([]model.StudentRiskScoreModel, int64, error) {
	q := r.DB.WithContext(ctx).Model(&model.StudentRiskScoreModel{})

	if f.Level != "" {
		q = q.Where("student_risk_score_level = ?", f.Level)
	}
	if f.MinScore != nil {
		q = q.Where("student_risk_score_overall >= ?", *f.MinScore)
	}
	if f.FacultyID != nil || f.ProgramID != nil {
		q = q.Joins("JOIN students ON students.student_id = student_risk_scores.student_risk_score_student_id")
		if f.FacultyID != nil {
			q = q.Where("students.student_faculty_id = ?", *f.FacultyID)
		}
		if f.ProgramID != nil {
			q = q.Where("students.student_program_id = ?", *f.ProgramID)
		}
	}

	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []model.StudentRiskScoreModel
	page := q.Select("student_risk_scores.*")
	if f.Limit > 0 {
		page = page.Limit(f.Limit).Offset(f.Offset)
	}
	if err := page.
		Order("student_risk_score_overall DESC").
		Order("student_risk_score_calculated_at DESC").
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *RiskRepository) CountByLevel(ctx context.Context) (map[model.RiskLevel]int64, error) {
	type row struct {
		Level model.RiskLevel `gorm:"column:student_risk_score_level"`
		Total int64           `gorm:"column:total"`
	}
	var rows []row
	if err := r.DB.WithContext(ctx).
		Model(&model.StudentRiskScoreModel{}).
		Select("student_risk_score_level, COUNT(*) AS total").
		Group("student_risk_score_level").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	out := make(map[model.RiskLevel]int64, len(rows))
	for _, it := range rows {
		out[it.Level] = it.Total
	}
	return out, nil
}

func (r *RiskRepository) ListScoresAtOrAbove(ctx context.Context, minScore int) ([]model.StudentRiskScoreModel, error) {
	var rows []model.StudentRiskScoreModel
	err := r.DB.WithContext(ctx).
		Where("student_risk_score_overall >= ?", minScore).
		Order("student_risk_score_overall DESC").
		Find(&rows).Error
	return rows, err
}
