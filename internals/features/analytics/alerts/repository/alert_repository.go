// internals/features/analytics/alerts/repository/alert_repository.go
package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	academicModel "kampusku_backend/internals/features/academics/model"
	"kampusku_backend/internals/features/analytics/alerts/model"
	riskModel "kampusku_backend/internals/features/analytics/risk/model"
	snapshotModel "kampusku_backend/internals/features/analytics/snapshots/model"
)

type AlertRepository struct {
	DB *gorm.DB
}

func NewAlertRepository(db *gorm.DB) *AlertRepository {
	return &AlertRepository{DB: db}
}

func (r *AlertRepository) FindStudent(ctx context.Context, studentID uuid.UUID) (*academicModel.StudentModel, error) {
	var s academicModel.StudentModel
	if err := r.DB.WithContext(ctx).Where("student_id = ?", studentID).Take(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *AlertRepository) FindFaculty(ctx context.Context, facultyID uuid.UUID) (*academicModel.FacultyModel, error) {
	var f academicModel.FacultyModel
	if err := r.DB.WithContext(ctx).Where("faculty_id = ?", facultyID).Take(&f).Error; err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *AlertRepository) FindRiskScore(ctx context.Context, studentID uuid.UUID) (*riskModel.StudentRiskScoreModel, error) {
	var row riskModel.StudentRiskScoreModel
	if err := r.DB.WithContext(ctx).
		Where("student_risk_score_student_id = ?", studentID).
		Take(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// MaxConsecutiveAbsences is the worst run across the student's courses, 0 without stats.
func (r *AlertRepository) MaxConsecutiveAbsences(ctx context.Context, studentID uuid.UUID) (int, error) {
	var worst int
	err := r.DB.WithContext(ctx).
		Model(&snapshotModel.AttendanceStatsModel{}).
		Where("attendance_stats_student_id = ?", studentID).
		Select("COALESCE(MAX(attendance_stats_max_consecutive_absences), 0)").
		Scan(&worst).Error
	return worst, err
}

func (r *AlertRepository) ListFacultyUserIDsByRole(ctx context.Context, facultyID uuid.UUID, role string) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.DB.WithContext(ctx).
		Model(&academicModel.ProfessorModel{}).
		Where("professor_faculty_id = ? AND professor_role = ?", facultyID, role).
		Distinct().
		Pluck("professor_user_id", &ids).Error
	return ids, err
}

// ListProgramProfessorUserIDs: professors assigned to any course of the program.
func (r *AlertRepository) ListProgramProfessorUserIDs(ctx context.Context, programID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.DB.WithContext(ctx).
		Table("courses").
		Joins("JOIN professors ON professors.professor_id = courses.course_professor_id").
		Where("courses.course_program_id = ?", programID).
		Distinct().
		Pluck("professors.professor_user_id", &ids).Error
	return ids, err
}

func (r *AlertRepository) ExistsAlertSince(ctx context.Context, studentID uuid.UUID, alertType string, since time.Time) (bool, error) {
	var n int64
	err := r.DB.WithContext(ctx).
		Model(&model.RiskAlertModel{}).
		Where("risk_alert_student_id = ? AND risk_alert_type = ? AND risk_alert_created_at >= ?", studentID, alertType, since).
		Count(&n).Error
	return n > 0, err
}

func (r *AlertRepository) CreateAlert(ctx context.Context, row *model.RiskAlertModel) error {
	return r.DB.WithContext(ctx).Create(row).Error
}

func (r *AlertRepository) FindAlert(ctx context.Context, alertID uuid.UUID) (*model.RiskAlertModel, error) {
	var row model.RiskAlertModel
	if err := r.DB.WithContext(ctx).Where("risk_alert_id = ?", alertID).Take(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *AlertRepository) SaveAlert(ctx context.Context, row *model.RiskAlertModel) error {
	return r.DB.WithContext(ctx).
		Model(&model.RiskAlertModel{}).
		Where("risk_alert_id = ?", row.RiskAlertID).
		Updates(map[string]any{
			"risk_alert_is_acknowledged":     row.RiskAlertIsAcknowledged,
			"risk_alert_acknowledged_by":     row.RiskAlertAcknowledgedBy,
			"risk_alert_acknowledged_at":     row.RiskAlertAcknowledgedAt,
			"risk_alert_intervention_notes":  row.RiskAlertInterventionNotes,
			"risk_alert_intervention_status": row.RiskAlertInterventionStatus,
			"risk_alert_updated_at":          row.RiskAlertUpdatedAt,
		}).Error
}

func (r *AlertRepository) ListAlerts(ctx context.Context, f model.RiskAlertFilter) ([]model.RiskAlertModel, int64, error) {
	q := r.DB.WithContext(ctx).Model(&model.RiskAlertModel{})

	if f.StudentID != nil {
		q = q.Where("risk_alert_student_id = ?", *f.StudentID)
	}
	if f.Level != "" {
		q = q.Where("risk_alert_level = ?", f.Level)
	}
	if f.Type != "" {
		q = q.Where("risk_alert_type = ?", f.Type)
	}
	if f.Acknowledged != nil {
		q = q.Where("risk_alert_is_acknowledged = ?", *f.Acknowledged)
	}

	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := q
	if f.Limit > 0 {
		page = page.Limit(f.Limit).Offset(f.Offset)
	}
	var rows []model.RiskAlertModel
	if err := page.Order("risk_alert_created_at DESC").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}
