// internals/features/analytics/snapshots/repository/snapshot_repository.go
package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	academicModel "kampusku_backend/internals/features/academics/model"
	"kampusku_backend/internals/features/analytics/snapshots/model"
)

type SnapshotRepository struct {
	DB *gorm.DB
}

func NewSnapshotRepository(db *gorm.DB) *SnapshotRepository {
	return &SnapshotRepository{DB: db}
}

func (r *SnapshotRepository) ListFaculties(ctx context.Context) ([]academicModel.FacultyModel, error) {
	var rows []academicModel.FacultyModel
	err := r.DB.WithContext(ctx).Order("faculty_name ASC").Find(&rows).Error
	return rows, err
}

func (r *SnapshotRepository) ListPrograms(ctx context.Context) ([]academicModel.ProgramModel, error) {
	var rows []academicModel.ProgramModel
	err := r.DB.WithContext(ctx).Order("program_name ASC").Find(&rows).Error
	return rows, err
}

// scopeStudents narrows a query that already references the students table.
func scopeStudents(q *gorm.DB, facultyID, programID *uuid.UUID) *gorm.DB {
	if facultyID != nil {
		q = q.Where("students.student_faculty_id = ?", *facultyID)
	}
	if programID != nil {
		q = q.Where("students.student_program_id = ?", *programID)
	}
	return q
}

func (r *SnapshotRepository) ScopeStats(ctx context.Context, facultyID, programID *uuid.UUID) (model.ScopeStats, error) {
	var out model.ScopeStats
	db := r.DB.WithContext(ctx)

	var students struct {
		Total  int
		Active int
	}
	if err := scopeStudents(db.Table("students"), facultyID, programID).
		Select("COUNT(*) AS total, COUNT(*) FILTER (WHERE students.student_is_active) AS active").
		Scan(&students).Error; err != nil {
		return out, err
	}

	var grades struct {
		Average   float64
		Submitted int
		Approved  int
	}
	if err := scopeStudents(db.Table("grades").
		Joins("JOIN students ON students.student_id = grades.grade_student_id"), facultyID, programID).
		Select(`COALESCE(AVG(grades.grade_value) FILTER (WHERE grades.grade_status = ?), 0) AS average,
			COUNT(*) FILTER (WHERE grades.grade_status = ?) AS submitted,
			COUNT(*) FILTER (WHERE grades.grade_status = ?) AS approved`,
			academicModel.GradeStatusApproved, academicModel.GradeStatusSubmitted, academicModel.GradeStatusApproved).
		Scan(&grades).Error; err != nil {
		return out, err
	}

	var attendance struct {
		Rate float64
	}
	if err := scopeStudents(db.Table("attendances").
		Joins("JOIN students ON students.student_id = attendances.attendance_student_id"), facultyID, programID).
		Select(`COALESCE(100.0 * COUNT(*) FILTER (WHERE attendances.attendance_status IN ?) / NULLIF(COUNT(*), 0), 0) AS rate`,
			[]academicModel.AttendanceStatus{academicModel.AttendancePresent, academicModel.AttendanceLate}).
		Scan(&attendance).Error; err != nil {
		return out, err
	}

	out = model.ScopeStats{
		TotalStudents:   students.Total,
		ActiveStudents:  students.Active,
		AverageGrade:    grades.Average,
		AttendanceRate:  attendance.Rate,
		GradesSubmitted: grades.Submitted,
		GradesApproved:  grades.Approved,
	}
	return out, nil
}

func (r *SnapshotRepository) DailySnapshotExists(ctx context.Context, date time.Time, facultyID, programID *uuid.UUID) (bool, error) {
	var n int64
	err := r.DB.WithContext(ctx).
		Model(&model.DailySnapshotModel{}).
		Where("daily_snapshot_date = ?", date).
		Where("daily_snapshot_faculty_id IS NOT DISTINCT FROM ?", facultyID).
		Where("daily_snapshot_program_id IS NOT DISTINCT FROM ?", programID).
		Count(&n).Error
	return n > 0, err
}

func (r *SnapshotRepository) CreateDailySnapshot(ctx context.Context, row *model.DailySnapshotModel) error {
	return r.DB.WithContext(ctx).Create(row).Error
}

func (r *SnapshotRepository) ListDailySnapshots(ctx context.Context, f model.DailySnapshotFilter) ([]model.DailySnapshotModel, int64, error) {
	q := r.DB.WithContext(ctx).Model(&model.DailySnapshotModel{})
	if f.Date != nil {
		q = q.Where("daily_snapshot_date = ?", *f.Date)
	}
	if f.FacultyID != nil {
		q = q.Where("daily_snapshot_faculty_id = ?", *f.FacultyID)
	}
	if f.ProgramID != nil {
		q = q.Where("daily_snapshot_program_id = ?", *f.ProgramID)
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
	var rows []model.DailySnapshotModel
	if err := page.
		Order("daily_snapshot_date DESC").
		Order("daily_snapshot_faculty_id NULLS FIRST").
		Order("daily_snapshot_program_id NULLS FIRST").
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *SnapshotRepository) ListActiveStudentIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.DB.WithContext(ctx).
		Model(&academicModel.StudentModel{}).
		Where("student_is_active = ?", true).
		Pluck("student_id", &ids).Error
	return ids, err
}

func (r *SnapshotRepository) ListGradeRecords(ctx context.Context, studentID uuid.UUID) ([]model.GradeRecord, error) {
	var rows []model.GradeRecord
	err := r.DB.WithContext(ctx).
		Table("grades").
		Select(`grades.grade_course_id AS course_id,
			grades.grade_value AS value,
			grades.grade_status AS status,
			grades.grade_academic_year AS academic_year,
			grades.grade_semester AS semester,
			COALESCE(courses.course_credits, 0) AS credits`).
		Joins("LEFT JOIN courses ON courses.course_id = grades.grade_course_id").
		Where("grades.grade_student_id = ?", studentID).
		Scan(&rows).Error
	return rows, err
}

func (r *SnapshotRepository) ListAttendance(ctx context.Context, studentID uuid.UUID) ([]academicModel.AttendanceModel, error) {
	var rows []academicModel.AttendanceModel
	err := r.DB.WithContext(ctx).
		Where("attendance_student_id = ?", studentID).
		Order("attendance_date ASC").
		Find(&rows).Error
	return rows, err
}

func (r *SnapshotRepository) UpsertGradeSnapshots(ctx context.Context, rows []model.GradeSnapshotModel) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "grade_snapshot_student_id"},
				{Name: "grade_snapshot_academic_year"},
				{Name: "grade_snapshot_semester"},
			},
			DoUpdates: clause.AssignmentColumns([]string{
				"grade_snapshot_average_grade",
				"grade_snapshot_total_credits",
				"grade_snapshot_earned_credits",
				"grade_snapshot_approved_grades",
				"grade_snapshot_updated_at",
			}),
		}).Create(&rows).Error
	})
}

func (r *SnapshotRepository) UpsertAttendanceStats(ctx context.Context, rows []model.AttendanceStatsModel) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "attendance_stats_student_id"},
				{Name: "attendance_stats_course_id"},
			},
			DoUpdates: clause.AssignmentColumns([]string{
				"attendance_stats_total_sessions",
				"attendance_stats_present_count",
				"attendance_stats_absent_count",
				"attendance_stats_late_count",
				"attendance_stats_excused_count",
				"attendance_stats_attendance_rate",
				"attendance_stats_max_consecutive_absences",
				"attendance_stats_updated_at",
			}),
		}).Create(&rows).Error
	})
}

func (r *SnapshotRepository) ListGradeSnapshots(ctx context.Context, studentID uuid.UUID) ([]model.GradeSnapshotModel, error) {
	var rows []model.GradeSnapshotModel
	err := r.DB.WithContext(ctx).
		Where("grade_snapshot_student_id = ?", studentID).
		Order("grade_snapshot_academic_year ASC").
		Order("grade_snapshot_semester ASC").
		Find(&rows).Error
	return rows, err
}

func (r *SnapshotRepository) ListAttendanceStats(ctx context.Context, studentID uuid.UUID) ([]model.AttendanceStatsModel, error) {
	var rows []model.AttendanceStatsModel
	err := r.DB.WithContext(ctx).
		Where("attendance_stats_student_id = ?", studentID).
		Order("attendance_stats_max_consecutive_absences DESC").
		Find(&rows).Error
	return rows, err
}
