// internals/features/analytics/snapshots/model/snapshot_model.go
package model

import (
	"time"

	"github.com/google/uuid"
)

// DailySnapshotModel: one row per (date, faculty, program). A nil faculty is
// the university-wide row; a nil program with a faculty is the faculty row.
// Uniqueness is enforced by uq_daily_snapshot_scope (see databases.Migrate).
type DailySnapshotModel struct {
	DailySnapshotID              uuid.UUID  `gorm:"column:daily_snapshot_id;primaryKey;type:uuid;default:gen_random_uuid()" json:"daily_snapshot_id"`
	DailySnapshotDate            time.Time  `gorm:"column:daily_snapshot_date;type:date;not null;index" json:"daily_snapshot_date"`
	DailySnapshotFacultyID       *uuid.UUID `gorm:"column:daily_snapshot_faculty_id;type:uuid" json:"daily_snapshot_faculty_id"`
	DailySnapshotProgramID       *uuid.UUID `gorm:"column:daily_snapshot_program_id;type:uuid" json:"daily_snapshot_program_id"`
	DailySnapshotTotalStudents   int        `gorm:"column:daily_snapshot_total_students;not null;default:0" json:"daily_snapshot_total_students"`
	DailySnapshotActiveStudents  int        `gorm:"column:daily_snapshot_active_students;not null;default:0" json:"daily_snapshot_active_students"`
	DailySnapshotAverageGrade    float64    `gorm:"column:daily_snapshot_average_grade;type:numeric(5,2);not null;default:0" json:"daily_snapshot_average_grade"`
	DailySnapshotAttendanceRate  float64    `gorm:"column:daily_snapshot_attendance_rate;type:numeric(5,2);not null;default:0" json:"daily_snapshot_attendance_rate"`
	DailySnapshotGradesSubmitted int        `gorm:"column:daily_snapshot_grades_submitted;not null;default:0" json:"daily_snapshot_grades_submitted"`
	DailySnapshotGradesApproved  int        `gorm:"column:daily_snapshot_grades_approved;not null;default:0" json:"daily_snapshot_grades_approved"`
	DailySnapshotCreatedAt       time.Time  `gorm:"column:daily_snapshot_created_at;autoCreateTime" json:"daily_snapshot_created_at"`
}

func (DailySnapshotModel) TableName() string {
	return "daily_snapshots"
}

type GradeSnapshotModel struct {
	GradeSnapshotID             uuid.UUID `gorm:"column:grade_snapshot_id;primaryKey;type:uuid;default:gen_random_uuid()" json:"grade_snapshot_id"`
	GradeSnapshotStudentID      uuid.UUID `gorm:"column:grade_snapshot_student_id;type:uuid;not null;uniqueIndex:uq_grade_snapshot_term,priority:1" json:"grade_snapshot_student_id"`
	GradeSnapshotAcademicYear   string    `gorm:"column:grade_snapshot_academic_year;type:varchar(9);not null;uniqueIndex:uq_grade_snapshot_term,priority:2" json:"grade_snapshot_academic_year"`
	GradeSnapshotSemester       int       `gorm:"column:grade_snapshot_semester;not null;uniqueIndex:uq_grade_snapshot_term,priority:3" json:"grade_snapshot_semester"`
	GradeSnapshotAverageGrade   float64   `gorm:"column:grade_snapshot_average_grade;type:numeric(5,2);not null;default:0" json:"grade_snapshot_average_grade"`
	GradeSnapshotTotalCredits   int       `gorm:"column:grade_snapshot_total_credits;not null;default:0" json:"grade_snapshot_total_credits"`
	GradeSnapshotEarnedCredits  int       `gorm:"column:grade_snapshot_earned_credits;not null;default:0" json:"grade_snapshot_earned_credits"`
	GradeSnapshotApprovedGrades int       `gorm:"column:grade_snapshot_approved_grades;not null;default:0" json:"grade_snapshot_approved_grades"`
	GradeSnapshotUpdatedAt      time.Time `gorm:"column:grade_snapshot_updated_at;autoUpdateTime" json:"grade_snapshot_updated_at"`
}

func (GradeSnapshotModel) TableName() string {
	return "grade_snapshots"
}

type AttendanceStatsModel struct {
	AttendanceStatsID                     uuid.UUID `gorm:"column:attendance_stats_id;primaryKey;type:uuid;default:gen_random_uuid()" json:"attendance_stats_id"`
	AttendanceStatsStudentID              uuid.UUID `gorm:"column:attendance_stats_student_id;type:uuid;not null;uniqueIndex:uq_attendance_stats_course,priority:1" json:"attendance_stats_student_id"`
	AttendanceStatsCourseID               uuid.UUID `gorm:"column:attendance_stats_course_id;type:uuid;not null;uniqueIndex:uq_attendance_stats_course,priority:2" json:"attendance_stats_course_id"`
	AttendanceStatsTotalSessions          int       `gorm:"column:attendance_stats_total_sessions;not null;default:0" json:"attendance_stats_total_sessions"`
	AttendanceStatsPresentCount           int       `gorm:"column:attendance_stats_present_count;not null;default:0" json:"attendance_stats_present_count"`
	AttendanceStatsAbsentCount            int       `gorm:"column:attendance_stats_absent_count;not null;default:0" json:"attendance_stats_absent_count"`
	AttendanceStatsLateCount              int       `gorm:"column:attendance_stats_late_count;not null;default:0" json:"attendance_stats_late_count"`
	AttendanceStatsExcusedCount           int       `gorm:"column:attendance_stats_excused_count;not null;default:0" json:"attendance_stats_excused_count"`
	AttendanceStatsAttendanceRate         float64   `gorm:"column:attendance_stats_attendance_rate;type:numeric(5,2);not null;default:0" json:"attendance_stats_attendance_rate"`
	AttendanceStatsMaxConsecutiveAbsences int       `gorm:"column:attendance_stats_max_consecutive_absences;not null;default:0" json:"attendance_stats_max_consecutive_absences"`
	AttendanceStatsUpdatedAt              time.Time `gorm:"column:attendance_stats_updated_at;autoUpdateTime" json:"attendance_stats_updated_at"`
}

func (AttendanceStatsModel) TableName() string {
	return "attendance_stats"
}

type DailySnapshotFilter struct {
	Date      *time.Time
	FacultyID *uuid.UUID
	ProgramID *uuid.UUID
	Limit     int
	Offset    int
}

// GradeRecord is a grade joined with its course credits.
type GradeRecord struct {
	CourseID     uuid.UUID
	Value        float64
	Status       string
	AcademicYear string
	Semester     int
	Credits      int
}

// ScopeStats are the live figures behind one DailySnapshot row.
type ScopeStats struct {
	TotalStudents   int
	ActiveStudents  int
	AverageGrade    float64
	AttendanceRate  float64
	GradesSubmitted int
	GradesApproved  int
}
