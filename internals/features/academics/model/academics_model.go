// internals/features/academics/model/academics_model.go
package model

import (
	"time"

	"github.com/google/uuid"
)

// Read-only views over the academic tables owned by the CRUD layer.

type FacultyModel struct {
	FacultyID         uuid.UUID  `gorm:"column:faculty_id;primaryKey;type:uuid;default:gen_random_uuid()" json:"faculty_id"`
	FacultyName       string     `gorm:"column:faculty_name;type:varchar(150);not null" json:"faculty_name"`
	FacultyCode       string     `gorm:"column:faculty_code;type:varchar(20)" json:"faculty_code"`
	FacultyDeanUserID *uuid.UUID `gorm:"column:faculty_dean_user_id;type:uuid" json:"faculty_dean_user_id"`
	FacultyCreatedAt  time.Time  `gorm:"column:faculty_created_at;autoCreateTime" json:"faculty_created_at"`
}

func (FacultyModel) TableName() string { return "faculties" }

type ProgramModel struct {
	ProgramID        uuid.UUID `gorm:"column:program_id;primaryKey;type:uuid;default:gen_random_uuid()" json:"program_id"`
	ProgramFacultyID uuid.UUID `gorm:"column:program_faculty_id;type:uuid;not null" json:"program_faculty_id"`
	ProgramName      string    `gorm:"column:program_name;type:varchar(150);not null" json:"program_name"`
	ProgramCreatedAt time.Time `gorm:"column:program_created_at;autoCreateTime" json:"program_created_at"`
}

func (ProgramModel) TableName() string { return "programs" }

type StudentModel struct {
	StudentID        uuid.UUID `gorm:"column:student_id;primaryKey;type:uuid;default:gen_random_uuid()" json:"student_id"`
	StudentUserID    uuid.UUID `gorm:"column:student_user_id;type:uuid;not null" json:"student_user_id"`
	StudentFacultyID uuid.UUID `gorm:"column:student_faculty_id;type:uuid;not null" json:"student_faculty_id"`
	StudentProgramID uuid.UUID `gorm:"column:student_program_id;type:uuid;not null" json:"student_program_id"`
	StudentNumber    string    `gorm:"column:student_number;type:varchar(30)" json:"student_number"`
	StudentFirstName string    `gorm:"column:student_first_name;type:varchar(100)" json:"student_first_name"`
	StudentLastName  string    `gorm:"column:student_last_name;type:varchar(100)" json:"student_last_name"`
	StudentIsActive  bool      `gorm:"column:student_is_active;not null;default:true" json:"student_is_active"`
	StudentCreatedAt time.Time `gorm:"column:student_created_at;autoCreateTime" json:"student_created_at"`
}

func (StudentModel) TableName() string { return "students" }

func (s StudentModel) FullName() string {
	switch {
	case s.StudentFirstName == "":
		return s.StudentLastName
	case s.StudentLastName == "":
		return s.StudentFirstName
	}
	return s.StudentFirstName + " " + s.StudentLastName
}

// Professor roles. Secretariat staff are stored as professors with the secretary role.
const (
	ProfessorRoleProfessor = "professor"
	ProfessorRoleSecretary = "secretary"
	ProfessorRoleDean      = "dean"
)

type ProfessorModel struct {
	ProfessorID        uuid.UUID `gorm:"column:professor_id;primaryKey;type:uuid;default:gen_random_uuid()" json:"professor_id"`
	ProfessorUserID    uuid.UUID `gorm:"column:professor_user_id;type:uuid;not null" json:"professor_user_id"`
	ProfessorFacultyID uuid.UUID `gorm:"column:professor_faculty_id;type:uuid;not null" json:"professor_faculty_id"`
	ProfessorRole      string    `gorm:"column:professor_role;type:varchar(20);not null;default:'professor'" json:"professor_role"`
	ProfessorName      string    `gorm:"column:professor_name;type:varchar(150)" json:"professor_name"`
}

func (ProfessorModel) TableName() string { return "professors" }

type CourseModel struct {
	CourseID          uuid.UUID  `gorm:"column:course_id;primaryKey;type:uuid;default:gen_random_uuid()" json:"course_id"`
	CourseProgramID   uuid.UUID  `gorm:"column:course_program_id;type:uuid;not null" json:"course_program_id"`
	CourseProfessorID *uuid.UUID `gorm:"column:course_professor_id;type:uuid" json:"course_professor_id"`
	CourseCode        string     `gorm:"column:course_code;type:varchar(20)" json:"course_code"`
	CourseName        string     `gorm:"column:course_name;type:varchar(150)" json:"course_name"`
	CourseCredits     int        `gorm:"column:course_credits;not null;default:0" json:"course_credits"`
}

func (CourseModel) TableName() string { return "courses" }

type GradeStatus string

const (
	GradeStatusDraft     GradeStatus = "draft"
	GradeStatusSubmitted GradeStatus = "submitted"
	GradeStatusApproved  GradeStatus = "approved"
)

type GradeModel struct {
	GradeID           uuid.UUID   `gorm:"column:grade_id;primaryKey;type:uuid;default:gen_random_uuid()" json:"grade_id"`
	GradeStudentID    uuid.UUID   `gorm:"column:grade_student_id;type:uuid;not null" json:"grade_student_id"`
	GradeCourseID     uuid.UUID   `gorm:"column:grade_course_id;type:uuid;not null" json:"grade_course_id"`
	GradeValue        float64     `gorm:"column:grade_value;type:numeric(4,2);not null" json:"grade_value"`
	GradeStatus       GradeStatus `gorm:"column:grade_status;type:varchar(20);not null" json:"grade_status"`
	GradeExamDate     time.Time   `gorm:"column:grade_exam_date;type:date;not null" json:"grade_exam_date"`
	GradeAcademicYear string      `gorm:"column:grade_academic_year;type:varchar(9)" json:"grade_academic_year"`
	GradeSemester     int         `gorm:"column:grade_semester" json:"grade_semester"`
	GradeCreatedAt    time.Time   `gorm:"column:grade_created_at;autoCreateTime" json:"grade_created_at"`
}

func (GradeModel) TableName() string { return "grades" }

type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "present"
	AttendanceAbsent  AttendanceStatus = "absent"
	AttendanceLate    AttendanceStatus = "late"
	AttendanceExcused AttendanceStatus = "excused"
)

// Attended reports whether the session counts towards the presence ratio.
func (s AttendanceStatus) Attended() bool {
	return s == AttendancePresent || s == AttendanceLate
}

func (s AttendanceStatus) Label() string {
	switch s {
	case AttendancePresent:
		return "Present"
	case AttendanceAbsent:
		return "Absent"
	case AttendanceLate:
		return "Late"
	case AttendanceExcused:
		return "Excused"
	default:
		return "Unknown"
	}
}

type AttendanceModel struct {
	AttendanceID        uuid.UUID        `gorm:"column:attendance_id;primaryKey;type:uuid;default:gen_random_uuid()" json:"attendance_id"`
	AttendanceStudentID uuid.UUID        `gorm:"column:attendance_student_id;type:uuid;not null" json:"attendance_student_id"`
	AttendanceCourseID  uuid.UUID        `gorm:"column:attendance_course_id;type:uuid;not null" json:"attendance_course_id"`
	AttendanceDate      time.Time        `gorm:"column:attendance_date;type:date;not null" json:"attendance_date"`
	AttendanceStatus    AttendanceStatus `gorm:"column:attendance_status;type:varchar(10);not null" json:"attendance_status"`
	AttendanceCreatedAt time.Time        `gorm:"column:attendance_created_at;autoCreateTime" json:"attendance_created_at"`
}

func (AttendanceModel) TableName() string { return "attendances" }
