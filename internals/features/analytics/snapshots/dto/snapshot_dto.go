package dto

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"kampusku_backend/internals/features/analytics/snapshots/model"
)

type DailySnapshotQuery struct {
	Date      string `query:"date" validate:"omitempty,datetime=2006-01-02"`
	FacultyID string `query:"faculty_id" validate:"omitempty,uuid"`
	ProgramID string `query:"program_id" validate:"omitempty,uuid"`
}

func (q *DailySnapshotQuery) ToFilter(limit, offset int) model.DailySnapshotFilter {
	f := model.DailySnapshotFilter{Limit: limit, Offset: offset}
	if d, err := time.Parse("2006-01-02", strings.TrimSpace(q.Date)); err == nil {
		f.Date = &d
	}
	if id, err := uuid.Parse(strings.TrimSpace(q.FacultyID)); err == nil {
		f.FacultyID = &id
	}
	if id, err := uuid.Parse(strings.TrimSpace(q.ProgramID)); err == nil {
		f.ProgramID = &id
	}
	return f
}

// Scope names the level a snapshot row describes.
func Scope(m *model.DailySnapshotModel) string {
	switch {
	case m.DailySnapshotProgramID != nil:
		return "program"
	case m.DailySnapshotFacultyID != nil:
		return "faculty"
	default:
		return "university"
	}
}

type DailySnapshotResponse struct {
	DailySnapshotID uuid.UUID  `json:"daily_snapshot_id"`
	Date            string     `json:"date"`
	Scope           string     `json:"scope"`
	FacultyID       *uuid.UUID `json:"faculty_id,omitempty"`
	ProgramID       *uuid.UUID `json:"program_id,omitempty"`
	TotalStudents   int        `json:"total_students"`
	ActiveStudents  int        `json:"active_students"`
	AverageGrade    float64    `json:"average_grade"`
	AttendanceRate  float64    `json:"attendance_rate"`
	GradesSubmitted int        `json:"grades_submitted"`
	GradesApproved  int        `json:"grades_approved"`
}

func ToDailySnapshotResponseList(rows []model.DailySnapshotModel) []DailySnapshotResponse {
	out := make([]DailySnapshotResponse, 0, len(rows))
	for i := range rows {
		m := &rows[i]
		out = append(out, DailySnapshotResponse{
			DailySnapshotID: m.DailySnapshotID,
			Date:            m.DailySnapshotDate.Format("2006-01-02"),
			Scope:           Scope(m),
			FacultyID:       m.DailySnapshotFacultyID,
			ProgramID:       m.DailySnapshotProgramID,
			TotalStudents:   m.DailySnapshotTotalStudents,
			ActiveStudents:  m.DailySnapshotActiveStudents,
			AverageGrade:    m.DailySnapshotAverageGrade,
			AttendanceRate:  m.DailySnapshotAttendanceRate,
			GradesSubmitted: m.DailySnapshotGradesSubmitted,
			GradesApproved:  m.DailySnapshotGradesApproved,
		})
	}
	return out
}
