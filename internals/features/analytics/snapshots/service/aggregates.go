// internals/features/analytics/snapshots/service/aggregates.go
package service

import (
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	academicModel "kampusku_backend/internals/features/academics/model"
	"kampusku_backend/internals/features/analytics/risk/scoring"
	"kampusku_backend/internals/features/analytics/snapshots/model"
)

type termKey struct {
	year     string
	semester int
}

// BuildGradeSnapshots groups approved grades by (academic year, semester).
// Credits are counted per graded course; earned credits need a passing grade.
func BuildGradeSnapshots(studentID uuid.UUID, grades []model.GradeRecord) []model.GradeSnapshotModel {
	type acc struct {
		sum    float64
		n      int
		total  int
		earned int
	}
	terms := map[termKey]*acc{}
	var order []termKey

	for _, g := range grades {
		if academicModel.GradeStatus(g.Status) != academicModel.GradeStatusApproved {
			continue
		}
		k := termKey{year: g.AcademicYear, semester: g.Semester}
		a, ok := terms[k]
		if !ok {
			a = &acc{}
			terms[k] = a
			order = append(order, k)
		}
		a.sum += g.Value
		a.n++
		a.total += g.Credits
		if g.Value >= scoring.FailingGrade {
			a.earned += g.Credits
		}
	}

	sort.Slice(order, func(i, j int) bool {
		if order[i].year != order[j].year {
			return order[i].year < order[j].year
		}
		return order[i].semester < order[j].semester
	})

	out := make([]model.GradeSnapshotModel, 0, len(order))
	for _, k := range order {
		a := terms[k]
		out = append(out, model.GradeSnapshotModel{
			GradeSnapshotStudentID:      studentID,
			GradeSnapshotAcademicYear:   k.year,
			GradeSnapshotSemester:       k.semester,
			GradeSnapshotAverageGrade:   round2(a.sum / float64(a.n)),
			GradeSnapshotTotalCredits:   a.total,
			GradeSnapshotEarnedCredits:  a.earned,
			GradeSnapshotApprovedGrades: a.n,
		})
	}
	return out
}

// BuildAttendanceStats counts sessions per course. The absence run uses the
// same gap rule as the risk extractor.
func BuildAttendanceStats(studentID uuid.UUID, records []academicModel.AttendanceModel) []model.AttendanceStatsModel {
	byCourse := map[uuid.UUID]*model.AttendanceStatsModel{}
	absences := map[uuid.UUID][]time.Time{}
	var order []uuid.UUID

	for _, r := range records {
		st, ok := byCourse[r.AttendanceCourseID]
		if !ok {
			st = &model.AttendanceStatsModel{
				AttendanceStatsStudentID: studentID,
				AttendanceStatsCourseID:  r.AttendanceCourseID,
			}
			byCourse[r.AttendanceCourseID] = st
			order = append(order, r.AttendanceCourseID)
		}

		st.AttendanceStatsTotalSessions++
		switch r.AttendanceStatus {
		case academicModel.AttendancePresent:
			st.AttendanceStatsPresentCount++
		case academicModel.AttendanceAbsent:
			st.AttendanceStatsAbsentCount++
			absences[r.AttendanceCourseID] = append(absences[r.AttendanceCourseID], r.AttendanceDate)
		case academicModel.AttendanceLate:
			st.AttendanceStatsLateCount++
		case academicModel.AttendanceExcused:
			st.AttendanceStatsExcusedCount++
		}
	}

	out := make([]model.AttendanceStatsModel, 0, len(order))
	for _, courseID := range order {
		st := byCourse[courseID]
		attended := st.AttendanceStatsPresentCount + st.AttendanceStatsLateCount
		st.AttendanceStatsAttendanceRate = round2(float64(attended) / float64(st.AttendanceStatsTotalSessions) * 100)
		st.AttendanceStatsMaxConsecutiveAbsences = scoring.LongestAbsenceRun(absences[courseID], scoring.AbsenceGap)
		out = append(out, *st)
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
