package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var day0 = time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

func onDay(n int) time.Time {
	return day0.AddDate(0, 0, n-1)
}

func grades(values ...float64) []GradeInput {
	out := make([]GradeInput, 0, len(values))
	for i, v := range values {
		// newest first, one week apart
		out = append(out, GradeInput{Value: v, ExamDate: day0.AddDate(0, 0, -7*i)})
	}
	return out
}

func attendance(present, total int) []AttendanceInput {
	out := make([]AttendanceInput, 0, total)
	for i := 0; i < total; i++ {
		attended := i < present
		// absences 10 days apart so they never chain
		out = append(out, AttendanceInput{Date: day0.AddDate(0, 0, 10*i), Attended: attended, Absent: !attended})
	}
	return out
}

func TestCurrentGradeScore(t *testing.T) {
	tests := []struct {
		name   string
		grades []GradeInput
		want   float64
	}{
		{name: "no approved grades", grades: nil, want: NoGradesScore},
		{name: "passing average", grades: grades(7, 7, 7), want: 0},
		{name: "one point below passing", grades: grades(6, 6), want: 50},
		{name: "very low average is capped", grades: grades(4, 4, 4, 4), want: 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, CurrentGradeScore(tt.grades).Score, 1e-9)
		})
	}
}

func TestGradeTrendScore(t *testing.T) {
	tests := []struct {
		name      string
		grades    []GradeInput
		want      float64
		direction string
	}{
		{name: "three grades is not a trend", grades: grades(3, 9, 9), want: 0, direction: "insufficient_data"},
		{name: "declining", grades: grades(5, 5, 5, 8), want: 90, direction: "declining"},
		{name: "improving is not a risk", grades: grades(9, 9, 9, 5, 5, 5), want: 0, direction: "improving"},
		{name: "flat", grades: grades(7, 7, 7, 7, 7, 7), want: 0, direction: "stable"},
		{name: "steep decline is capped", grades: grades(2, 2, 2, 9, 9, 9), want: 100, direction: "declining"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GradeTrendScore(tt.grades)
			assert.InDelta(t, tt.want, got.Score, 1e-9)
			assert.Equal(t, tt.direction, got.Details["trend"])
		})
	}
}

func TestGradeTrendScore_OrdersByExamDate(t *testing.T) {
	in := []GradeInput{
		{Value: 8, ExamDate: onDay(1)},
		{Value: 5, ExamDate: onDay(30)},
		{Value: 5, ExamDate: onDay(20)},
		{Value: 5, ExamDate: onDay(10)},
	}
	assert.InDelta(t, 90, GradeTrendScore(in).Score, 1e-9)
}

func TestAttendanceScore(t *testing.T) {
	tests := []struct {
		name    string
		records []AttendanceInput
		want    float64
		rate    any
	}{
		{name: "no records", records: nil, want: 0},
		{name: "exactly the minimum", records: attendance(8, 10), want: 0, rate: "80.0%"},
		{name: "slightly below", records: attendance(7, 10), want: 25, rate: "70.0%"},
		{name: "forty percent is capped", records: attendance(4, 10), want: 100, rate: "40.0%"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AttendanceScore(tt.records)
			assert.InDelta(t, tt.want, got.Score, 1e-9)
			if tt.rate != nil {
				assert.Equal(t, tt.rate, got.Details["attendance_rate"])
			}
		})
	}
}

func TestLongestAbsenceRun(t *testing.T) {
	tests := []struct {
		name  string
		dates []time.Time
		want  int
	}{
		{name: "none", dates: nil, want: 0},
		{name: "single", dates: []time.Time{onDay(1)}, want: 1},
		{name: "gap resets the run", dates: []time.Time{onDay(1), onDay(3), onDay(20)}, want: 2},
		{name: "unsorted input", dates: []time.Time{onDay(20), onDay(1), onDay(3)}, want: 2},
		{name: "seven day gap still chains", dates: []time.Time{onDay(1), onDay(8), onDay(15)}, want: 3},
		{name: "eight day gap breaks", dates: []time.Time{onDay(1), onDay(9)}, want: 1},
		{name: "same day counts twice", dates: []time.Time{onDay(2), onDay(2)}, want: 2},
		{name: "longest of several", dates: []time.Time{onDay(1), onDay(2), onDay(30), onDay(31), onDay(32)}, want: 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, LongestAbsenceRun(tt.dates, AbsenceGap))
		})
	}
}

func TestConsecutiveAbsenceScore(t *testing.T) {
	run := func(n int) []time.Time {
		out := make([]time.Time, n)
		for i := range out {
			out[i] = onDay(i + 1)
		}
		return out
	}
	assert.Equal(t, 0.0, ConsecutiveAbsenceScore(nil).Score)
	assert.Equal(t, 50.0, ConsecutiveAbsenceScore(run(2)).Score)
	assert.Equal(t, 100.0, ConsecutiveAbsenceScore(run(4)).Score)
	assert.Equal(t, 100.0, ConsecutiveAbsenceScore(run(AbsenceRunCritical)).Score)
	assert.Equal(t, 7, ConsecutiveAbsenceScore(run(7)).Details["max_consecutive_absences"])
}

func TestFailedCoursesScore(t *testing.T) {
	assert.Equal(t, 0.0, FailedCoursesScore(grades(5, 6, 9)).Score)
	assert.InDelta(t, 30, FailedCoursesScore(grades(4.99, 5)).Score, 1e-9)
	assert.InDelta(t, 60, FailedCoursesScore(grades(1, 2, 8)).Score, 1e-9)
	assert.Equal(t, 100.0, FailedCoursesScore(grades(1, 1, 1, 1)).Score)
}

func TestEngagementScore(t *testing.T) {
	assert.Equal(t, 0.0, EngagementScore(true).Score)
	assert.Equal(t, InactiveScore, EngagementScore(false).Score)
}

func TestExtract_LowGradesAndPoorAttendance(t *testing.T) {
	f := Extract(Input{
		ApprovedGrades:    grades(4, 4, 4, 4),
		Attendance:        attendance(4, 10),
		HasRecentActivity: true,
	})

	assert.Equal(t, 100.0, f.CurrentGrade.Score)
	assert.Equal(t, 100.0, f.Attendance.Score)
	assert.Equal(t, 0.0, f.GradeTrend.Score)
	assert.Equal(t, 25.0, f.ConsecutiveAbsences.Score)
	assert.Equal(t, 100.0, f.FailedCourses.Score)
	assert.Equal(t, 0.0, f.Engagement.Score)

	// 25 + 20 + 0.15*25 + 10 = 58.75
	score := Aggregate(f)
	assert.Equal(t, 59, score)
	assert.GreaterOrEqual(t, score, 45)
}
