// internals/features/analytics/risk/scoring/factors.go
package scoring

import (
	"fmt"
	"math"
	"sort"
	"time"
)

/* =========================================================
   Thresholds
========================================================= */

const (
	PassingAverage       = 7.0
	FailingGrade         = 5.0
	NoGradesScore        = 50.0
	MinAttendanceRate    = 0.80
	AbsenceGap           = 7 * 24 * time.Hour
	AbsenceRunCritical   = 5
	EngagementWindow     = 30 * 24 * time.Hour
	InactiveScore        = 50.0
	trendWindow          = 3
	trendMultiplier      = 30.0
	attendanceMultiplier = 250.0
	absenceRunStep       = 25.0
	failedCourseStep     = 30.0
)

type Factor string

const (
	FactorCurrentGrade        Factor = "current_grade"
	FactorGradeTrend          Factor = "grade_trend"
	FactorAttendance          Factor = "attendance"
	FactorConsecutiveAbsences Factor = "consecutive_absences"
	FactorFailedCourses       Factor = "failed_courses"
	FactorEngagement          Factor = "engagement"
)

// GradeInput is one approved grade.
type GradeInput struct {
	Value    float64
	ExamDate time.Time
}

type AttendanceInput struct {
	Date     time.Time
	Attended bool
	Absent   bool
}

// Input is everything the extractor needs for one student.
type Input struct {
	ApprovedGrades    []GradeInput
	Attendance        []AttendanceInput
	HasRecentActivity bool
}

// SubScore is a 0..100 risk value (higher is worse) plus diagnostics.
type SubScore struct {
	Score   float64        `json:"score"`
	Details map[string]any `json:"details"`
}

type Factors struct {
	CurrentGrade        SubScore `json:"current_grade"`
	GradeTrend          SubScore `json:"grade_trend"`
	Attendance          SubScore `json:"attendance"`
	ConsecutiveAbsences SubScore `json:"consecutive_absences"`
	FailedCourses       SubScore `json:"failed_courses"`
	Engagement          SubScore `json:"engagement"`
}

// Extract computes the six independent sub-scores.
func Extract(in Input) Factors {
	absences := make([]time.Time, 0, len(in.Attendance))
	for _, a := range in.Attendance {
		if a.Absent {
			absences = append(absences, a.Date)
		}
	}

	return Factors{
		CurrentGrade:        CurrentGradeScore(in.ApprovedGrades),
		GradeTrend:          GradeTrendScore(in.ApprovedGrades),
		Attendance:          AttendanceScore(in.Attendance),
		ConsecutiveAbsences: ConsecutiveAbsenceScore(absences),
		FailedCourses:       FailedCoursesScore(in.ApprovedGrades),
		Engagement:          EngagementScore(in.HasRecentActivity),
	}
}

func CurrentGradeScore(grades []GradeInput) SubScore {
	if len(grades) == 0 {
		return SubScore{
			Score:   NoGradesScore,
			Details: map[string]any{"approved_grades": 0, "note": "insufficient_data"},
		}
	}

	avg := averageOf(grades)
	details := map[string]any{
		"average":         round2(avg),
		"approved_grades": len(grades),
	}
	if avg >= PassingAverage {
		return SubScore{Score: 0, Details: details}
	}
	return SubScore{
		Score:   math.Min(100, (PassingAverage-avg)/2.0*100),
		Details: details,
	}
}

// GradeTrendScore compares the three most recent grades against up to three
// older ones. Without an older window there is no trend and no risk.
func GradeTrendScore(grades []GradeInput) SubScore {
	if len(grades) < trendWindow+1 {
		return SubScore{
			Score:   0,
			Details: map[string]any{"trend": "insufficient_data", "approved_grades": len(grades)},
		}
	}

	sorted := make([]GradeInput, len(grades))
	copy(sorted, grades)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ExamDate.After(sorted[j].ExamDate)
	})

	recent := sorted[:trendWindow]
	olderEnd := trendWindow * 2
	if olderEnd > len(sorted) {
		olderEnd = len(sorted)
	}
	older := sorted[trendWindow:olderEnd]

	recentAvg := averageOf(recent)
	olderAvg := averageOf(older)
	trend := olderAvg - recentAvg // positive = declining

	direction := "stable"
	switch {
	case trend > 0:
		direction = "declining"
	case trend < 0:
		direction = "improving"
	}

	return SubScore{
		Score: clamp(trend * trendMultiplier),
		Details: map[string]any{
			"recent_average": round2(recentAvg),
			"older_average":  round2(olderAvg),
			"trend":          direction,
			"delta":          round2(trend),
		},
	}
}

func AttendanceScore(records []AttendanceInput) SubScore {
	if len(records) == 0 {
		return SubScore{Score: 0, Details: map[string]any{"total": 0}}
	}

	present := 0
	for _, r := range records {
		if r.Attended {
			present++
		}
	}
	rate := float64(present) / float64(len(records))
	details := map[string]any{
		"present":         present,
		"total":           len(records),
		"attendance_rate": fmt.Sprintf("%.1f%%", rate*100),
	}
	if rate >= MinAttendanceRate {
		return SubScore{Score: 0, Details: details}
	}
	return SubScore{
		Score:   math.Min(100, (MinAttendanceRate-rate)*attendanceMultiplier),
		Details: details,
	}
}

func ConsecutiveAbsenceScore(absenceDates []time.Time) SubScore {
	run := LongestAbsenceRun(absenceDates, AbsenceGap)
	details := map[string]any{"max_consecutive_absences": run}
	if run >= AbsenceRunCritical {
		return SubScore{Score: 100, Details: details}
	}
	return SubScore{Score: math.Min(100, float64(run)*absenceRunStep), Details: details}
}

// LongestAbsenceRun returns the longest chain of absences where each one
// follows the previous within maxGap. Same-day absences (different courses)
// extend the chain.
func LongestAbsenceRun(dates []time.Time, maxGap time.Duration) int {
	if len(dates) == 0 {
		return 0
	}

	sorted := make([]time.Time, len(dates))
	copy(sorted, dates)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })

	longest, current := 1, 1
	for i := 1; i < len(sorted); i++ {
		if sorted[i].Sub(sorted[i-1]) <= maxGap {
			current++
		} else {
			current = 1
		}
		if current > longest {
			longest = current
		}
	}
	return longest
}

func FailedCoursesScore(grades []GradeInput) SubScore {
	failed := 0
	for _, g := range grades {
		if g.Value < FailingGrade {
			failed++
		}
	}
	details := map[string]any{"failed_courses": failed}
	if failed == 0 {
		return SubScore{Score: 0, Details: details}
	}
	return SubScore{Score: math.Min(100, float64(failed)*failedCourseStep), Details: details}
}

// EngagementScore is a proxy until a real engagement source exists.
func EngagementScore(hasRecentActivity bool) SubScore {
	details := map[string]any{
		"recent_activity": hasRecentActivity,
		"window_days":     int(EngagementWindow.Hours() / 24),
	}
	if hasRecentActivity {
		return SubScore{Score: 0, Details: details}
	}
	return SubScore{Score: InactiveScore, Details: details}
}

/* =========================================================
   helpers
========================================================= */

func averageOf(grades []GradeInput) float64 {
	if len(grades) == 0 {
		return 0
	}
	sum := 0.0
	for _, g := range grades {
		sum += g.Value
	}
	return sum / float64(len(grades))
}

func clamp(v float64) float64 {
	return math.Min(100, math.Max(0, v))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
