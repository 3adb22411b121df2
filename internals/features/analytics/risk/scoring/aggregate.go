// internals/features/analytics/risk/scoring/aggregate.go
package scoring

import (
	"fmt"
	"math"

	"kampusku_backend/internals/features/analytics/risk/model"
)

// Weights sum to 1.00.
const (
	WeightCurrentGrade        = 0.25
	WeightGradeTrend          = 0.20
	WeightAttendance          = 0.20
	WeightConsecutiveAbsences = 0.15
	WeightFailedCourses       = 0.10
	WeightEngagement          = 0.10
)

// Inclusive upper bounds per level.
const (
	LowMax    = 30
	MediumMax = 60
	HighMax   = 80
)

// ExplanationThreshold: sub-scores above this produce an explanation line.
const ExplanationThreshold = 50.0

const NoSignificantRisk = "No significant risk factors identified"

// Aggregate returns round(Σ weight×subscore) clamped to [0, 100].
func Aggregate(f Factors) int {
	sum := WeightCurrentGrade*f.CurrentGrade.Score +
		WeightGradeTrend*f.GradeTrend.Score +
		WeightAttendance*f.Attendance.Score +
		WeightConsecutiveAbsences*f.ConsecutiveAbsences.Score +
		WeightFailedCourses*f.FailedCourses.Score +
		WeightEngagement*f.Engagement.Score

	score := int(math.Round(sum))
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func LevelFor(score int) model.RiskLevel {
	switch {
	case score <= LowMax:
		return model.RiskLevelLow
	case score <= MediumMax:
		return model.RiskLevelMedium
	case score <= HighMax:
		return model.RiskLevelHigh
	default:
		return model.RiskLevelCritical
	}
}

// Explanations lists a human readable line for every sub-score above the threshold.
func Explanations(f Factors) []string {
	out := make([]string, 0, 6)

	if f.CurrentGrade.Score > ExplanationThreshold {
		if avg, ok := f.CurrentGrade.Details["average"]; ok {
			out = append(out, fmt.Sprintf("Low grade average (%.2f)", avg))
		} else {
			out = append(out, "No approved grades on record")
		}
	}
	if f.GradeTrend.Score > ExplanationThreshold {
		out = append(out, fmt.Sprintf("Declining grade trend (%.2f points)", f.GradeTrend.Details["delta"]))
	}
	if f.Attendance.Score > ExplanationThreshold {
		out = append(out, fmt.Sprintf("Low attendance rate (%v)", f.Attendance.Details["attendance_rate"]))
	}
	if f.ConsecutiveAbsences.Score > ExplanationThreshold {
		out = append(out, fmt.Sprintf("Consecutive absences (%v in a row)", f.ConsecutiveAbsences.Details["max_consecutive_absences"]))
	}
	if f.FailedCourses.Score > ExplanationThreshold {
		out = append(out, fmt.Sprintf("Failed courses (%v)", f.FailedCourses.Details["failed_courses"]))
	}
	if f.Engagement.Score > ExplanationThreshold {
		out = append(out, "No academic activity in the last 30 days")
	}

	if len(out) == 0 {
		out = append(out, NoSignificantRisk)
	}
	return out
}

// Details flattens the per-factor diagnostics for persistence.
func Details(f Factors) map[string]map[string]any {
	return map[string]map[string]any{
		string(FactorCurrentGrade):        f.CurrentGrade.Details,
		string(FactorGradeTrend):          f.GradeTrend.Details,
		string(FactorAttendance):          f.Attendance.Details,
		string(FactorConsecutiveAbsences): f.ConsecutiveAbsences.Details,
		string(FactorFailedCourses):       f.FailedCourses.Details,
		string(FactorEngagement):          f.Engagement.Details,
	}
}
