// internals/features/analytics/risk/scoring/recommendations.go
package scoring

import "kampusku_backend/internals/features/analytics/risk/model"

var recommendationsByLevel = map[model.RiskLevel][]string{
	model.RiskLevelLow: {
		"Maintain current study habits",
	},
	model.RiskLevelMedium: {
		"Monitor academic progress closely",
		"Notify the student's tutor",
		"Suggest joining a study group",
	},
	model.RiskLevelHigh: {
		"Schedule a mandatory counselling session",
		"Prepare a personalised study plan",
		"Notify parents or guardians",
	},
	model.RiskLevelCritical: {
		"Urgent intervention by the faculty",
		"Daily monitoring of attendance and activity",
		"Review for academic probation",
	},
}

// Recommendations returns a fresh copy of the action list for a level.
func Recommendations(level model.RiskLevel) []string {
	src := recommendationsByLevel[level]
	out := make([]string, len(src))
	copy(out, src)
	return out
}

type Presentation struct {
	Label string `json:"label"`
	Color string `json:"color"`
	Icon  string `json:"icon"`
}

func LevelPresentation(level model.RiskLevel) Presentation {
	switch level {
	case model.RiskLevelLow:
		return Presentation{Label: "Low", Color: "success", Icon: "shield-check"}
	case model.RiskLevelMedium:
		return Presentation{Label: "Medium", Color: "info", Icon: "eye"}
	case model.RiskLevelHigh:
		return Presentation{Label: "High", Color: "warning", Icon: "alert-triangle"}
	case model.RiskLevelCritical:
		return Presentation{Label: "Critical", Color: "danger", Icon: "alert-octagon"}
	default:
		return Presentation{Label: "Unknown", Color: "secondary", Icon: "help-circle"}
	}
}
