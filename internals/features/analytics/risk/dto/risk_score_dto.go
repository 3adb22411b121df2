package dto

import (
	"encoding/json"
	"strings"

	"github.com/google/uuid"

	"kampusku_backend/internals/features/analytics/risk/model"
	"kampusku_backend/internals/features/analytics/risk/scoring"
)

// ================== QUERY ==================
type RiskScoreListQuery struct {
	Level     string `query:"level" validate:"omitempty,oneof=low medium high critical"`
	MinScore  *int   `query:"min_score" validate:"omitempty,min=0,max=100"`
	FacultyID string `query:"faculty_id" validate:"omitempty,uuid"`
	ProgramID string `query:"program_id" validate:"omitempty,uuid"`
}

func (q *RiskScoreListQuery) ToFilter(limit, offset int) model.RiskScoreFilter {
	f := model.RiskScoreFilter{
		Level:    model.RiskLevel(strings.ToLower(strings.TrimSpace(q.Level))),
		MinScore: q.MinScore,
		Limit:    limit,
		Offset:   offset,
	}
	if id, err := uuid.Parse(strings.TrimSpace(q.FacultyID)); err == nil {
		f.FacultyID = &id
	}
	if id, err := uuid.Parse(strings.TrimSpace(q.ProgramID)); err == nil {
		f.ProgramID = &id
	}
	return f
}

// ================== RESPONSE ==================
type RiskFactorValues struct {
	Grade               float64 `json:"grade"`
	Attendance          float64 `json:"attendance"`
	Trend               float64 `json:"trend"`
	Engagement          float64 `json:"engagement"`
	ConsecutiveAbsences float64 `json:"consecutive_absences"`
	FailedCourses       float64 `json:"failed_courses"`
}

type RiskScoreResponse struct {
	StudentRiskScoreID uuid.UUID            `json:"student_risk_score_id"`
	StudentID          uuid.UUID            `json:"student_id"`
	OverallScore       int                  `json:"overall_score"`
	RiskLevel          model.RiskLevel      `json:"risk_level"`
	Presentation       scoring.Presentation `json:"presentation"`
	Factors            RiskFactorValues     `json:"factors"`
	RiskFactors        []string             `json:"risk_factors"`
	FactorDetails      map[string]any       `json:"factor_details,omitempty"`
	Recommendations    []string             `json:"recommendations"`
	CalculatedAt       string               `json:"calculated_at"`
}

func ToRiskScoreResponse(m *model.StudentRiskScoreModel) *RiskScoreResponse {
	var explanations []string
	if len(m.StudentRiskScoreRiskFactors) > 0 {
		_ = json.Unmarshal(m.StudentRiskScoreRiskFactors, &explanations)
	}
	var details map[string]any
	if len(m.StudentRiskScoreFactorDetails) > 0 {
		_ = json.Unmarshal(m.StudentRiskScoreFactorDetails, &details)
	}

	return &RiskScoreResponse{
		StudentRiskScoreID: m.StudentRiskScoreID,
		StudentID:          m.StudentRiskScoreStudentID,
		OverallScore:       m.StudentRiskScoreOverall,
		RiskLevel:          m.StudentRiskScoreLevel,
		Presentation:       scoring.LevelPresentation(m.StudentRiskScoreLevel),
		Factors: RiskFactorValues{
			Grade:               m.StudentRiskScoreGradeFactor,
			Attendance:          m.StudentRiskScoreAttendanceFactor,
			Trend:               m.StudentRiskScoreTrendFactor,
			Engagement:          m.StudentRiskScoreEngagementFactor,
			ConsecutiveAbsences: m.StudentRiskScoreAbsenceRunFactor,
			FailedCourses:       m.StudentRiskScoreFailedCourseFactor,
		},
		RiskFactors:     explanations,
		FactorDetails:   details,
		Recommendations: []string(m.StudentRiskScoreRecommendations),
		CalculatedAt:    m.StudentRiskScoreCalculatedAt.Format("2006-01-02 15:04:05"),
	}
}

func ToRiskScoreResponseList(rows []model.StudentRiskScoreModel) []RiskScoreResponse {
	out := make([]RiskScoreResponse, 0, len(rows))
	for i := range rows {
		out = append(out, *ToRiskScoreResponse(&rows[i]))
	}
	return out
}

type RiskLevelSummaryResponse struct {
	Low      int64 `json:"low"`
	Medium   int64 `json:"medium"`
	High     int64 `json:"high"`
	Critical int64 `json:"critical"`
	Total    int64 `json:"total"`
}

func ToRiskLevelSummary(m map[model.RiskLevel]int64) RiskLevelSummaryResponse {
	r := RiskLevelSummaryResponse{
		Low:      m[model.RiskLevelLow],
		Medium:   m[model.RiskLevelMedium],
		High:     m[model.RiskLevelHigh],
		Critical: m[model.RiskLevelCritical],
	}
	r.Total = r.Low + r.Medium + r.High + r.Critical
	return r
}
