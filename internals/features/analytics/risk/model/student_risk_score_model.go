// internals/features/analytics/risk/model/student_risk_score_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/datatypes"
)

type RiskLevel string

const (
	RiskLevelLow      RiskLevel = "low"
	RiskLevelMedium   RiskLevel = "medium"
	RiskLevelHigh     RiskLevel = "high"
	RiskLevelCritical RiskLevel = "critical"
)

func (l RiskLevel) Valid() bool {
	switch l {
	case RiskLevelLow, RiskLevelMedium, RiskLevelHigh, RiskLevelCritical:
		return true
	default:
		return false
	}
}

// One live row per student; recalculation overwrites it.
type StudentRiskScoreModel struct {
	StudentRiskScoreID        uuid.UUID `gorm:"column:student_risk_score_id;primaryKey;type:uuid;default:gen_random_uuid()" json:"student_risk_score_id"`
	StudentRiskScoreStudentID uuid.UUID `gorm:"column:student_risk_score_student_id;type:uuid;not null;uniqueIndex:uq_student_risk_score_student" json:"student_risk_score_student_id"`

	StudentRiskScoreOverall int       `gorm:"column:student_risk_score_overall;not null" json:"student_risk_score_overall"`
	StudentRiskScoreLevel   RiskLevel `gorm:"column:student_risk_score_level;type:varchar(10);not null;index" json:"student_risk_score_level"`

	StudentRiskScoreGradeFactor        float64 `gorm:"column:student_risk_score_grade_factor;type:numeric(5,2)" json:"student_risk_score_grade_factor"`
	StudentRiskScoreAttendanceFactor   float64 `gorm:"column:student_risk_score_attendance_factor;type:numeric(5,2)" json:"student_risk_score_attendance_factor"`
	StudentRiskScoreTrendFactor        float64 `gorm:"column:student_risk_score_trend_factor;type:numeric(5,2)" json:"student_risk_score_trend_factor"`
	StudentRiskScoreEngagementFactor   float64 `gorm:"column:student_risk_score_engagement_factor;type:numeric(5,2)" json:"student_risk_score_engagement_factor"`
	StudentRiskScoreAbsenceRunFactor   float64 `gorm:"column:student_risk_score_absence_run_factor;type:numeric(5,2)" json:"student_risk_score_absence_run_factor"`
	StudentRiskScoreFailedCourseFactor float64 `gorm:"column:student_risk_score_failed_course_factor;type:numeric(5,2)" json:"student_risk_score_failed_course_factor"`

	// RiskFactors holds explanation strings, FactorDetails the raw per-factor diagnostics.
	StudentRiskScoreRiskFactors     datatypes.JSON `gorm:"column:student_risk_score_risk_factors;type:jsonb" json:"student_risk_score_risk_factors"`
	StudentRiskScoreFactorDetails   datatypes.JSON `gorm:"column:student_risk_score_factor_details;type:jsonb" json:"student_risk_score_factor_details"`
	StudentRiskScoreRecommendations pq.StringArray `gorm:"column:student_risk_score_recommendations;type:text[]" json:"student_risk_score_recommendations"`

	StudentRiskScoreCalculatedAt time.Time `gorm:"column:student_risk_score_calculated_at;not null" json:"student_risk_score_calculated_at"`
	StudentRiskScoreCreatedAt    time.Time `gorm:"column:student_risk_score_created_at;autoCreateTime" json:"student_risk_score_created_at"`
	StudentRiskScoreUpdatedAt    time.Time `gorm:"column:student_risk_score_updated_at;autoUpdateTime" json:"student_risk_score_updated_at"`
}

func (StudentRiskScoreModel) TableName() string {
	return "student_risk_scores"
}
