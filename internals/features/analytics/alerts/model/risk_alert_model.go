// internals/features/analytics/alerts/model/risk_alert_model.go
package model

import (
	"time"

	"github.com/google/uuid"

	riskModel "kampusku_backend/internals/features/analytics/risk/model"
)

// Alert types. Free-form in storage; these are the ones raised automatically.
const (
	AlertTypeRiskScoreCritical   = "RiskScoreCritical"
	AlertTypeRiskScoreHigh       = "RiskScoreHigh"
	AlertTypeConsecutiveAbsences = "ConsecutiveAbsences"
	AlertTypeManual              = "Manual"
)

// RiskAlertModel is never hard-deleted; only acknowledgement and
// intervention fields change after creation.
type RiskAlertModel struct {
	RiskAlertID        uuid.UUID           `gorm:"column:risk_alert_id;primaryKey;type:uuid;default:gen_random_uuid()" json:"risk_alert_id"`
	RiskAlertStudentID uuid.UUID           `gorm:"column:risk_alert_student_id;type:uuid;not null;index:idx_risk_alert_student_type,priority:1" json:"risk_alert_student_id"`
	RiskAlertLevel     riskModel.RiskLevel `gorm:"column:risk_alert_level;type:varchar(10);not null" json:"risk_alert_level"`
	RiskAlertType      string              `gorm:"column:risk_alert_type;type:varchar(50);not null;index:idx_risk_alert_student_type,priority:2" json:"risk_alert_type"`
	RiskAlertMessage   string              `gorm:"column:risk_alert_message;type:text;not null" json:"risk_alert_message"`

	RiskAlertIsAcknowledged bool       `gorm:"column:risk_alert_is_acknowledged;not null;default:false" json:"risk_alert_is_acknowledged"`
	RiskAlertAcknowledgedBy *uuid.UUID `gorm:"column:risk_alert_acknowledged_by;type:uuid" json:"risk_alert_acknowledged_by"`
	RiskAlertAcknowledgedAt *time.Time `gorm:"column:risk_alert_acknowledged_at" json:"risk_alert_acknowledged_at"`

	RiskAlertInterventionNotes  *string `gorm:"column:risk_alert_intervention_notes;type:text" json:"risk_alert_intervention_notes"`
	RiskAlertInterventionStatus *string `gorm:"column:risk_alert_intervention_status;type:varchar(50)" json:"risk_alert_intervention_status"`

	RiskAlertCreatedAt time.Time `gorm:"column:risk_alert_created_at;not null;index:idx_risk_alert_student_type,priority:3" json:"risk_alert_created_at"`
	RiskAlertUpdatedAt time.Time `gorm:"column:risk_alert_updated_at;not null" json:"risk_alert_updated_at"`
}

func (RiskAlertModel) TableName() string {
	return "risk_alerts"
}

type RiskAlertFilter struct {
	StudentID    *uuid.UUID
	Level        riskModel.RiskLevel
	Type         string
	Acknowledged *bool
	Limit        int
	Offset       int
}
