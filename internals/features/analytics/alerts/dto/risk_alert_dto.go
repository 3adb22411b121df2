package dto

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"kampusku_backend/internals/features/analytics/alerts/model"
	riskModel "kampusku_backend/internals/features/analytics/risk/model"
	"kampusku_backend/internals/features/analytics/risk/scoring"
)

// ================== REQUEST ==================
type CreateRiskAlertRequest struct {
	StudentID string `json:"student_id" validate:"required,uuid"`
	Level     string `json:"risk_level" validate:"required,oneof=low medium high critical"`
	Type      string `json:"alert_type" validate:"omitempty,max=50"`
	Message   string `json:"message" validate:"required,min=3"`
}

// Normalize trims input; an empty type becomes Manual.
func (r *CreateRiskAlertRequest) Normalize() {
	r.StudentID = strings.TrimSpace(r.StudentID)
	r.Level = strings.ToLower(strings.TrimSpace(r.Level))
	r.Type = strings.TrimSpace(r.Type)
	r.Message = strings.TrimSpace(r.Message)
	if r.Type == "" {
		r.Type = model.AlertTypeManual
	}
}

type TrackInterventionRequest struct {
	Notes  string `json:"intervention_notes" validate:"required"`
	Status string `json:"intervention_status" validate:"required,max=50"`
}

// ================== QUERY ==================
type RiskAlertListQuery struct {
	StudentID    string `query:"student_id" validate:"omitempty,uuid"`
	Level        string `query:"level" validate:"omitempty,oneof=low medium high critical"`
	Type         string `query:"type" validate:"omitempty,max=50"`
	Acknowledged *bool  `query:"acknowledged"`
}

func (q *RiskAlertListQuery) ToFilter(limit, offset int) model.RiskAlertFilter {
	f := model.RiskAlertFilter{
		Level:        riskModel.RiskLevel(strings.ToLower(strings.TrimSpace(q.Level))),
		Type:         strings.TrimSpace(q.Type),
		Acknowledged: q.Acknowledged,
		Limit:        limit,
		Offset:       offset,
	}
	if id, err := uuid.Parse(strings.TrimSpace(q.StudentID)); err == nil {
		f.StudentID = &id
	}
	return f
}

// ================== RESPONSE ==================
type RiskAlertResponse struct {
	RiskAlertID        uuid.UUID            `json:"risk_alert_id"`
	StudentID          uuid.UUID            `json:"student_id"`
	RiskLevel          riskModel.RiskLevel  `json:"risk_level"`
	Presentation       scoring.Presentation `json:"presentation"`
	AlertType          string               `json:"alert_type"`
	Message            string               `json:"message"`
	IsAcknowledged     bool                 `json:"is_acknowledged"`
	AcknowledgedBy     *uuid.UUID           `json:"acknowledged_by,omitempty"`
	AcknowledgedAt     *time.Time           `json:"acknowledged_at,omitempty"`
	InterventionNotes  *string              `json:"intervention_notes,omitempty"`
	InterventionStatus *string              `json:"intervention_status,omitempty"`
	CreatedAt          time.Time            `json:"created_at"`
	UpdatedAt          time.Time            `json:"updated_at"`
}

func ToRiskAlertResponse(m *model.RiskAlertModel) *RiskAlertResponse {
	return &RiskAlertResponse{
		RiskAlertID:        m.RiskAlertID,
		StudentID:          m.RiskAlertStudentID,
		RiskLevel:          m.RiskAlertLevel,
		Presentation:       scoring.LevelPresentation(m.RiskAlertLevel),
		AlertType:          m.RiskAlertType,
		Message:            m.RiskAlertMessage,
		IsAcknowledged:     m.RiskAlertIsAcknowledged,
		AcknowledgedBy:     m.RiskAlertAcknowledgedBy,
		AcknowledgedAt:     m.RiskAlertAcknowledgedAt,
		InterventionNotes:  m.RiskAlertInterventionNotes,
		InterventionStatus: m.RiskAlertInterventionStatus,
		CreatedAt:          m.RiskAlertCreatedAt,
		UpdatedAt:          m.RiskAlertUpdatedAt,
	}
}

func ToRiskAlertResponseList(rows []model.RiskAlertModel) []RiskAlertResponse {
	out := make([]RiskAlertResponse, 0, len(rows))
	for i := range rows {
		out = append(out, *ToRiskAlertResponse(&rows[i]))
	}
	return out
}
