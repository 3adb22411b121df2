package dto

import (
	"github.com/google/uuid"

	"kampusku_backend/internals/features/home/notifications/model"
)

// ================== RESPONSE ==================
type NotificationResponse struct {
	ID        uuid.UUID      `json:"user_notification_id"`
	Title     string         `json:"user_notification_title"`
	Message   string         `json:"user_notification_message"`
	Severity  model.Severity `json:"user_notification_severity"`
	Icon      string         `json:"icon"`
	Color     string         `json:"color"`
	Label     string         `json:"label"`
	Link      *string        `json:"user_notification_link,omitempty"`
	IsRead    bool           `json:"user_notification_is_read"`
	ReadAt    *string        `json:"user_notification_read_at,omitempty"`
	CreatedAt string         `json:"user_notification_created_at"`
}

// SeverityPresentation maps a severity to the icon/color/label the UI renders.
func SeverityPresentation(s model.Severity) (icon, color, label string) {
	switch s {
	case model.SeveritySuccess:
		return "check-circle", "success", "Success"
	case model.SeverityWarning:
		return "alert-triangle", "warning", "Warning"
	case model.SeverityError:
		return "x-octagon", "danger", "Important"
	default:
		return "info", "info", "Information"
	}
}

func ToNotificationResponse(m *model.UserNotificationModel) *NotificationResponse {
	icon, color, label := SeverityPresentation(m.UserNotificationSeverity)

	var readAt *string
	if m.UserNotificationReadAt != nil {
		formatted := m.UserNotificationReadAt.Format("2006-01-02 15:04:05")
		readAt = &formatted
	}

	return &NotificationResponse{
		ID:        m.UserNotificationID,
		Title:     m.UserNotificationTitle,
		Message:   m.UserNotificationMessage,
		Severity:  m.UserNotificationSeverity,
		Icon:      icon,
		Color:     color,
		Label:     label,
		Link:      m.UserNotificationLink,
		IsRead:    m.UserNotificationIsRead,
		ReadAt:    readAt,
		CreatedAt: m.UserNotificationCreatedAt.Format("2006-01-02 15:04:05"),
	}
}

func ToNotificationResponseList(models []model.UserNotificationModel) []NotificationResponse {
	out := make([]NotificationResponse, 0, len(models))
	for i := range models {
		out = append(out, *ToNotificationResponse(&models[i]))
	}
	return out
}
