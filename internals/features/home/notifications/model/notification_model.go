package model

import (
	"time"

	"github.com/google/uuid"
)

type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

type UserNotificationModel struct {
	UserNotificationID        uuid.UUID  `gorm:"column:user_notification_id;primaryKey;type:uuid;default:gen_random_uuid()" json:"user_notification_id"`
	UserNotificationUserID    uuid.UUID  `gorm:"column:user_notification_user_id;type:uuid;not null;index" json:"user_notification_user_id"`
	UserNotificationTitle     string     `gorm:"column:user_notification_title;type:varchar(255);not null" json:"user_notification_title"`
	UserNotificationMessage   string     `gorm:"column:user_notification_message;type:text" json:"user_notification_message"`
	UserNotificationSeverity  Severity   `gorm:"column:user_notification_severity;type:varchar(10);not null;default:'info'" json:"user_notification_severity"`
	UserNotificationLink      *string    `gorm:"column:user_notification_link;type:text" json:"user_notification_link"`
	UserNotificationIsRead    bool       `gorm:"column:user_notification_is_read;not null;default:false" json:"user_notification_is_read"`
	UserNotificationReadAt    *time.Time `gorm:"column:user_notification_read_at" json:"user_notification_read_at"`
	UserNotificationCreatedAt time.Time  `gorm:"column:user_notification_created_at;autoCreateTime" json:"user_notification_created_at"`
}

func (UserNotificationModel) TableName() string {
	return "user_notifications"
}
