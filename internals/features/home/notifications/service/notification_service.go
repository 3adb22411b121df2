package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"kampusku_backend/internals/features/home/notifications/model"
	"kampusku_backend/internals/helpers/logger"
)

var ErrNotificationNotFound = errors.New("notification not found")

// Publisher is the part of the redis client used for real-time push.
type Publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// NotificationService persists user notifications and, when a publisher is
// configured, pushes them on "notifications:<user_id>" for live clients.
type NotificationService struct {
	DB  *gorm.DB
	Pub Publisher
	Log *zap.Logger
}

func NewNotificationService(db *gorm.DB, pub Publisher, log *zap.Logger) *NotificationService {
	return &NotificationService{DB: db, Pub: pub, Log: logger.OrNop(log).Named("notifications")}
}

func ChannelFor(userID uuid.UUID) string {
	return "notifications:" + userID.String()
}

func (s *NotificationService) Send(
	ctx context.Context,
	userID uuid.UUID,
	title, message string,
	severity model.Severity,
	link *string,
) error {
	row := &model.UserNotificationModel{
		UserNotificationUserID:   userID,
		UserNotificationTitle:    title,
		UserNotificationMessage:  message,
		UserNotificationSeverity: severity,
		UserNotificationLink:     link,
	}
	if err := s.DB.WithContext(ctx).Create(row).Error; err != nil {
		return fmt.Errorf("save notification for %s: %w", userID, err)
	}

	if s.Pub != nil {
		payload, err := sonic.Marshal(row)
		if err == nil {
			err = s.Pub.Publish(ctx, ChannelFor(userID), payload).Err()
		}
		if err != nil {
			// stored already; the user sees it on next fetch
			s.Log.Warn("[NOTIF] realtime push failed", zap.String("user_id", userID.String()), zap.Error(err))
		}
	}
	return nil
}

func (s *NotificationService) ListForUser(
	ctx context.Context,
	userID uuid.UUID,
	unreadOnly bool,
	limit, offset int,
) ([]model.UserNotificationModel, int64, error) {
	q := s.DB.WithContext(ctx).
		Model(&model.UserNotificationModel{}).
		Where("user_notification_user_id = ?", userID)
	if unreadOnly {
		q = q.Where("user_notification_is_read = ?", false)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []model.UserNotificationModel
	if err := q.
		Order("user_notification_created_at DESC").
		Limit(limit).Offset(offset).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// MarkAsRead only touches notifications owned by userID.
func (s *NotificationService) MarkAsRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	res := s.DB.WithContext(ctx).
		Model(&model.UserNotificationModel{}).
		Where("user_notification_id = ? AND user_notification_user_id = ?", notificationID, userID).
		Updates(map[string]interface{}{
			"user_notification_is_read": true,
			"user_notification_read_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotificationNotFound
	}
	return nil
}
