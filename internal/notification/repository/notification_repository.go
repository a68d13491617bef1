package repository

import (
	"errors"
	"time"

	"sinara-backend/internal/notification/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrNotFound is returned when a notification does not exist or is owned by
// another user. Callers must not be able to tell the two cases apart.
var ErrNotFound = errors.New("notification not found")

// ListOptions narrows ListForUser.
type ListOptions struct {
	Limit      int
	UnreadOnly bool
}

// NotificationRepository is the durable store for notification records.
// Every mutating query scopes by user_id; ownership is enforced in the WHERE
// clause, not in the application layer.
type NotificationRepository interface {
	Create(notification *domain.Notification) error
	FindByID(id string) (*domain.Notification, error)
	ListForUser(userID string, opts ListOptions) ([]domain.Notification, error)
	CountUnread(userID string) (int64, error)
	MarkRead(ids []string, userID string) (int64, error)
	MarkAllRead(userID string) (int64, error)
	Delete(id, userID string) error
	DeleteAll(userID string) (int64, error)
}

// notificationRepository implements NotificationRepository using GORM
type notificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository creates a new instance of notificationRepository
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(notification *domain.Notification) error {
	if notification.ID == "" {
		notification.ID = uuid.New().String()
	}
	if notification.Type == "" {
		notification.Type = domain.TypeGeneral
	}
	if notification.Data == nil {
		notification.Data = domain.JSONMap{}
	}
	notification.CreatedAt = time.Now()
	notification.UpdatedAt = time.Now()
	return r.db.Create(notification).Error
}

func (r *notificationRepository) FindByID(id string) (*domain.Notification, error) {
	var notification domain.Notification
	err := r.db.Where("id = ?", id).First(&notification).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &notification, nil
}

// activeScope restricts a query to rows inside their display window.
func activeScope(db *gorm.DB) *gorm.DB {
	return db.Where("expires_at IS NULL OR expires_at > ?", time.Now())
}

// ListForUser returns the user's active notifications, newest first.
func (r *notificationRepository) ListForUser(userID string, opts ListOptions) ([]domain.Notification, error) {
	var notifications []domain.Notification

	query := r.db.Scopes(activeScope).
		Where("user_id = ?", userID).
		Order("created_at DESC")

	if opts.UnreadOnly {
		query = query.Where("read = ?", false)
	}
	if opts.Limit > 0 {
		query = query.Limit(opts.Limit)
	}

	err := query.Find(&notifications).Error
	return notifications, err
}

func (r *notificationRepository) CountUnread(userID string) (int64, error) {
	var count int64
	err := r.db.Model(&domain.Notification{}).
		Scopes(activeScope).
		Where("user_id = ? AND read = ?", userID, false).
		Count(&count).Error
	return count, err
}

// MarkRead marks the given notifications read. Rows not owned by userID are
// silently skipped by the query itself.
func (r *notificationRepository) MarkRead(ids []string, userID string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := r.db.Model(&domain.Notification{}).
		Where("id IN ? AND user_id = ?", ids, userID).
		Updates(map[string]interface{}{
			"read":       true,
			"updated_at": time.Now(),
		})
	return result.RowsAffected, result.Error
}

func (r *notificationRepository) MarkAllRead(userID string) (int64, error) {
	result := r.db.Model(&domain.Notification{}).
		Scopes(activeScope).
		Where("user_id = ? AND read = ?", userID, false).
		Updates(map[string]interface{}{
			"read":       true,
			"updated_at": time.Now(),
		})
	return result.RowsAffected, result.Error
}

// Delete removes one notification after verifying ownership. Returns
// ErrNotFound both when the row is missing and when it belongs to someone
// else.
func (r *notificationRepository) Delete(id, userID string) error {
	var notification domain.Notification
	err := r.db.Where("id = ? AND user_id = ?", id, userID).First(&notification).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	return r.db.Delete(&notification).Error
}

func (r *notificationRepository) DeleteAll(userID string) (int64, error) {
	result := r.db.Where("user_id = ?", userID).Delete(&domain.Notification{})
	return result.RowsAffected, result.Error
}
