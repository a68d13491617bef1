package repository

import (
	"time"

	authdomain "sinara-backend/internal/auth/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DeviceSessionRepository maintains device sessions and the set of live push
// tokens derived from them. Session lifecycle (create/revoke/expiry) belongs
// to auth; the notification core only reads live tokens and clears tokens the
// provider reported dead.
type DeviceSessionRepository interface {
	Create(session *authdomain.DeviceSession) error
	FindByID(id string) (*authdomain.DeviceSession, error)
	Revoke(id string) error
	SetPushToken(sessionID, userID, token string) error
	ClearPushToken(sessionID, userID string) error
	LiveTokens(userID string) ([]authdomain.LiveToken, error)
	InvalidateTokens(tokens []string) (int64, error)
}

type deviceSessionRepository struct {
	db *gorm.DB
}

// NewDeviceSessionRepository creates a new instance of deviceSessionRepository
func NewDeviceSessionRepository(db *gorm.DB) DeviceSessionRepository {
	return &deviceSessionRepository{db: db}
}

func (r *deviceSessionRepository) Create(session *authdomain.DeviceSession) error {
	if session.ID == "" {
		session.ID = uuid.New().String()
	}
	session.CreatedAt = time.Now()
	session.UpdatedAt = time.Now()
	return r.db.Create(session).Error
}

func (r *deviceSessionRepository) FindByID(id string) (*authdomain.DeviceSession, error) {
	var session authdomain.DeviceSession
	err := r.db.Where("id = ?", id).First(&session).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &session, nil
}

func (r *deviceSessionRepository) Revoke(id string) error {
	return r.db.Model(&authdomain.DeviceSession{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"is_revoked": true,
			"updated_at": time.Now(),
		}).Error
}

// SetPushToken registers a push token on the caller's own session.
func (r *deviceSessionRepository) SetPushToken(sessionID, userID, token string) error {
	return r.db.Model(&authdomain.DeviceSession{}).
		Where("id = ? AND user_id = ?", sessionID, userID).
		Updates(map[string]interface{}{
			"push_token": token,
			"updated_at": time.Now(),
		}).Error
}

func (r *deviceSessionRepository) ClearPushToken(sessionID, userID string) error {
	return r.db.Model(&authdomain.DeviceSession{}).
		Where("id = ? AND user_id = ?", sessionID, userID).
		Updates(map[string]interface{}{
			"push_token": nil,
			"updated_at": time.Now(),
		}).Error
}

// LiveTokens returns push targets for every non-revoked, non-expired session
// of the user that has a token registered. Order is not meaningful.
func (r *deviceSessionRepository) LiveTokens(userID string) ([]authdomain.LiveToken, error) {
	var sessions []authdomain.DeviceSession
	err := r.db.
		Where("user_id = ? AND is_revoked = ? AND push_token IS NOT NULL AND expires_at > ?",
			userID, false, time.Now()).
		Find(&sessions).Error
	if err != nil {
		return nil, err
	}

	tokens := make([]authdomain.LiveToken, 0, len(sessions))
	for _, s := range sessions {
		if s.PushToken == nil || *s.PushToken == "" {
			continue
		}
		tokens = append(tokens, authdomain.LiveToken{
			Token:     *s.PushToken,
			SessionID: s.ID,
			DeviceID:  s.DeviceID,
		})
	}
	return tokens, nil
}

// InvalidateTokens clears the push token on every session holding one of the
// given tokens. Bulk update on purpose: if two session rows ever share a
// token, both must be cleared. Returns the number of rows mutated.
func (r *deviceSessionRepository) InvalidateTokens(tokens []string) (int64, error) {
	if len(tokens) == 0 {
		return 0, nil
	}
	result := r.db.Model(&authdomain.DeviceSession{}).
		Where("push_token IN ?", tokens).
		Updates(map[string]interface{}{
			"push_token": nil,
			"updated_at": time.Now(),
		})
	return result.RowsAffected, result.Error
}
