package domain

import "time"

// DeviceSession is one logged-in device for a user. A session may optionally
// register a push token; a token is live only while the session is neither
// revoked nor expired.
type DeviceSession struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	UserID    string    `json:"user_id" gorm:"index;not null"`
	DeviceID  string    `json:"device_id"`
	PushToken *string   `json:"-" gorm:"index"` // Don't expose token in JSON
	IsRevoked bool      `json:"is_revoked" gorm:"default:false"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Live reports whether the session's push token can be used for delivery.
func (s *DeviceSession) Live(now time.Time) bool {
	return !s.IsRevoked && s.PushToken != nil && *s.PushToken != "" && s.ExpiresAt.After(now)
}

// LiveToken is a resolved push target for one device session.
type LiveToken struct {
	Token     string
	SessionID string
	DeviceID  string
}
