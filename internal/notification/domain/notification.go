package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// Default notification categories. Callers may pass any free-form type;
// these are the fallbacks applied when none is given.
const (
	TypeGeneral        = "general"
	TypeBroadcast      = "broadcast"
	TypePICBroadcast   = "pic_broadcast"
	TypeAdminBroadcast = "admin_broadcast"
)

// Reserved keys in the push data payload. The dispatcher writes these last,
// so caller-supplied data can never shadow them.
const (
	DataKeyNotificationID = "notificationId"
	DataKeyType           = "type"
	DataKeyClickAction    = "click_action"

	ClickActionOpenNotification = "OPEN_NOTIFICATION"
)

// JSONMap is an opaque string-to-string payload stored as a JSON column.
type JSONMap map[string]string

func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		m = JSONMap{}
	}
	return json.Marshal(m)
}

func (m *JSONMap) Scan(value interface{}) error {
	if value == nil {
		*m = JSONMap{}
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("unsupported type for JSONMap")
	}
	return json.Unmarshal(bytes, m)
}

// Notification is the durable record. It is created exactly once per send,
// before any push attempt, and survives regardless of push outcome.
type Notification struct {
	ID        string     `json:"id" gorm:"primaryKey"`
	UserID    string     `json:"user_id" gorm:"index;not null"`
	Title     string     `json:"title" gorm:"not null"`
	Body      string     `json:"body" gorm:"not null"`
	Type      string     `json:"type" gorm:"index;default:general"`
	ImageURL  string     `json:"image_url,omitempty"`
	ActionURL string     `json:"action_url,omitempty"`
	Data      JSONMap    `json:"data" gorm:"type:json"`
	Read      bool       `json:"read" gorm:"default:false"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Active reports whether the notification is inside its display window.
// Expired rows are excluded from queries but never deleted automatically.
func (n *Notification) Active(now time.Time) bool {
	return n.ExpiresAt == nil || n.ExpiresAt.After(now)
}

// NotificationInput carries the caller-supplied fields of a send.
type NotificationInput struct {
	Title     string            `json:"title" binding:"required"`
	Body      string            `json:"body" binding:"required"`
	Type      string            `json:"type"`
	ImageURL  string            `json:"image_url"`
	ActionURL string            `json:"action_url"`
	Data      map[string]string `json:"data"`
	ExpiresAt *time.Time        `json:"expires_at"`
}

// DeliveryResult reports the outcome of a single-user send. The durable
// record id is present whenever persistence succeeded, even if every push
// attempt failed.
type DeliveryResult struct {
	Success        bool   `json:"success"`
	NotificationID string `json:"notification_id,omitempty"`
	SentCount      int    `json:"sent_count"`
	FailedCount    int    `json:"failed_count"`
	TotalTokens    int    `json:"total_tokens"`
	Message        string `json:"message"`
}

// RecipientResult is one broadcast recipient's delivery outcome.
type RecipientResult struct {
	UserID string         `json:"user_id"`
	Email  string         `json:"email"`
	Role   string         `json:"role"`
	Result DeliveryResult `json:"result"`
}

// BroadcastReport aggregates per-recipient outcomes. Results preserve
// recipient iteration order regardless of completion order.
type BroadcastReport struct {
	Results        []RecipientResult `json:"results"`
	RecipientCount int               `json:"recipient_count"`
	SuccessCount   int               `json:"success_count"`
	FailedCount    int               `json:"failed_count"`
	TotalPushSent  int               `json:"total_push_sent"`
}
