package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"sinara-backend/internal/notification/domain"
	"sinara-backend/internal/notification/repository"
	"sinara-backend/pkg/fcm"
)

// ErrProviderUnavailable is returned when the process has no usable push
// credentials. Nothing is persisted in that case.
var ErrProviderUnavailable = errors.New("push notifications are not configured")

// PushDispatcher orchestrates one user's notification: persist the record,
// resolve live tokens, multicast, classify per-token outcomes, and clear
// tokens the provider reported dead. Persistence happens first and is the
// primary contract; push delivery is best-effort on top of it.
type PushDispatcher struct {
	store      repository.NotificationRepository
	registry   TokenRegistry
	gateway    ProviderGateway
	fcmTimeout time.Duration
}

// NewPushDispatcher creates a new PushDispatcher
func NewPushDispatcher(store repository.NotificationRepository, registry TokenRegistry, gateway ProviderGateway, fcmTimeout time.Duration) *PushDispatcher {
	if fcmTimeout <= 0 {
		fcmTimeout = 10 * time.Second
	}
	return &PushDispatcher{
		store:      store,
		registry:   registry,
		gateway:    gateway,
		fcmTimeout: fcmTimeout,
	}
}

// SendToUser persists a notification for the user and pushes it to every
// live device. The only hard failure is the persistence write; everything
// after it degrades into a still-successful result, because the durable
// record is visible in-app regardless of push outcome.
func (d *PushDispatcher) SendToUser(ctx context.Context, userID string, input domain.NotificationInput) (*domain.DeliveryResult, error) {
	if !d.gateway.Available() {
		return &domain.DeliveryResult{
			Success: false,
			Message: "push notifications are not configured",
		}, ErrProviderUnavailable
	}

	notification := &domain.Notification{
		UserID:    userID,
		Title:     input.Title,
		Body:      input.Body,
		Type:      input.Type,
		ImageURL:  input.ImageURL,
		ActionURL: input.ActionURL,
		Data:      domain.JSONMap(input.Data),
		ExpiresAt: input.ExpiresAt,
	}
	if err := d.store.Create(notification); err != nil {
		return nil, fmt.Errorf("failed to persist notification: %w", err)
	}

	tokens, err := d.registry.LiveTokens(userID)
	if err != nil {
		// The record exists and is visible in-app; report the degraded
		// send instead of failing the call.
		log.Printf("[Dispatch] Token lookup failed for user %s: %v", userID, err)
		return &domain.DeliveryResult{
			Success:        true,
			NotificationID: notification.ID,
			Message:        "notification saved, device lookup failed",
		}, nil
	}

	if len(tokens) == 0 {
		return &domain.DeliveryResult{
			Success:        true,
			NotificationID: notification.ID,
			Message:        "notification saved, no active devices",
		}, nil
	}

	tokenStrings := make([]string, len(tokens))
	for i, t := range tokens {
		tokenStrings[i] = t.Token
	}

	result, err := d.multicast(ctx, tokenStrings, notification)
	if err != nil {
		// Transport failure or timeout: every token in the batch counts
		// as a transient failure, none get invalidated.
		log.Printf("[Dispatch] Multicast failed for notification %s: %v", notification.ID, err)
		return &domain.DeliveryResult{
			Success:        true,
			NotificationID: notification.ID,
			SentCount:      0,
			FailedCount:    len(tokenStrings),
			TotalTokens:    len(tokenStrings),
			Message:        "notification saved, push delivery failed",
		}, nil
	}

	if len(result.DeadTokens) > 0 {
		// Best-effort cleanup; a failure here never affects the result.
		count, err := d.registry.InvalidateTokens(result.DeadTokens)
		if err != nil {
			log.Printf("[Dispatch] Failed to invalidate %d dead tokens: %v", len(result.DeadTokens), err)
		} else {
			log.Printf("[Dispatch] Invalidated %d dead tokens (%d sessions)", len(result.DeadTokens), count)
		}
	}

	message := fmt.Sprintf("notification sent to %d of %d devices", result.SuccessCount, len(tokenStrings))
	return &domain.DeliveryResult{
		Success:        true,
		NotificationID: notification.ID,
		SentCount:      result.SuccessCount,
		FailedCount:    result.FailureCount,
		TotalTokens:    len(tokenStrings),
		Message:        message,
	}, nil
}

// multicast builds the provider payload and sends one batch call for all
// tokens. Reserved data keys are written last so caller data cannot shadow
// them.
func (d *PushDispatcher) multicast(ctx context.Context, tokens []string, notification *domain.Notification) (*fcm.MulticastResult, error) {
	data := make(map[string]string, len(notification.Data)+3)
	for k, v := range notification.Data {
		data[k] = v
	}
	if notification.ActionURL != "" {
		data["actionUrl"] = notification.ActionURL
	}
	data[domain.DataKeyNotificationID] = notification.ID
	data[domain.DataKeyType] = notification.Type
	data[domain.DataKeyClickAction] = domain.ClickActionOpenNotification

	ctx, cancel := context.WithTimeout(ctx, d.fcmTimeout)
	defer cancel()

	return d.gateway.SendMulticast(ctx, tokens, fcm.NotificationData{
		Title:    notification.Title,
		Body:     notification.Body,
		ImageURL: notification.ImageURL,
		Data:     data,
	})
}
