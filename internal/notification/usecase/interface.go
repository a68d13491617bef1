package usecase

import (
	"context"

	authdomain "sinara-backend/internal/auth/domain"
	"sinara-backend/internal/notification/domain"
	"sinara-backend/pkg/fcm"
)

// ProviderGateway is the push provider seen by the dispatcher. Availability
// is a first-class state: a process without push credentials still serves
// the in-app inbox.
type ProviderGateway interface {
	Available() bool
	SendMulticast(ctx context.Context, tokens []string, notification fcm.NotificationData) (*fcm.MulticastResult, error)
}

// TokenRegistry resolves live push tokens and clears dead ones. Implemented
// by the device session repository.
type TokenRegistry interface {
	LiveTokens(userID string) ([]authdomain.LiveToken, error)
	InvalidateTokens(tokens []string) (int64, error)
}

// UserDirectory selects broadcast recipients.
type UserDirectory interface {
	FindActiveByRoles(roles []string) ([]authdomain.User, error)
}

// Sender dispatches one notification to one user.
type Sender interface {
	SendToUser(ctx context.Context, userID string, input domain.NotificationInput) (*domain.DeliveryResult, error)
}
