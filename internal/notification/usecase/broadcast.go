package usecase

import (
	"context"
	"log"

	authdomain "sinara-backend/internal/auth/domain"
	"sinara-backend/internal/notification/domain"

	"golang.org/x/sync/errgroup"
)

// BroadcastCoordinator fans one notification out to every active user
// matching a role set. Recipients are processed by a bounded worker pool;
// one recipient's failure never cancels or skips the others.
type BroadcastCoordinator struct {
	sender      Sender
	users       UserDirectory
	concurrency int
}

// NewBroadcastCoordinator creates a new BroadcastCoordinator
func NewBroadcastCoordinator(sender Sender, users UserDirectory, concurrency int) *BroadcastCoordinator {
	if concurrency <= 0 {
		concurrency = 8
	}
	return &BroadcastCoordinator{
		sender:      sender,
		users:       users,
		concurrency: concurrency,
	}
}

// BroadcastToRoles sends the notification to all active users whose role is
// in the given set. When the caller gave no type, a fallback derived from
// the role set is applied. Report entries keep recipient selection order
// regardless of which sends complete first.
func (b *BroadcastCoordinator) BroadcastToRoles(ctx context.Context, roles []string, input domain.NotificationInput) (*domain.BroadcastReport, error) {
	if len(roles) == 0 {
		roles = []string{authdomain.RoleAdmin, authdomain.RolePIC}
	}
	if input.Type == "" {
		input.Type = broadcastType(roles)
	}

	recipients, err := b.users.FindActiveByRoles(roles)
	if err != nil {
		return nil, err
	}

	report := &domain.BroadcastReport{
		Results:        make([]domain.RecipientResult, len(recipients)),
		RecipientCount: len(recipients),
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)

	for i, recipient := range recipients {
		g.Go(func() error {
			result, err := b.sender.SendToUser(ctx, recipient.ID, input)
			if err != nil {
				log.Printf("[Broadcast] Send to user %s failed: %v", recipient.ID, err)
				if result == nil {
					result = &domain.DeliveryResult{Success: false, Message: err.Error()}
				}
			}
			report.Results[i] = domain.RecipientResult{
				UserID: recipient.ID,
				Email:  recipient.Email,
				Role:   recipient.Role,
				Result: *result,
			}
			// Errors are recorded per recipient, never propagated: a
			// failed send must not cancel the group.
			return nil
		})
	}
	_ = g.Wait()

	for _, r := range report.Results {
		if r.Result.Success {
			report.SuccessCount++
		} else {
			report.FailedCount++
		}
		report.TotalPushSent += r.Result.SentCount
	}

	return report, nil
}

// broadcastType picks the category fallback for a role set.
func broadcastType(roles []string) string {
	if len(roles) == 1 {
		switch roles[0] {
		case authdomain.RolePIC:
			return domain.TypePICBroadcast
		case authdomain.RoleAdmin:
			return domain.TypeAdminBroadcast
		}
	}
	return domain.TypeBroadcast
}
