package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	authdomain "sinara-backend/internal/auth/domain"
	"sinara-backend/internal/notification/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDirectory serves a fixed recipient list.
type fakeDirectory struct {
	users    []authdomain.User
	err      error
	gotRoles []string
}

func (d *fakeDirectory) FindActiveByRoles(roles []string) ([]authdomain.User, error) {
	d.gotRoles = roles
	if d.err != nil {
		return nil, d.err
	}
	return d.users, nil
}

// fakeSender scripts per-user outcomes and records inputs.
type fakeSender struct {
	mu      sync.Mutex
	results map[string]*domain.DeliveryResult
	errs    map[string]error
	inputs  map[string]domain.NotificationInput
}

func newFakeSender() *fakeSender {
	return &fakeSender{
		results: make(map[string]*domain.DeliveryResult),
		errs:    make(map[string]error),
		inputs:  make(map[string]domain.NotificationInput),
	}
}

func (s *fakeSender) SendToUser(ctx context.Context, userID string, input domain.NotificationInput) (*domain.DeliveryResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inputs[userID] = input
	if err, ok := s.errs[userID]; ok {
		return nil, err
	}
	if r, ok := s.results[userID]; ok {
		return r, nil
	}
	return &domain.DeliveryResult{Success: true, SentCount: 1, TotalTokens: 1}, nil
}

func users(pairs ...[2]string) []authdomain.User {
	out := make([]authdomain.User, 0, len(pairs))
	for _, s := range pairs {
		out = append(out, authdomain.User{ID: s[0], Email: s[0] + "@example.com", Role: s[1], IsActive: true})
	}
	return out
}

func TestBroadcastToRoles_AggregatesPerRecipient(t *testing.T) {
	directory := &fakeDirectory{users: users(
		[2]string{"admin-1", authdomain.RoleAdmin},
		[2]string{"admin-2", authdomain.RoleAdmin},
		[2]string{"pic-1", authdomain.RolePIC},
	)}
	sender := newFakeSender()
	sender.results["admin-1"] = &domain.DeliveryResult{Success: true, SentCount: 2, TotalTokens: 2}
	sender.errs["admin-2"] = errors.New("persistence failed")

	b := NewBroadcastCoordinator(sender, directory, 4)
	report, err := b.BroadcastToRoles(context.Background(), []string{authdomain.RoleAdmin, authdomain.RolePIC}, domain.NotificationInput{Title: "T", Body: "B"})

	require.NoError(t, err)
	assert.Equal(t, 3, report.RecipientCount)
	assert.Equal(t, 2, report.SuccessCount)
	assert.Equal(t, 1, report.FailedCount)
	assert.Equal(t, 3, report.TotalPushSent)
	require.Len(t, report.Results, 3)

	// Results preserve recipient selection order even under concurrency.
	assert.Equal(t, "admin-1", report.Results[0].UserID)
	assert.Equal(t, "admin-2", report.Results[1].UserID)
	assert.Equal(t, "pic-1", report.Results[2].UserID)
	assert.False(t, report.Results[1].Result.Success)
	assert.Equal(t, authdomain.RolePIC, report.Results[2].Role)
}

func TestBroadcastToRoles_DefaultsToAdminAndPIC(t *testing.T) {
	directory := &fakeDirectory{}
	b := NewBroadcastCoordinator(newFakeSender(), directory, 1)

	_, err := b.BroadcastToRoles(context.Background(), nil, domain.NotificationInput{Title: "T", Body: "B"})

	require.NoError(t, err)
	assert.Equal(t, []string{authdomain.RoleAdmin, authdomain.RolePIC}, directory.gotRoles)
}

func TestBroadcastToRoles_TypeFallbackPerVariant(t *testing.T) {
	tests := []struct {
		name     string
		roles    []string
		expected string
	}{
		{"pic only", []string{authdomain.RolePIC}, domain.TypePICBroadcast},
		{"admin only", []string{authdomain.RoleAdmin}, domain.TypeAdminBroadcast},
		{"mixed", []string{authdomain.RoleAdmin, authdomain.RolePIC}, domain.TypeBroadcast},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			directory := &fakeDirectory{users: users([2]string{"u-1", tt.roles[0]})}
			sender := newFakeSender()
			b := NewBroadcastCoordinator(sender, directory, 2)

			_, err := b.BroadcastToRoles(context.Background(), tt.roles, domain.NotificationInput{Title: "T", Body: "B"})

			require.NoError(t, err)
			assert.Equal(t, tt.expected, sender.inputs["u-1"].Type)
		})
	}
}

func TestBroadcastToRoles_CallerTypeWins(t *testing.T) {
	directory := &fakeDirectory{users: users([2]string{"u-1", authdomain.RoleAdmin})}
	sender := newFakeSender()
	b := NewBroadcastCoordinator(sender, directory, 2)

	_, err := b.BroadcastToRoles(context.Background(), []string{authdomain.RoleAdmin}, domain.NotificationInput{Title: "T", Body: "B", Type: "month_close"})

	require.NoError(t, err)
	assert.Equal(t, "month_close", sender.inputs["u-1"].Type)
}

func TestBroadcastToRoles_DirectoryFailure(t *testing.T) {
	directory := &fakeDirectory{err: errors.New("query failed")}
	b := NewBroadcastCoordinator(newFakeSender(), directory, 2)

	report, err := b.BroadcastToRoles(context.Background(), []string{authdomain.RoleAdmin}, domain.NotificationInput{Title: "T", Body: "B"})

	require.Error(t, err)
	assert.Nil(t, report)
}

func TestBroadcastToRoles_ManyRecipientsBoundedPool(t *testing.T) {
	var recipients []authdomain.User
	for i := 0; i < 50; i++ {
		recipients = append(recipients, authdomain.User{
			ID:       fmt.Sprintf("user-%02d", i),
			Role:     authdomain.RolePIC,
			IsActive: true,
		})
	}
	directory := &fakeDirectory{users: recipients}
	b := NewBroadcastCoordinator(newFakeSender(), directory, 8)

	report, err := b.BroadcastToRoles(context.Background(), []string{authdomain.RolePIC}, domain.NotificationInput{Title: "T", Body: "B"})

	require.NoError(t, err)
	assert.Equal(t, 50, report.RecipientCount)
	assert.Equal(t, 50, report.SuccessCount)
	assert.Equal(t, 50, report.TotalPushSent)
	for i, r := range report.Results {
		assert.Equal(t, recipients[i].ID, r.UserID)
	}
}
