package usecase

import (
	"context"
	"testing"
	"time"

	authdomain "sinara-backend/internal/auth/domain"
	authrepo "sinara-backend/internal/auth/repository"
	"sinara-backend/internal/notification/domain"
	notifrepo "sinara-backend/internal/notification/repository"
	"sinara-backend/pkg/fcm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Wires the dispatcher to real GORM repositories on an in-memory database,
// with only the provider scripted.
func setupPipeline(t *testing.T, gateway ProviderGateway) (*PushDispatcher, authrepo.DeviceSessionRepository, notifrepo.NotificationRepository) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&authdomain.DeviceSession{}, &domain.Notification{}))

	sessionRepo := authrepo.NewDeviceSessionRepository(db)
	notificationRepo := notifrepo.NewNotificationRepository(db)
	return NewPushDispatcher(notificationRepo, sessionRepo, gateway, time.Second), sessionRepo, notificationRepo
}

func registerDevice(t *testing.T, repo authrepo.DeviceSessionRepository, userID, deviceID, token string) *authdomain.DeviceSession {
	t.Helper()
	s := &authdomain.DeviceSession{
		UserID:    userID,
		DeviceID:  deviceID,
		PushToken: &token,
		ExpiresAt: time.Now().Add(time.Hour),
	}
	require.NoError(t, repo.Create(s))
	return s
}

func TestSendToUser_DeadTokenSessionCleared(t *testing.T) {
	gateway := &fakeGateway{
		available: true,
		result: &fcm.MulticastResult{
			SuccessCount: 2,
			FailureCount: 1,
			DeadTokens:   []string{"tok-2"},
		},
	}
	dispatcher, sessionRepo, _ := setupPipeline(t, gateway)

	s1 := registerDevice(t, sessionRepo, "user-1", "phone", "tok-1")
	s2 := registerDevice(t, sessionRepo, "user-1", "tablet", "tok-2")
	s3 := registerDevice(t, sessionRepo, "user-1", "laptop", "tok-3")

	result, err := dispatcher.SendToUser(context.Background(), "user-1", domain.NotificationInput{Title: "Test", Body: "ok"})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 3, result.TotalTokens)

	cleared, err := sessionRepo.FindByID(s2.ID)
	require.NoError(t, err)
	assert.Nil(t, cleared.PushToken)

	for _, s := range []*authdomain.DeviceSession{s1, s3} {
		kept, err := sessionRepo.FindByID(s.ID)
		require.NoError(t, err)
		assert.NotNil(t, kept.PushToken)
	}
}

func TestSendToUser_PersistsRecordVisibleInInbox(t *testing.T) {
	gateway := &fakeGateway{available: true}
	dispatcher, _, notificationRepo := setupPipeline(t, gateway)

	result, err := dispatcher.SendToUser(context.Background(), "user-1", domain.NotificationInput{
		Title: "Cash advance approved",
		Body:  "CA-9 was approved",
		Type:  "cash_advance",
		Data:  map[string]string{"caId": "CA-9"},
	})
	require.NoError(t, err)
	require.True(t, result.Success)

	list, err := notificationRepo.ListForUser("user-1", notifrepo.ListOptions{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, result.NotificationID, list[0].ID)
	assert.Equal(t, "cash_advance", list[0].Type)
	assert.Equal(t, "CA-9", list[0].Data["caId"])
	assert.False(t, list[0].Read)

	count, err := notificationRepo.CountUnread("user-1")
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}
