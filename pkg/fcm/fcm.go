package fcm

import (
	"context"
	"fmt"
	"log"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

// MessagingClient is the subset of the Firebase Messaging API used by this package.
// *messaging.Client satisfies it; tests substitute a fake.
type MessagingClient interface {
	SendEachForMulticast(ctx context.Context, msg *messaging.MulticastMessage) (*messaging.BatchResponse, error)
}

// Client wraps Firebase Cloud Messaging. A Client constructed without valid
// credentials stays in a permanently unavailable state instead of failing the
// process: notifications are still persisted and readable in-app, only the
// push channel is off.
type Client struct {
	messagingClient MessagingClient
}

// NewClient initializes the Firebase app and messaging client. Initialization
// errors are logged and produce an unavailable client, never a fatal error.
func NewClient(credentialsFile string) *Client {
	if credentialsFile == "" {
		log.Println("[FCM] No Firebase credentials configured, push notifications disabled")
		return &Client{}
	}

	ctx := context.Background()
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		log.Printf("[FCM] Failed to initialize Firebase app (push notifications disabled): %v", err)
		return &Client{}
	}

	messagingClient, err := app.Messaging(ctx)
	if err != nil {
		log.Printf("[FCM] Failed to get messaging client (push notifications disabled): %v", err)
		return &Client{}
	}

	log.Println("[FCM] Client initialized successfully")
	return &Client{messagingClient: messagingClient}
}

// NewClientWithMessaging wires an already-built messaging client. Used by tests.
func NewClientWithMessaging(mc MessagingClient) *Client {
	return &Client{messagingClient: mc}
}

// Available reports whether the push channel is usable for this process.
func (c *Client) Available() bool {
	return c != nil && c.messagingClient != nil
}

// NotificationData contains the data to send in a push notification
type NotificationData struct {
	Title    string
	Body     string
	ImageURL string            // Optional notification image
	Data     map[string]string // Custom data payload
}

// MulticastResult reports per-batch delivery accounting.
type MulticastResult struct {
	SuccessCount int
	FailureCount int
	// DeadTokens are tokens the provider classified as permanently
	// undeliverable (unregistered or malformed). Transient failures are
	// counted in FailureCount but not listed here.
	DeadTokens []string
}

// SendMulticast sends one push notification to multiple device tokens in a
// single batch call. The caller must pass at least one token.
func (c *Client) SendMulticast(ctx context.Context, tokens []string, notification NotificationData) (*MulticastResult, error) {
	if !c.Available() {
		return nil, fmt.Errorf("fcm client not initialized")
	}

	message := &messaging.MulticastMessage{
		Tokens: tokens,
		Notification: &messaging.Notification{
			Title:    notification.Title,
			Body:     notification.Body,
			ImageURL: notification.ImageURL,
		},
		Data: notification.Data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				Sound: "default",
			},
		},
		APNS: &messaging.APNSConfig{
			Headers: map[string]string{
				"apns-priority":  "10",
				"apns-push-type": "alert",
			},
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					Sound: "default",
					Badge: intPtr(1),
				},
			},
		},
	}

	response, err := c.messagingClient.SendEachForMulticast(ctx, message)
	if err != nil {
		return nil, fmt.Errorf("failed to send FCM multicast message: %w", err)
	}

	result := &MulticastResult{
		SuccessCount: response.SuccessCount,
		FailureCount: response.FailureCount,
	}

	for i, resp := range response.Responses {
		if resp.Success {
			continue
		}
		// Unregistered or malformed tokens are garbage and should be
		// cleaned up; everything else may succeed on the next send.
		if messaging.IsRegistrationTokenNotRegistered(resp.Error) || messaging.IsInvalidArgument(resp.Error) {
			result.DeadTokens = append(result.DeadTokens, tokens[i])
		}
	}

	log.Printf("[FCM] Multicast sent: %d success, %d failures (%d dead tokens)",
		result.SuccessCount, result.FailureCount, len(result.DeadTokens))

	return result, nil
}

func intPtr(i int) *int {
	return &i
}
