package services

import (
	"context"
	"errors"
	"fmt"

	"memory-map-backend/internal/config"
	"memory-map-backend/internal/models"

	"github.com/rs/zerolog/log"
	"github.com/sideshow/apns2"
	"github.com/sideshow/apns2/certificate"
	"github.com/sideshow/apns2/payload"
)

// Pusher delivers a single notification; *apns2.Client satisfies it
type Pusher interface {
	PushWithContext(ctx apns2.Context, n *apns2.Notification) (*apns2.Response, error)
}

// PushService sends an APNs alert to friends' devices when a memory is added
type PushService struct {
	client Pusher
	topic  string
	users  userLookup
}

// userLookup resolves recipients to their device tokens; *UserService satisfies it
type userLookup interface {
	GetUser(ctx context.Context, userID string) (*models.User, error)
}

// NewPushService creates a push service from config; it returns nil when no
// certificate is configured
func NewPushService(cfg config.APNSConfig, users userLookup) (*PushService, error) {
	if cfg.CertFile == "" {
		return nil, nil
	}
	cert, err := certificate.FromP12File(cfg.CertFile, cfg.CertPassword)
	if err != nil {
		return nil, fmt.Errorf("failed to load APNs certificate: %w", err)
	}
	client := apns2.NewClient(cert).Development()
	if cfg.Production {
		client = client.Production()
	}
	return NewPushServiceWithClient(client, cfg.Topic, users), nil
}

// NewPushServiceWithClient creates a push service around an existing client
func NewPushServiceWithClient(client Pusher, topic string, users userLookup) *PushService {
	return &PushService{client: client, topic: topic, users: users}
}

// MemoryAdded pushes to every recipient except the owner who has a device token
func (s *PushService) MemoryAdded(ctx context.Context, memory models.Memory, recipientIDs []string) {
	body := payload.NewPayload().
		AlertTitle("New memory nearby").
		AlertBody(fmt.Sprintf("%s (%s)", memory.Location, memory.Date)).
		Custom("memory_id", memory.ID).
		Sound("default")

	for _, userID := range recipientIDs {
		if userID == memory.OwnerID {
			continue
		}
		user, err := s.users.GetUser(ctx, userID)
		if errors.Is(err, ErrUserNotFound) {
			log.Debug().Str("user_id", userID).Msg("Push recipient no longer exists")
			continue
		}
		if err != nil {
			log.Error().Err(err).Str("user_id", userID).Msg("Failed to load user for push")
			continue
		}
		if user.PushToken == nil || *user.PushToken == "" {
			continue
		}

		res, err := s.client.PushWithContext(ctx, &apns2.Notification{
			DeviceToken: *user.PushToken,
			Topic:       s.topic,
			Payload:     body,
		})
		if err != nil {
			log.Error().Err(err).Str("user_id", userID).Msg("Failed to send push notification")
			continue
		}
		if !res.Sent() {
			log.Warn().
				Str("user_id", userID).
				Int("status", res.StatusCode).
				Str("reason", res.Reason).
				Msg("Push notification rejected")
		}
	}
}
