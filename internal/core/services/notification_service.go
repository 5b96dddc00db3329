package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"condovia/internal/adapters/persistence/repositories"
	"condovia/internal/config"
)

// NotificationService delivers push notifications to registered device
// tokens. When no push credential is configured the service degrades to
// simulated sends: each delivery is logged and counted, nothing leaves
// the process. Business flows treat both modes the same.
type NotificationService struct {
	pushConfig   config.PushConfig
	deviceRepo   *repositories.DeviceTokenRepository
	residentRepo *repositories.ResidentRepository
	propertyRepo *repositories.PropertyRepository
	userRepo     repositories.UserRepository
	httpClient   *http.Client
}

// DispatchResult reports the outcome of one notification fan-out
type DispatchResult struct {
	Requested int  `json:"requested"`
	Sent      int  `json:"sent"`
	Failed    int  `json:"failed"`
	Simulated bool `json:"simulated"`
}

type pushMessage struct {
	To           string            `json:"to"`
	Notification pushNotification  `json:"notification"`
	Data         map[string]string `json:"data,omitempty"`
}

type pushNotification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// NewNotificationService creates a new notification service
func NewNotificationService(
	pushConfig config.PushConfig,
	deviceRepo *repositories.DeviceTokenRepository,
	residentRepo *repositories.ResidentRepository,
	propertyRepo *repositories.PropertyRepository,
	userRepo repositories.UserRepository,
) *NotificationService {
	if pushConfig.ServerKey == "" {
		log.Println("⚠️ PUSH_SERVER_KEY not set, push notifications will be simulated")
	}
	return &NotificationService{
		pushConfig:   pushConfig,
		deviceRepo:   deviceRepo,
		residentRepo: residentRepo,
		propertyRepo: propertyRepo,
		userRepo:     userRepo,
		httpClient:   &http.Client{Timeout: 10 * time.Second},
	}
}

// NotifyUsers sends a notification to every active device of the given users
func (s *NotificationService) NotifyUsers(ctx context.Context, userIDs []uint, title, body string, data map[string]string) (*DispatchResult, error) {
	if len(userIDs) == 0 {
		return &DispatchResult{Simulated: s.simulated()}, nil
	}

	tokens, err := s.deviceRepo.ListActiveByUsers(ctx, userIDs)
	if err != nil {
		return nil, err
	}

	result := &DispatchResult{Requested: len(tokens), Simulated: s.simulated()}
	for _, token := range tokens {
		if err := s.send(ctx, token.Token, title, body, data); err != nil {
			log.Printf("⚠️ Push delivery failed for token %d: %v", token.ID, err)
			result.Failed++
			continue
		}
		result.Sent++
	}
	return result, nil
}

// NotifyProperty sends a notification to the property owner and every
// resident of the property. Owners without a resident profile are still
// reached.
func (s *NotificationService) NotifyProperty(ctx context.Context, propertyID uint, title, body string, data map[string]string) (*DispatchResult, error) {
	property, err := s.propertyRepo.GetByID(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	residents, err := s.residentRepo.ListByProperty(ctx, propertyID)
	if err != nil {
		return nil, err
	}

	userIDs := make([]uint, 0, len(residents)+1)
	if property.OwnerID != nil {
		userIDs = append(userIDs, *property.OwnerID)
	}
	for _, resident := range residents {
		if property.OwnerID != nil && resident.UserID == *property.OwnerID {
			continue
		}
		userIDs = append(userIDs, resident.UserID)
	}
	return s.NotifyUsers(ctx, userIDs, title, body, data)
}

// Broadcast sends a notification to every active user
func (s *NotificationService) Broadcast(ctx context.Context, title, body string, data map[string]string) (*DispatchResult, error) {
	users, err := s.userRepo.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	userIDs := make([]uint, 0, len(users))
	for _, user := range users {
		userIDs = append(userIDs, user.ID)
	}
	return s.NotifyUsers(ctx, userIDs, title, body, data)
}

func (s *NotificationService) simulated() bool {
	return s.pushConfig.ServerKey == ""
}

func (s *NotificationService) send(ctx context.Context, token, title, body string, data map[string]string) error {
	if s.simulated() {
		log.Printf("📨 Simulated push to %s: %s", maskToken(token), title)
		return nil
	}

	payload, err := json.Marshal(pushMessage{
		To:           token,
		Notification: pushNotification{Title: title, Body: body},
		Data:         data,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.pushConfig.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "key="+s.pushConfig.ServerKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("push endpoint returned status %d", resp.StatusCode)
	}
	return nil
}

func maskToken(token string) string {
	if len(token) <= 8 {
		return "********"
	}
	return token[:4] + "..." + token[len(token)-4:]
}
