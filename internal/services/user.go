package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"remindly-backend/internal/apperrors"
	"remindly-backend/internal/models"

	"github.com/golang-jwt/jwt/v5"
	svix "github.com/svix/svix-webhooks/go"
)

const (
	jwtExpDays = 365

	EventUserCreated = "user.created"
	EventUserUpdated = "user.updated"
)

// UserService handles user-related business logic
type UserService struct {
	userRepo  UserRepository
	jwtSecret string
	webhook   *svix.Webhook
}

// NewUserService creates a new user service. An empty webhookSecret leaves
// identity events disabled.
func NewUserService(userRepo UserRepository, jwtSecret, webhookSecret string) (*UserService, error) {
	s := &UserService{
		userRepo:  userRepo,
		jwtSecret: jwtSecret,
	}
	if webhookSecret != "" {
		wh, err := svix.NewWebhook(webhookSecret)
		if err != nil {
			return nil, fmt.Errorf("failed to create webhook verifier: %w", err)
		}
		s.webhook = wh
	}
	return s, nil
}

// GenerateJWT signs a token for userID. Production tokens come from the
// identity provider; this is used by tooling and tests.
func (s *UserService) GenerateJWT(userID string) (string, error) {
	claims := jwt.MapClaims{
		"sub": userID,
		"exp": time.Now().AddDate(0, 0, jwtExpDays).Unix(),
		"iat": time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// ValidateJWT validates a JWT token and returns the user ID
func (s *UserService) ValidateJWT(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})

	if err != nil {
		return "", fmt.Errorf("failed to parse token: %w", err)
	}

	if !token.Valid {
		return "", fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("invalid token claims")
	}

	if sub, _ := claims["sub"].(string); sub != "" {
		return sub, nil
	}
	if userID, _ := claims["user_id"].(string); userID != "" {
		return userID, nil
	}
	return "", fmt.Errorf("user id not found in token")
}

// GetUser returns the stored user
func (s *UserService) GetUser(ctx context.Context, userID string) (*models.User, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	return s.userRepo.GetByID(ctx, userID)
}

// IdentityEvent is the identity provider's user event envelope
type IdentityEvent struct {
	Type string       `json:"type"`
	Data IdentityUser `json:"data"`
}

// IdentityUser is the user object carried by identity events
type IdentityUser struct {
	ID                    string `json:"id"`
	FirstName             string `json:"first_name"`
	LastName              string `json:"last_name"`
	PrimaryEmailAddressID string `json:"primary_email_address_id"`
	PrimaryPhoneNumberID  string `json:"primary_phone_number_id"`
	EmailAddresses        []struct {
		ID           string `json:"id"`
		EmailAddress string `json:"email_address"`
	} `json:"email_addresses"`
	PhoneNumbers []struct {
		ID          string `json:"id"`
		PhoneNumber string `json:"phone_number"`
	} `json:"phone_numbers"`
}

// toUser maps the event data onto a user row using the primary email and phone
func (u IdentityUser) toUser() *models.User {
	user := &models.User{
		ID:   u.ID,
		Name: strings.TrimSpace(u.FirstName + " " + u.LastName),
	}
	for _, e := range u.EmailAddresses {
		if e.ID == u.PrimaryEmailAddressID {
			user.Email = e.EmailAddress
			break
		}
	}
	for _, p := range u.PhoneNumbers {
		if p.ID == u.PrimaryPhoneNumberID && p.PhoneNumber != "" {
			phone := p.PhoneNumber
			user.PhoneNumber = &phone
			break
		}
	}
	return user
}

// WebhookResult describes what an identity event did
type WebhookResult struct {
	Event   string       `json:"event"`
	Message string       `json:"message"`
	User    *models.User `json:"user,omitempty"`
}

// HandleWebhook verifies a signed identity event and applies it. Nothing is
// persisted unless the signature checks out. Unknown event types are
// acknowledged and ignored.
func (s *UserService) HandleWebhook(ctx context.Context, payload []byte, headers http.Header) (*WebhookResult, error) {
	if s.webhook == nil {
		return nil, apperrors.Unavailable("identity webhooks are not configured")
	}
	if headers.Get("svix-id") == "" || headers.Get("svix-timestamp") == "" || headers.Get("svix-signature") == "" {
		return nil, apperrors.Validation("missing webhook signature headers")
	}
	if err := s.webhook.Verify(payload, headers); err != nil {
		return nil, apperrors.Validation("invalid webhook signature")
	}

	var evt IdentityEvent
	if err := json.Unmarshal(payload, &evt); err != nil {
		return nil, apperrors.Validation("invalid webhook payload")
	}

	switch evt.Type {
	case EventUserCreated:
		if evt.Data.ID == "" {
			return nil, apperrors.Validation("user id is required")
		}
		user, err := s.createUser(ctx, evt.Data.toUser())
		if err != nil {
			return nil, err
		}
		return &WebhookResult{Event: evt.Type, Message: "User created successfully", User: user}, nil
	case EventUserUpdated:
		if evt.Data.ID == "" {
			return nil, apperrors.Validation("user id is required")
		}
		user := evt.Data.toUser()
		user.UpdatedAt = time.Now()
		if err := s.userRepo.Update(ctx, user); err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, err
			}
			return nil, fmt.Errorf("failed to update user: %w", err)
		}
		updated, err := s.userRepo.GetByID(ctx, user.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load user: %w", err)
		}
		return &WebhookResult{Event: evt.Type, Message: "User updated successfully", User: updated}, nil
	default:
		return &WebhookResult{Event: evt.Type, Message: "Event ignored"}, nil
	}
}

// createUser inserts the user unless it already exists and returns the stored row
func (s *UserService) createUser(ctx context.Context, user *models.User) (*models.User, error) {
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	if _, err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	stored, err := s.userRepo.GetByID(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return stored, nil
}
