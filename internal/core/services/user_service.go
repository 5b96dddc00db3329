package services

import (
	"context"
	"errors"
	"log"

	"gorm.io/gorm"

	"condovia/internal/adapters/persistence/models"
	"condovia/internal/adapters/persistence/repositories"
	"condovia/internal/core/domain"
	"condovia/internal/pkg/password"
)

// UserService handles user administration. Accounts are created by
// admins; there is no self-registration.
type UserService struct {
	userRepo   repositories.UserRepository
	deviceRepo *repositories.DeviceTokenRepository
}

// NewUserService creates a new user service
func NewUserService(userRepo repositories.UserRepository, deviceRepo *repositories.DeviceTokenRepository) *UserService {
	return &UserService{userRepo: userRepo, deviceRepo: deviceRepo}
}

// CreateUserInput carries admin user creation
type CreateUserInput struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
	Role     string `json:"role"`
}

// CreateUser creates an account with the given role
func (s *UserService) CreateUser(ctx context.Context, input *CreateUserInput) (*models.User, error) {
	if input.Role == "" {
		input.Role = models.RoleResident
	}
	switch input.Role {
	case models.RoleAdmin, models.RoleGuard, models.RoleResident:
	default:
		return nil, domain.ErrInvalidInput
	}
	if !password.Validate(input.Password) {
		return nil, domain.ErrInvalidInput
	}

	exists, err := s.userRepo.ExistsByUsername(ctx, input.Username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrUserAlreadyExists
	}

	exists, err = s.userRepo.ExistsByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrUserAlreadyExists
	}

	hashedPassword, err := password.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username: input.Username,
		Email:    input.Email,
		Password: hashedPassword,
		FullName: input.FullName,
		Phone:    input.Phone,
		Role:     input.Role,
		IsActive: true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	log.Printf("✅ User created: %s (%s)", user.Username, user.Role)
	return user, nil
}

// GetByID fetches one user
func (s *UserService) GetByID(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// List lists users
func (s *UserService) List(ctx context.Context, offset, limit int) ([]*models.User, int64, error) {
	return s.userRepo.List(ctx, offset, limit)
}

// UpdateUserInput carries user profile updates. Nil fields are untouched.
type UpdateUserInput struct {
	FullName *string `json:"full_name"`
	Phone    *string `json:"phone"`
	Role     *string `json:"role"`
	IsActive *bool   `json:"is_active"`
	Password *string `json:"password"`
}

// UpdateUser applies a partial update to a user
func (s *UserService) UpdateUser(ctx context.Context, id uint, input *UpdateUserInput) (*models.User, error) {
	user, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.FullName != nil {
		user.FullName = *input.FullName
	}
	if input.Phone != nil {
		user.Phone = *input.Phone
	}
	if input.Role != nil {
		switch *input.Role {
		case models.RoleAdmin, models.RoleGuard, models.RoleResident:
			user.Role = *input.Role
		default:
			return nil, domain.ErrInvalidInput
		}
	}
	if input.IsActive != nil {
		user.IsActive = *input.IsActive
	}
	if input.Password != nil {
		if !password.Validate(*input.Password) {
			return nil, domain.ErrInvalidInput
		}
		hashed, err := password.Hash(*input.Password)
		if err != nil {
			return nil, err
		}
		user.Password = hashed
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// DeactivateUser disables an account without deleting its history
func (s *UserService) DeactivateUser(ctx context.Context, id uint) error {
	user, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	user.IsActive = false
	return s.userRepo.Update(ctx, user)
}

// RegisterDeviceInput carries a push-token registration
type RegisterDeviceInput struct {
	Token    string `json:"token" validate:"required"`
	Platform string `json:"platform"`
}

// RegisterDevice binds a push token to the user. A token seen before is
// reactivated and reassigned, which handles devices changing hands.
func (s *UserService) RegisterDevice(ctx context.Context, userID uint, input *RegisterDeviceInput) (*models.DeviceToken, error) {
	if input.Token == "" {
		return nil, domain.ErrInvalidInput
	}
	if input.Platform == "" {
		input.Platform = models.PlatformAndroid
	}
	switch input.Platform {
	case models.PlatformAndroid, models.PlatformIOS, models.PlatformWeb:
	default:
		return nil, domain.ErrInvalidInput
	}

	token := &models.DeviceToken{
		UserID:   userID,
		Token:    input.Token,
		Platform: input.Platform,
		IsActive: true,
	}
	if err := s.deviceRepo.Upsert(ctx, token); err != nil {
		return nil, err
	}
	return token, nil
}

// UnregisterDevice deactivates a push token
func (s *UserService) UnregisterDevice(ctx context.Context, token string) error {
	return s.deviceRepo.Deactivate(ctx, token)
}
