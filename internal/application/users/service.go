package users

import (
	"context"
	"strings"

	"estate-backend/internal/domain"
	"estate-backend/internal/pkg/apperror"
	"estate-backend/internal/pkg/constants"
	"estate-backend/internal/pkg/validation"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Service holds DB and Redis for user operations. Redis is used to destroy
// a user's sessions when their role changes or the account is removed.
type Service struct {
	DB  *gorm.DB
	Rdb *redis.Client
}

// RegisterInput is the open-registration payload. Open registration creates
// an admin account; realtors are created by an existing admin.
type RegisterInput struct {
	UserName string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
}

// Register creates an admin account.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	return s.create(ctx, in, constants.RoleAdmin)
}

// CreateRealtor creates a realtor account (admin-only at the route level).
func (s *Service) CreateRealtor(ctx context.Context, in RegisterInput) (*domain.User, error) {
	return s.create(ctx, in, constants.RoleRealtor)
}

func (s *Service) create(ctx context.Context, in RegisterInput, role string) (*domain.User, error) {
	fields := map[string]string{}
	if strings.TrimSpace(in.UserName) == "" {
		fields["username"] = "Username is required"
	}
	if in.Email == "" || !validation.IsValidEmail(in.Email) {
		fields["email"] = "Invalid email format"
	}
	if in.Password == "" || !validation.IsValidPassword(in.Password) {
		fields["password"] = "Password must be at least 8 characters with a letter, a number and a special character"
	}
	if in.Phone != "" && !validation.IsValidPhone(in.Phone) {
		fields["phone"] = "Invalid phone number"
	}
	if len(fields) > 0 {
		return nil, apperror.Validation("Invalid registration payload", fields)
	}

	userName := strings.TrimSpace(in.UserName)
	email := strings.TrimSpace(strings.ToLower(in.Email))

	var existing domain.User
	if err := s.DB.WithContext(ctx).Where("email = ?", email).First(&existing).Error; err == nil {
		return nil, apperror.FieldError("email", "Email already registered")
	}
	if err := s.DB.WithContext(ctx).Where("user_name = ?", userName).First(&existing).Error; err == nil {
		return nil, apperror.FieldError("username", "Username already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), 10)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	u := &domain.User{
		UserName:     userName,
		Email:        email,
		PasswordHash: string(hash),
		Phone:        strings.TrimSpace(in.Phone),
		Role:         role,
	}
	if err := s.DB.WithContext(ctx).Create(u).Error; err != nil {
		return nil, apperror.Internal(err)
	}
	return u, nil
}

// UpdateRole changes a user's role and destroys their sessions so the new
// role takes effect on next login.
func (s *Service) UpdateRole(ctx context.Context, userID uint, role string) (*domain.User, error) {
	if !constants.IsValidRole(role) {
		return nil, apperror.FieldError("role", "Invalid role")
	}
	var u domain.User
	if err := s.DB.WithContext(ctx).First(&u, userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperror.NotFound("User")
		}
		return nil, apperror.Internal(err)
	}
	if err := s.DB.WithContext(ctx).Model(&u).Update("role", role).Error; err != nil {
		return nil, apperror.Internal(err)
	}
	s.destroySessions(ctx, userID)
	return &u, nil
}

// Remove hard-deletes a user. Owned listings cascade; submitted applications
// are kept with user set to NULL.
func (s *Service) Remove(ctx context.Context, userID uint) error {
	res := s.DB.WithContext(ctx).Delete(&domain.User{}, userID)
	if res.Error != nil {
		return apperror.Internal(res.Error)
	}
	if res.RowsAffected == 0 {
		return apperror.NotFound("User")
	}
	s.destroySessions(ctx, userID)
	return nil
}
