package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"logistics_manager/internal/models"
	"logistics_manager/internal/repository"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const MinPasswordLength = 8

type UserService interface {
	CreateUser(ctx context.Context, user *models.User, password string) error
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetAllUsers(ctx context.Context) ([]models.User, error)
	PatchUser(ctx context.Context, id uint, body []byte) (*models.User, error)
	ChangePassword(ctx context.Context, id uint, current, next string) error
	DeleteUser(ctx context.Context, id uint) error
	Authenticate(ctx context.Context, username, password string) (*models.User, error)
	ValidateUserRole(ctx context.Context, userID uint, requiredRole models.UserRole) error
}

type userService struct {
	userRepo repository.UserRepository
	now      func() time.Time
}

func NewUserService(userRepo repository.UserRepository) UserService {
	return &userService{userRepo: userRepo, now: time.Now}
}

func hashPassword(password string) (string, error) {
	if len(password) < MinPasswordLength {
		return "", invalid("password must have at least %d characters", MinPasswordLength)
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

func (s *userService) CreateUser(ctx context.Context, user *models.User, password string) error {
	user.Username = strings.TrimSpace(user.Username)
	if err := Validate(user); err != nil {
		return err
	}
	if _, err := s.userRepo.GetByUsername(ctx, user.Username); err == nil {
		return conflict("username %q is taken", user.Username)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hashed, err := hashPassword(password)
	if err != nil {
		return err
	}
	user.ID = 0
	user.PasswordHash = hashed
	if user.Role == "" {
		user.Role = string(models.RoleOperator)
	}
	return s.userRepo.Create(ctx, user)
}

func (s *userService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "user")
	}
	return user, nil
}

func (s *userService) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, notFound(err, "user")
	}
	return user, nil
}

func (s *userService) GetAllUsers(ctx context.Context) ([]models.User, error) {
	return s.userRepo.GetAll(ctx)
}

func (s *userService) PatchUser(ctx context.Context, id uint, body []byte) (*models.User, error) {
	user, err := s.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	columns, err := applyPatch(user, body, "username", "lastLoginAt")
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.UpdateColumns(ctx, user, columns); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *userService) ChangePassword(ctx context.Context, id uint, current, next string) error {
	user, err := s.GetUserByID(ctx, id)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)) != nil {
		return ErrInvalidCredentials
	}
	hashed, err := hashPassword(next)
	if err != nil {
		return err
	}
	user.PasswordHash = hashed
	return s.userRepo.UpdateColumns(ctx, user, []string{"password_hash"})
}

func (s *userService) DeleteUser(ctx context.Context, id uint) error {
	return notFound(s.userRepo.Delete(ctx, id), "user")
}

// Authenticate checks the credentials of an active user. Unknown users,
// inactive users and wrong passwords all fail with ErrInvalidCredentials.
func (s *userService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !user.IsActive || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	at := s.now()
	if err := s.userRepo.TouchLogin(ctx, user.ID, at); err != nil {
		return nil, err
	}
	user.LastLoginAt = &at
	return user, nil
}

func (s *userService) ValidateUserRole(ctx context.Context, userID uint, requiredRole models.UserRole) error {
	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if !models.UserRole(user.Role).Allows(requiredRole) {
		return errors.New("insufficient permissions")
	}
	return nil
}
