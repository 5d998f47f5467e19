package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/yukikurage/task-dashboard/internal/models"
	"github.com/yukikurage/task-dashboard/internal/repository"
	"github.com/yukikurage/task-dashboard/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrNameRequired  = errors.New("name is required")
	ErrEmailRequired = errors.New("email is required")
	ErrEmailInvalid  = errors.New("email is not a valid address")
	ErrEmailTaken    = errors.New("email already registered")
	ErrInvalidRole   = errors.New("role must be user or admin")
)

// UserService handles user business logic
type UserService struct {
	userRepo repository.UserRepository
	validate *validator.Validate
}

// NewUserService creates a new UserService
func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{
		userRepo: userRepo,
		validate: validator.New(),
	}
}

// CreateUserInput represents input for creating a user
type CreateUserInput struct {
	Name  string
	Email string
	Role  models.UserRole
}

// ListUsers returns every user in creation order
func (s *UserService) ListUsers(ctx context.Context) ([]models.User, error) {
	users, err := s.userRepo.List(ctx, repository.UserFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// ListAssignable returns active users with role user
func (s *UserService) ListAssignable(ctx context.Context) ([]models.User, error) {
	role := models.RoleUser
	status := models.UserStatusActive

	users, err := s.userRepo.List(ctx, repository.UserFilter{Role: &role, Status: &status})
	if err != nil {
		return nil, fmt.Errorf("failed to list assignable users: %w", err)
	}
	return users, nil
}

// GetUser returns a user by ID
func (s *UserService) GetUser(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// CreateUser registers an active user with no tasks
func (s *UserService) CreateUser(ctx context.Context, input CreateUserInput) (*models.User, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrNameRequired
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" {
		return nil, ErrEmailRequired
	}
	if err := s.validate.Var(email, "email"); err != nil {
		return nil, ErrEmailInvalid
	}

	if input.Role == "" {
		input.Role = models.RoleUser
	}
	if !input.Role.Valid() {
		return nil, ErrInvalidRole
	}

	_, err := s.userRepo.FindByEmail(ctx, email)
	if err == nil {
		return nil, ErrEmailTaken
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	user := &models.User{
		ID:        utils.GenerateUserID(),
		Name:      name,
		Email:     email,
		Role:      input.Role,
		Status:    models.UserStatusActive,
		TaskCount: 0,
	}

	// a concurrent registration can pass the lookup above; the unique index rejects it
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}
