package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/templui/filebox/internal/domain"
	"github.com/templui/filebox/internal/logger"
	"github.com/templui/filebox/internal/model"
	"github.com/templui/filebox/internal/repository"
	"github.com/templui/filebox/internal/validation"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCurrentPassword = errors.New("current password is incorrect")
)

type CreateUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	IsAdmin  bool   `json:"isAdmin"`
}

type UserService struct {
	userRepository repository.UserRepository
	logger         *slog.Logger
}

func NewUserService(userRepository repository.UserRepository) *UserService {
	return &UserService{
		userRepository: userRepository,
		logger:         logger.Component("users"),
	}
}

func (s *UserService) ByID(ctx context.Context, id string) (*model.User, error) {
	user, err := s.userRepository.ByID(ctx, id)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, domain.NotFound("user", id)
	}
	return user, err
}

func (s *UserService) List(ctx context.Context) ([]*model.User, error) {
	return s.userRepository.All(ctx)
}

func (s *UserService) Create(ctx context.Context, req *CreateUserRequest) (*model.User, error) {
	username := strings.TrimSpace(req.Username)
	if err := validation.ValidateUsername(username); err != nil {
		return nil, &domain.ValidationError{Message: err.Error()}
	}
	if err := validation.ValidatePassword(req.Password); err != nil {
		return nil, &domain.ValidationError{Message: err.Error()}
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		ID:           uuid.New().String(),
		Username:     username,
		PasswordHash: string(hashedPassword),
		IsAdmin:      req.IsAdmin,
		CreatedAt:    time.Now().UTC(),
	}

	err = s.userRepository.Create(ctx, user)
	if errors.Is(err, repository.ErrDuplicateUsername) {
		return nil, &domain.ConflictError{Message: fmt.Sprintf("username %q already exists", username)}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("user created", "user_id", user.ID, "username", user.Username, "is_admin", user.IsAdmin)
	return user, nil
}

func (s *UserService) UpdatePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	user, err := s.ByID(ctx, userID)
	if err != nil {
		return err
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword))
	if err != nil {
		return &domain.ValidationError{Message: ErrInvalidCurrentPassword.Error()}
	}

	err = validation.ValidatePassword(newPassword)
	if err != nil {
		return &domain.ValidationError{Message: err.Error()}
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	err = s.userRepository.UpdatePassword(ctx, userID, string(hashedPassword))
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	return nil
}

// Delete removes a user. The last admin cannot be removed.
func (s *UserService) Delete(ctx context.Context, id string) error {
	user, err := s.ByID(ctx, id)
	if err != nil {
		return err
	}

	if user.IsAdmin {
		users, err := s.userRepository.All(ctx)
		if err != nil {
			return err
		}
		admins := 0
		for _, u := range users {
			if u.IsAdmin {
				admins++
			}
		}
		if admins <= 1 {
			return &domain.ConflictError{Message: "cannot delete the last admin"}
		}
	}

	err = s.userRepository.Delete(ctx, id)
	if errors.Is(err, repository.ErrUserNotFound) {
		return domain.NotFound("user", id)
	}
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	s.logger.Info("user deleted", "user_id", id)
	return nil
}
