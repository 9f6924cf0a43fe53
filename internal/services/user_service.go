package services

import (
	"context"
	"errors"
	"fmt"

	"userapi/internal/caching"
	"userapi/internal/common"
	"userapi/internal/models"
	"userapi/internal/repositories"
	"userapi/internal/validation"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type UserService interface {
	Create(ctx context.Context, payload *models.UserPayload) (*models.User, error)
	Retrieve(ctx context.Context, id uuid.UUID) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	Update(ctx context.Context, id uuid.UUID, payload *models.UserPayload) (*models.User, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type userService struct {
	users      repositories.UserRepository
	tokens     repositories.TokenRepository
	tx         repositories.Transactor
	cacheSvc   caching.CacheService
	validator  *validation.Validator
	bcryptCost int
	logger     *zap.Logger
}

func NewUserService(
	users repositories.UserRepository,
	tokens repositories.TokenRepository,
	tx repositories.Transactor,
	cacheSvc caching.CacheService,
	validator *validation.Validator,
	bcryptCost int,
	logger *zap.Logger,
) UserService {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &userService{
		users:      users,
		tokens:     tokens,
		tx:         tx,
		cacheSvc:   cacheSvc,
		validator:  validator,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

func (s *userService) Create(ctx context.Context, payload *models.UserPayload) (*models.User, error) {
	var user *models.User
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.validator.ValidateUser(ctx, validation.OpCreate, payload, uuid.Nil); err != nil {
			return err
		}

		hash, err := s.hashPassword(payload.Password)
		if err != nil {
			return err
		}

		user = &models.User{
			ID:           uuid.New(),
			Username:     payload.Username,
			Email:        payload.Email,
			FirstName:    payload.FirstName,
			LastName:     payload.LastName,
			PasswordHash: hash,
			IsActive:     true,
		}
		return conflictAsValidation(s.users.Create(ctx, user))
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("user created", zap.String("user_id", user.ID.String()))
	return user, nil
}

func (s *userService) Retrieve(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.users.GetActiveByID(ctx, id)
}

func (s *userService) List(ctx context.Context) ([]*models.User, error) {
	return s.users.ListActive(ctx)
}

// Update replaces every field of the user. The id may belong to an inactive user.
func (s *userService) Update(ctx context.Context, id uuid.UUID, payload *models.UserPayload) (*models.User, error) {
	var user *models.User
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		user, err = s.users.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, common.ErrNotFound) {
				return common.ErrInvalidUserID
			}
			return err
		}

		if err := s.validator.ValidateUser(ctx, validation.OpUpdate, payload, id); err != nil {
			return err
		}

		hash, err := s.hashPassword(payload.Password)
		if err != nil {
			return err
		}

		user.Username = payload.Username
		user.Email = payload.Email
		user.FirstName = payload.FirstName
		user.LastName = payload.LastName
		user.PasswordHash = hash

		if err := s.users.Update(ctx, user); err != nil {
			if errors.Is(err, common.ErrNotFound) {
				return common.ErrInvalidUserID
			}
			return conflictAsValidation(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.evictToken(ctx, id)
	return user, nil
}

func (s *userService) Delete(ctx context.Context, id uuid.UUID) error {
	// The token row is removed by the cascade, so read its key first.
	token, err := s.tokens.GetByUserID(ctx, id)
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return fmt.Errorf("failed to load token: %w", err)
	}

	if err := s.users.DeleteActive(ctx, id); err != nil {
		return err
	}

	if token != nil {
		if err := s.cacheSvc.DeleteToken(ctx, token.Key); err != nil {
			s.logger.Warn("token cache eviction failed", zap.Error(err))
		}
	}
	s.logger.Info("user deleted", zap.String("user_id", id.String()))
	return nil
}

func (s *userService) hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

func (s *userService) evictToken(ctx context.Context, userID uuid.UUID) {
	token, err := s.tokens.GetByUserID(ctx, userID)
	if err != nil {
		if !errors.Is(err, common.ErrNotFound) {
			s.logger.Warn("token lookup for eviction failed", zap.Error(err))
		}
		return
	}
	if err := s.cacheSvc.DeleteToken(ctx, token.Key); err != nil {
		s.logger.Warn("token cache eviction failed", zap.Error(err))
	}
}

// conflictAsValidation reports a unique constraint race the same way as a
// failed uniqueness check.
func conflictAsValidation(err error) error {
	var conflict *common.ConflictError
	if errors.As(err, &conflict) {
		return validation.UniqueError(conflict.Field)
	}
	return err
}
