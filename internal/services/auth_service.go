package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"userapi/internal/caching"
	"userapi/internal/common"
	"userapi/internal/models"
	"userapi/internal/repositories"
	"userapi/internal/validation"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// tokenKeyBytes yields a 40 character hex key.
const tokenKeyBytes = 20

// AuthService issues tokens on login and resolves them on later requests.
type AuthService interface {
	// Login checks credentials, reuses or creates the user's token and records
	// one activity entry.
	Login(ctx context.Context, req *models.LoginRequest) (*models.User, string, error)
	// Authenticate resolves a token key to its active owner.
	Authenticate(ctx context.Context, key string) (*models.User, error)
}

type authService struct {
	users     repositories.UserRepository
	tokens    repositories.TokenRepository
	activity  repositories.ActivityReportRepository
	tx        repositories.Transactor
	cacheSvc  caching.CacheService
	validator *validation.Validator
	logger    *zap.Logger
	now       func() time.Time
	newKey    func() (string, error)
}

func NewAuthService(
	users repositories.UserRepository,
	tokens repositories.TokenRepository,
	activity repositories.ActivityReportRepository,
	tx repositories.Transactor,
	cacheSvc caching.CacheService,
	validator *validation.Validator,
	logger *zap.Logger,
) AuthService {
	return &authService{
		users:     users,
		tokens:    tokens,
		activity:  activity,
		tx:        tx,
		cacheSvc:  cacheSvc,
		validator: validator,
		logger:    logger,
		now:       time.Now,
		newKey:    generateTokenKey,
	}
}

func generateTokenKey() (string, error) {
	b := make([]byte, tokenKeyBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate token key: %w", err)
	}
	return hex.EncodeToString(b), nil
}

func (s *authService) Login(ctx context.Context, req *models.LoginRequest) (*models.User, string, error) {
	if err := s.validator.ValidateLogin(req); err != nil {
		return nil, "", err
	}

	user, err := s.users.GetActiveByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, "", common.ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("failed to load user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, "", common.ErrInvalidCredentials
	}

	candidate, err := s.newKey()
	if err != nil {
		return nil, "", err
	}

	var token *models.AuthToken
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		token, err = s.tokens.GetOrCreate(ctx, user.ID, candidate)
		if err != nil {
			return err
		}
		return s.activity.Create(ctx, &models.ActivityReportEntry{
			UserID: user.ID,
			Date:   startOfDay(s.now()),
		})
	})
	if err != nil {
		return nil, "", fmt.Errorf("failed to complete login: %w", err)
	}

	s.logger.Info("user logged in", zap.String("user_id", user.ID.String()))
	return user, token.Key, nil
}

func (s *authService) Authenticate(ctx context.Context, key string) (*models.User, error) {
	if !s.cacheSvc.Enabled() {
		return s.resolveToken(ctx, key)
	}

	cached, err := s.cacheSvc.GetTokenUser(ctx, key)
	if err != nil {
		s.logger.Warn("token cache lookup failed", zap.Error(err))
	} else if cached != nil {
		return activeOnly(cached)
	}

	user, err := s.resolveToken(ctx, key)
	if err != nil {
		return nil, err
	}

	if err := s.cacheSvc.SetTokenUser(ctx, key, user); err != nil {
		s.logger.Warn("token cache store failed", zap.Error(err))
		return user, nil
	}

	// A delete or update that committed between the lookup and the store has
	// already evicted, so read the row again and drop the entry if it moved.
	fresh, err := s.tokens.GetUserByKey(ctx, key)
	if err == nil && fresh.IsActive && fresh.UpdatedAt.Equal(user.UpdatedAt) {
		return user, nil
	}
	if evictErr := s.cacheSvc.DeleteToken(ctx, key); evictErr != nil {
		s.logger.Warn("token cache eviction failed", zap.Error(evictErr))
	}
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrInvalidToken
		}
		return nil, fmt.Errorf("failed to resolve token: %w", err)
	}
	return activeOnly(fresh)
}

func (s *authService) resolveToken(ctx context.Context, key string) (*models.User, error) {
	user, err := s.tokens.GetUserByKey(ctx, key)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrInvalidToken
		}
		return nil, fmt.Errorf("failed to resolve token: %w", err)
	}
	return activeOnly(user)
}

func activeOnly(user *models.User) (*models.User, error) {
	if !user.IsActive {
		return nil, common.ErrUserInactive
	}
	return user, nil
}

func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
