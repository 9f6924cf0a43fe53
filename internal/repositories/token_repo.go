package repositories

import (
	"context"
	"fmt"

	"userapi/internal/models"

	"github.com/google/uuid"
)

type TokenRepository interface {
	// GetOrCreate inserts key for the user unless the user already owns a
	// token, and returns the token that is stored afterwards.
	GetOrCreate(ctx context.Context, userID uuid.UUID, key string) (*models.AuthToken, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*models.AuthToken, error)
	GetUserByKey(ctx context.Context, key string) (*models.User, error)
}

const (
	insertTokenQuery = `
		INSERT INTO auth_tokens (key, user_id, created_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (user_id) DO NOTHING`

	getTokenByUserIDQuery = `SELECT key, user_id, created_at FROM auth_tokens WHERE user_id = $1`

	getUserByTokenQuery = `
		SELECT u.id, u.username, u.email, u.first_name, u.last_name, u.password_hash, u.is_active, u.created_at, u.updated_at
		FROM auth_tokens t
		JOIN users u ON u.id = t.user_id
		WHERE t.key = $1`
)

type tokenRepo struct {
	db DBTX
}

func NewTokenRepo(db DBTX) TokenRepository {
	return &tokenRepo{db: db}
}

func (r *tokenRepo) GetOrCreate(ctx context.Context, userID uuid.UUID, key string) (*models.AuthToken, error) {
	db := conn(ctx, r.db)
	if _, err := db.Exec(ctx, insertTokenQuery, key, userID); err != nil {
		return nil, fmt.Errorf("failed to insert token: %w", err)
	}

	token := &models.AuthToken{}
	if err := db.QueryRow(ctx, getTokenByUserIDQuery, userID).Scan(&token.Key, &token.UserID, &token.CreatedAt); err != nil {
		return nil, fmt.Errorf("failed to load token: %w", err)
	}
	return token, nil
}

func (r *tokenRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.AuthToken, error) {
	token := &models.AuthToken{}
	err := conn(ctx, r.db).QueryRow(ctx, getTokenByUserIDQuery, userID).Scan(&token.Key, &token.UserID, &token.CreatedAt)
	if err != nil {
		return nil, mapNoRows(err)
	}
	return token, nil
}

func (r *tokenRepo) GetUserByKey(ctx context.Context, key string) (*models.User, error) {
	user, err := scanUser(conn(ctx, r.db).QueryRow(ctx, getUserByTokenQuery, key))
	if err != nil {
		return nil, mapNoRows(err)
	}
	return user, nil
}
