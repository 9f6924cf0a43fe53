package repositories

import (
	"context"
	"errors"
	"fmt"

	"userapi/internal/common"
	"userapi/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetActiveByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetActiveByUsername(ctx context.Context, username string) (*models.User, error)
	ListActive(ctx context.Context) ([]*models.User, error)
	Update(ctx context.Context, user *models.User) error
	DeleteActive(ctx context.Context, id uuid.UUID) error
	ExistsByUsername(ctx context.Context, username string, excludeID uuid.UUID) (bool, error)
	ExistsByEmail(ctx context.Context, email string, excludeID uuid.UUID) (bool, error)
}

const userColumns = `id, username, email, first_name, last_name, password_hash, is_active, created_at, updated_at`

const (
	createUserQuery = `
		INSERT INTO users (id, username, email, first_name, last_name, password_hash, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING created_at, updated_at`

	getUserByIDQuery = `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	getActiveUserByIDQuery = `SELECT ` + userColumns + ` FROM users WHERE id = $1 AND is_active`

	getActiveUserByUsernameQuery = `SELECT ` + userColumns + ` FROM users WHERE username = $1 AND is_active`

	listActiveUsersQuery = `SELECT ` + userColumns + ` FROM users WHERE is_active ORDER BY username`

	updateUserQuery = `
		UPDATE users
		SET username = $1, email = $2, first_name = $3, last_name = $4, password_hash = $5, updated_at = NOW()
		WHERE id = $6
		RETURNING updated_at`

	deleteActiveUserQuery = `DELETE FROM users WHERE id = $1 AND is_active`

	usernameExistsQuery = `SELECT EXISTS (SELECT 1 FROM users WHERE username = $1 AND id <> $2)`

	emailExistsQuery = `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1 AND id <> $2)`
)

type userRepo struct {
	db DBTX
}

func NewUserRepo(db DBTX) UserRepository {
	return &userRepo{db: db}
}

func scanUser(row scanner) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(&user.ID, &user.Username, &user.Email, &user.FirstName, &user.LastName,
		&user.PasswordHash, &user.IsActive, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *userRepo) Create(ctx context.Context, user *models.User) error {
	err := conn(ctx, r.db).QueryRow(ctx, createUserQuery,
		user.ID, user.Username, user.Email, user.FirstName, user.LastName, user.PasswordHash, user.IsActive,
	).Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", mapUniqueViolation(err))
	}
	return nil
}

func (r *userRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := scanUser(conn(ctx, r.db).QueryRow(ctx, getUserByIDQuery, id))
	if err != nil {
		return nil, mapNoRows(err)
	}
	return user, nil
}

func (r *userRepo) GetActiveByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := scanUser(conn(ctx, r.db).QueryRow(ctx, getActiveUserByIDQuery, id))
	if err != nil {
		return nil, mapNoRows(err)
	}
	return user, nil
}

func (r *userRepo) GetActiveByUsername(ctx context.Context, username string) (*models.User, error) {
	user, err := scanUser(conn(ctx, r.db).QueryRow(ctx, getActiveUserByUsernameQuery, username))
	if err != nil {
		return nil, mapNoRows(err)
	}
	return user, nil
}

func (r *userRepo) ListActive(ctx context.Context) ([]*models.User, error) {
	rows, err := conn(ctx, r.db).Query(ctx, listActiveUsersQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := make([]*models.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func (r *userRepo) Update(ctx context.Context, user *models.User) error {
	err := conn(ctx, r.db).QueryRow(ctx, updateUserQuery,
		user.Username, user.Email, user.FirstName, user.LastName, user.PasswordHash, user.ID,
	).Scan(&user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return common.ErrNotFound
		}
		return fmt.Errorf("failed to update user: %w", mapUniqueViolation(err))
	}
	return nil
}

func (r *userRepo) DeleteActive(ctx context.Context, id uuid.UUID) error {
	tag, err := conn(ctx, r.db).Exec(ctx, deleteActiveUserQuery, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *userRepo) ExistsByUsername(ctx context.Context, username string, excludeID uuid.UUID) (bool, error) {
	var exists bool
	if err := conn(ctx, r.db).QueryRow(ctx, usernameExistsQuery, username, excludeID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check username: %w", err)
	}
	return exists, nil
}

func (r *userRepo) ExistsByEmail(ctx context.Context, email string, excludeID uuid.UUID) (bool, error) {
	var exists bool
	if err := conn(ctx, r.db).QueryRow(ctx, emailExistsQuery, email, excludeID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check email: %w", err)
	}
	return exists, nil
}
