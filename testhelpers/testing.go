package testhelpers

import (
	"context"
	"os"
	"testing"
	"time"

	"userapi/internal/migrations"
	"userapi/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// TestDB holds the database connection for testing
type TestDB struct {
	Pool    *pgxpool.Pool
	Cleanup func() error
}

// SetupTestDB connects to TEST_DATABASE_URL, migrates it and empties every
// table. The test is skipped when the variable is unset.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	connString := os.Getenv("TEST_DATABASE_URL")
	if connString == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := migrations.Run(ctx, connString, zap.NewNop()); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	db := &TestDB{
		Pool: pool,
		Cleanup: func() error {
			pool.Close()
			return nil
		},
	}
	TruncateAll(t, db)
	t.Cleanup(func() { _ = db.Cleanup() })
	return db
}

// TruncateAll removes every row. Tokens and activity go with their users.
func TruncateAll(t *testing.T, db *TestDB) {
	t.Helper()

	if _, err := db.Pool.Exec(context.Background(), `TRUNCATE users CASCADE`); err != nil {
		t.Fatalf("Failed to truncate tables: %v", err)
	}
}

// SetupTestUser inserts an active user whose password is password.
func SetupTestUser(t *testing.T, db *TestDB, username, password string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}

	user := &models.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        username + "@example.com",
		FirstName:    "Test",
		LastName:     "User",
		PasswordHash: string(hash),
		IsActive:     true,
	}

	query := `
		INSERT INTO users (id, username, email, first_name, last_name, password_hash, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`
	err = db.Pool.QueryRow(context.Background(), query,
		user.ID, user.Username, user.Email, user.FirstName, user.LastName, user.PasswordHash, user.IsActive,
	).Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	return user
}

// SetupTestActivity backdates one login for userID.
func SetupTestActivity(t *testing.T, db *TestDB, userID uuid.UUID, date time.Time) {
	t.Helper()

	_, err := db.Pool.Exec(context.Background(),
		`INSERT INTO activity_reports (user_id, date) VALUES ($1, $2)`, userID, date)
	if err != nil {
		t.Fatalf("Failed to create test activity: %v", err)
	}
}
