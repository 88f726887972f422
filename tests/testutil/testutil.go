// Package testutil holds shared helpers for the test suites: the
// GO_ENV safety guard, in-memory database setup and user fixtures.
package testutil

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/washbook/washbook-api/config"
	"github.com/washbook/washbook-api/models"
)

// RequireTestEnvironment fails the test unless GO_ENV=test, so a suite
// can never run against a development or production database by mistake.
func RequireTestEnvironment(t *testing.T) {
	t.Helper()

	if env := os.Getenv("GO_ENV"); env != "test" {
		t.Fatalf("tests must run with GO_ENV=test (current: %q); try: GO_ENV=test go test ./...", env)
	}
}

// SetupTestDB opens a fresh in-memory sqlite database, migrates every
// model and installs it as the process database. Each call returns an
// isolated database.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	RequireTestEnvironment(t)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "failed to open test database")

	err = db.AutoMigrate(
		&models.User{},
		&models.Order{},
		&models.ServiceLine{},
		&models.Expense{},
		&models.BusinessSettings{},
	)
	require.NoError(t, err, "failed to migrate test database")

	config.SetDB(db)
	return db
}

// CreateTestUser persists a user with the given role. The password for
// every fixture user is "password123".
func CreateTestUser(t *testing.T, db *gorm.DB, username, role string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)

	user := &models.User{
		Username:     username,
		PasswordHash: string(hash),
		Role:         role,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}
