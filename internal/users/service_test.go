package users

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/rafidahmed/tinbari-backend/pkg/auth"
	"github.com/rafidahmed/tinbari-backend/pkg/config"
	"github.com/rafidahmed/tinbari-backend/pkg/db/models"
	"github.com/rafidahmed/tinbari-backend/pkg/enums"
	pkgerrors "github.com/rafidahmed/tinbari-backend/pkg/errors"
	"github.com/rafidahmed/tinbari-backend/pkg/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:users_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}))
	return db
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{Secret: "test-secret", Issuer: "tinbari", ExpirationMinutes: 60}
}

func testPasswordConfig() config.PasswordConfig {
	// Low-cost parameters keep the tests fast.
	return config.PasswordConfig{ArgonMemoryKB: 8192, ArgonTime: 1, ArgonParallelism: 1, ArgonSaltLen: 16, ArgonKeyLen: 32}
}

func newTestService(t *testing.T, db *gorm.DB) Service {
	t.Helper()
	admin := config.AdminConfig{Name: "Owner", Email: "owner@shop.test", Password: "firstrun"}
	svc, err := NewService(NewRepository(db), testJWTConfig(), testPasswordConfig(), admin, logger.New(logger.Options{ServiceName: "test"}))
	require.NoError(t, err)
	return svc
}

func TestLoginMintsVerifiableToken(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	created, err := svc.CreateUser(ctx, CreateUserInput{Name: "Rafi", Email: "Rafi@Shop.Test", Password: "secret1", Role: enums.UserRoleAdmin})
	require.NoError(t, err)
	assert.Equal(t, "rafi@shop.test", created.Email)

	result, err := svc.Login(ctx, "rafi@shop.test", "secret1")
	require.NoError(t, err)
	require.NotEmpty(t, result.Token)

	claims, err := auth.ParseAccessToken(testJWTConfig(), result.Token)
	require.NoError(t, err)
	assert.Equal(t, created.ID, claims.UserID)
	assert.Equal(t, enums.UserRoleAdmin, claims.Role)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, CreateUserInput{Name: "Rafi", Email: "rafi@shop.test", Password: "secret1"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, "rafi@shop.test", "wrong")
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized))

	_, err = svc.Login(ctx, "nobody@shop.test", "secret1")
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized))
}

func TestCreateUserRejectsDuplicateEmail(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, CreateUserInput{Name: "Rafi", Email: "rafi@shop.test", Password: "secret1"})
	require.NoError(t, err)

	_, err = svc.CreateUser(ctx, CreateUserInput{Name: "Other", Email: "rafi@shop.test", Password: "secret2"})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))
}

func TestEnsureAdminSeedsOnce(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	require.NoError(t, svc.EnsureAdmin(ctx))

	result, err := svc.Login(ctx, "owner@shop.test", "firstrun")
	require.NoError(t, err)
	assert.Equal(t, enums.UserRoleAdmin, result.User.Role)

	// A second run must not create a duplicate.
	require.NoError(t, svc.EnsureAdmin(ctx))
	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
