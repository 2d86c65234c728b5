package auth

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/MuhamadAgungGumelar/financeiro-max-be/internal/shared/database"
)

func init() {
	bcryptCost = bcrypt.MinCost
}

func newTestService(t *testing.T, hooks ...RegisterHook) (*Service, *gorm.DB) {
	t.Helper()
	db, err := database.Open("sqlite::memory:", database.Options{LogLevel: logger.Silent})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.GORM.AutoMigrate(&User{}))
	return NewService(db.GORM, "test-secret", hooks...), db.GORM
}

func register(t *testing.T, svc *Service, email string) *AuthResponse {
	t.Helper()
	resp, err := svc.Register(context.Background(), &RegisterRequest{
		Name: "Ana", Email: email, Password: "secret123",
	})
	require.NoError(t, err)
	return resp
}

func TestJWTService(t *testing.T) {
	s := NewJWTService("secret")

	access, expiresIn, err := s.GenerateAccessToken(&TokenClaims{UserID: "u1", Email: "a@b.c", Role: RoleAdmin})
	require.NoError(t, err)
	assert.Equal(t, int64(900), expiresIn)

	claims, err := s.ValidateAccessToken(access)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, RoleAdmin, claims.Role)

	refresh, expiresAt, err := s.GenerateRefreshToken("u1")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), expiresAt, time.Minute)

	userID, err := s.ValidateRefreshToken(refresh)
	require.NoError(t, err)
	assert.Equal(t, "u1", userID)

	// token types are not interchangeable
	_, err = s.ValidateAccessToken(refresh)
	assert.Error(t, err)
	_, err = s.ValidateRefreshToken(access)
	assert.Error(t, err)

	// another secret cannot validate
	_, err = NewJWTService("other").ValidateAccessToken(access)
	assert.Error(t, err)

	expired := &JWTService{secretKey: []byte("secret"), issuer: "financeiromax", accessTokenDuration: -time.Minute}
	old, _, err := expired.GenerateAccessToken(&TokenClaims{UserID: "u1"})
	require.NoError(t, err)
	_, err = s.ValidateAccessToken(old)
	assert.Error(t, err)
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("secret123")
	require.NoError(t, err)
	assert.NoError(t, VerifyPassword(hash, "secret123"))
	assert.Error(t, VerifyPassword(hash, "wrong"))
}

func TestService_RegisterAndLogin(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	first := register(t, svc, " Ana@Example.com ")
	assert.Equal(t, "ana@example.com", first.User.Email)
	assert.True(t, first.User.IsAdmin)

	second := register(t, svc, "bruno@example.com")
	assert.False(t, second.User.IsAdmin)

	_, err := svc.Register(ctx, &RegisterRequest{Name: "x", Email: "ANA@example.com", Password: "secret123"})
	assert.ErrorIs(t, err, ErrEmailTaken)

	resp, err := svc.Login(ctx, &LoginRequest{Email: "ana@example.com", Password: "secret123"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)

	_, err = svc.Login(ctx, &LoginRequest{Email: "ana@example.com", Password: "nope"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(ctx, &LoginRequest{Email: "ghost@example.com", Password: "secret123"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestService_RegisterHook(t *testing.T) {
	var hooked []string
	svc, db := newTestService(t, func(ctx context.Context, tx *gorm.DB, user *User) error {
		if user.Email == "fail@example.com" {
			return errors.New("no plan")
		}
		hooked = append(hooked, user.Email)
		return nil
	})

	register(t, svc, "ok@example.com")
	assert.Equal(t, []string{"ok@example.com"}, hooked)

	_, err := svc.Register(context.Background(), &RegisterRequest{Name: "x", Email: "fail@example.com", Password: "secret123"})
	require.Error(t, err)

	var count int64
	require.NoError(t, db.Model(&User{}).Where("email = ?", "fail@example.com").Count(&count).Error)
	assert.Zero(t, count, "failed hook rolls the user back")
}

func TestService_RefreshRotates(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	first := register(t, svc, "ana@example.com")

	second, err := svc.RefreshToken(ctx, first.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)

	_, err = svc.RefreshToken(ctx, first.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	require.NoError(t, svc.Logout(ctx, second.User.ID))
	_, err = svc.RefreshToken(ctx, second.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestService_ChangePasswordAndProfile(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	resp := register(t, svc, "ana@example.com")
	userID := resp.User.ID

	err := svc.ChangePassword(ctx, userID, &ChangePasswordRequest{CurrentPassword: "bad", NewPassword: "newsecret"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	require.NoError(t, svc.ChangePassword(ctx, userID, &ChangePasswordRequest{CurrentPassword: "secret123", NewPassword: "newsecret"}))
	_, err = svc.Login(ctx, &LoginRequest{Email: "ana@example.com", Password: "newsecret"})
	assert.NoError(t, err)

	user, err := svc.UpdateProfile(ctx, userID, &UpdateProfileRequest{Phone: "11999998888"})
	require.NoError(t, err)
	assert.Equal(t, "11999998888", user.Phone)
	assert.Equal(t, "Ana", user.Name)

	_, err = svc.Me(ctx, "00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestMiddleware(t *testing.T) {
	svc, _ := newTestService(t)
	admin := register(t, svc, "admin@example.com")
	user := register(t, svc, "user@example.com")

	app := fiber.New()
	app.Get("/me", AuthMiddleware(svc), func(c *fiber.Ctx) error { return c.SendString(UserID(c)) })
	app.Get("/admin", AuthMiddleware(svc), RequireAdmin(), func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	tests := []struct {
		name   string
		path   string
		header string
		want   int
	}{
		{"no header", "/me", "", fiber.StatusUnauthorized},
		{"bad scheme", "/me", "Basic abc", fiber.StatusUnauthorized},
		{"bad token", "/me", "Bearer abc", fiber.StatusUnauthorized},
		{"ok", "/me", "Bearer " + user.AccessToken, fiber.StatusOK},
		{"admin as user", "/admin", "Bearer " + user.AccessToken, fiber.StatusForbidden},
		{"admin as admin", "/admin", "Bearer " + admin.AccessToken, fiber.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}
