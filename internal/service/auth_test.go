package service

import (
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/templui/filebox/internal/domain"
	"github.com/templui/filebox/internal/model"
	"github.com/templui/filebox/internal/repository"
	fbtest "github.com/templui/filebox/internal/testutil"
)

const testSecret = "test-secret-0123456789"

func newAuthService(t *testing.T) (*AuthService, repository.UserRepository) {
	t.Helper()

	users := repository.NewUserRepository(fbtest.NewDB(t))
	return NewAuthService(users, testSecret, false, time.Hour), users
}

func TestSeedAdminOnlyOnce(t *testing.T) {
	svc, users := newAuthService(t)
	ctx := t.Context()

	created, err := svc.SeedAdmin(ctx, "admin", "Xq7!mLp2#vRt9z")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = svc.SeedAdmin(ctx, "other", "Xq7!mLp2#vRt9z")
	require.NoError(t, err)
	assert.False(t, created)

	count, err := users.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	admin, err := users.ByUsername(ctx, "admin")
	require.NoError(t, err)
	assert.True(t, admin.IsAdmin)
}

func TestLogin(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := t.Context()

	_, err := svc.SeedAdmin(ctx, "admin", "Xq7!mLp2#vRt9z")
	require.NoError(t, err)

	user, err := svc.Login(ctx, " admin ", "Xq7!mLp2#vRt9z")
	require.NoError(t, err)
	assert.Equal(t, "admin", user.Username)

	_, err = svc.Login(ctx, "admin", "wrong password")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = svc.Login(ctx, "nobody", "Xq7!mLp2#vRt9z")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestJWTRoundTrip(t *testing.T) {
	svc, users := newAuthService(t)
	ctx := t.Context()

	user := &model.User{ID: "u1", Username: "alice", PasswordHash: "secret-hash", CreatedAt: time.Now().UTC()}
	require.NoError(t, users.Create(ctx, user))

	token, expiry, err := svc.GenerateJWT(user)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiry, 5*time.Second)

	got, err := svc.UserFromToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "u1", got.ID)
	assert.Empty(t, got.PasswordHash)

	t.Run("other secret", func(t *testing.T) {
		other := NewAuthService(users, "another-secret-0123456789", false, time.Hour)
		_, err := other.UserFromToken(ctx, token)
		assert.Error(t, err)
	})

	t.Run("expired", func(t *testing.T) {
		expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"user_id": "u1",
			"exp":     time.Now().Add(-time.Minute).Unix(),
		})
		signed, err := expired.SignedString([]byte(testSecret))
		require.NoError(t, err)

		_, err = svc.VerifyJWT(signed)
		assert.ErrorIs(t, err, jwt.ErrTokenExpired)
	})

	t.Run("missing user claim", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"exp": time.Now().Add(time.Minute).Unix()})
		signed, err := token.SignedString([]byte(testSecret))
		require.NoError(t, err)

		_, err = svc.UserFromToken(ctx, signed)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestTokenFromRequest(t *testing.T) {
	req, _ := http.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, TokenFromRequest(req))

	req.AddCookie(&http.Cookie{Name: AuthCookieName, Value: "from-cookie"})
	assert.Equal(t, "from-cookie", TokenFromRequest(req))

	req.Header.Set("Authorization", "Bearer from-header")
	assert.Equal(t, "from-header", TokenFromRequest(req))
}
