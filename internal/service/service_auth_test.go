package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/bananahana720/pocket-brain-sub000/internal/config"
	"github.com/bananahana720/pocket-brain-sub000/internal/logger"
	"github.com/bananahana720/pocket-brain-sub000/internal/mock"
	"github.com/bananahana720/pocket-brain-sub000/internal/store"
	"github.com/bananahana720/pocket-brain-sub000/models"
)

func testAuthConfig() config.Auth {
	return config.Auth{
		TokenSignKey:  "test-sign-key",
		TokenIssuer:   "pocket-brain-test",
		TokenDuration: time.Hour,
	}
}

func TestHashPassword_Roundtrip(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)
	assert.Contains(t, hash, "$argon2id$")

	ok, err := VerifyPassword(hash, "correct horse battery staple")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword(hash, "wrong password")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHashPassword_UniqueSalts(t *testing.T) {
	first, err := HashPassword("same password")
	require.NoError(t, err)
	second, err := HashPassword("same password")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestVerifyPassword_Malformed(t *testing.T) {
	_, err := VerifyPassword("not-an-argon2-hash", "whatever")
	require.Error(t, err)
}

func TestAuthService_RegisterUser(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	userRepo := mock.NewMockUserRepository(ctrl)
	svc := NewAuthService(userRepo, testAuthConfig(), logger.Nop())
	ctx := context.Background()

	userRepo.EXPECT().CreateUser(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, u models.User) (models.User, error) {
			assert.Equal(t, "neo", u.Login)
			assert.Empty(t, u.Password, "plaintext never reaches storage")
			ok, err := VerifyPassword(u.PasswordHash, "follow the white rabbit")
			require.NoError(t, err)
			assert.True(t, ok)

			u.UserID = 7
			return u, nil
		},
	)

	registered, err := svc.RegisterUser(ctx, models.User{Login: "neo", Password: "follow the white rabbit"})
	require.NoError(t, err)
	assert.Equal(t, int64(7), registered.UserID)
}

func TestAuthService_RegisterUser_InvalidData(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc := NewAuthService(mock.NewMockUserRepository(ctrl), testAuthConfig(), logger.Nop())

	_, err := svc.RegisterUser(context.Background(), models.User{Login: "neo"})
	require.ErrorIs(t, err, ErrInvalidDataProvided)
}

func TestAuthService_Login(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	hash, err := HashPassword("secret")
	require.NoError(t, err)

	userRepo := mock.NewMockUserRepository(ctrl)
	svc := NewAuthService(userRepo, testAuthConfig(), logger.Nop())
	ctx := context.Background()

	stored := models.User{UserID: 3, Login: "neo", PasswordHash: hash}
	userRepo.EXPECT().FindUserByLogin(ctx, "neo").Return(stored, nil).Times(2)

	authenticated, err := svc.Login(ctx, models.User{Login: "neo", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), authenticated.UserID)

	_, err = svc.Login(ctx, models.User{Login: "neo", Password: "not secret"})
	require.ErrorIs(t, err, ErrWrongPassword)
}

func TestAuthService_Login_UnknownUser(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	userRepo := mock.NewMockUserRepository(ctrl)
	svc := NewAuthService(userRepo, testAuthConfig(), logger.Nop())
	ctx := context.Background()

	userRepo.EXPECT().FindUserByLogin(ctx, "ghost").Return(models.User{}, store.ErrNoUserWasFound)

	_, err := svc.Login(ctx, models.User{Login: "ghost", Password: "pw"})
	require.ErrorIs(t, err, store.ErrNoUserWasFound)
}

func TestAuthService_TokenRoundtrip(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc := NewAuthService(mock.NewMockUserRepository(ctrl), testAuthConfig(), logger.Nop())
	ctx := context.Background()

	token, err := svc.CreateToken(ctx, models.User{UserID: 42, Login: "neo"})
	require.NoError(t, err)
	require.NotEmpty(t, token.SignedString)

	parsed, err := svc.ParseToken(ctx, token.SignedString)
	require.NoError(t, err)
	assert.Equal(t, int64(42), parsed.UserID)
}

func TestAuthService_ParseToken_Invalid(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc := NewAuthService(mock.NewMockUserRepository(ctrl), testAuthConfig(), logger.Nop())

	_, err := svc.ParseToken(context.Background(), "not.a.jwt")
	require.ErrorIs(t, err, ErrTokenIsExpiredOrInvalid)
}
