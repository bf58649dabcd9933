package services

import (
	"artist-hub/auth"
	"artist-hub/errors"
	"artist-hub/mocks"
	"artist-hub/repositories"
	"log/slog"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestAuthService_Register(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockIUserRepository(ctrl)
	issuer := auth.NewTokenIssuer("test-secret", 24*time.Hour)
	svc := NewAuthService(mockRepo, issuer, logs.GetLoggerFromLevel(slog.LevelDebug))

	t.Run("should register successfully when input is valid", func(t *testing.T) {
		req := require.New(t)

		// The repository receives a hash, never the plain password
		mockRepo.EXPECT().
			CreateUser("amara", gomock.Not("ComplexPass123!")).
			Return(nil).
			Times(1)

		token, err := svc.Register("amara", "ComplexPass123!")

		req.NoError(err)
		claims, err := issuer.Validate(token.String())
		req.NoError(err)
		req.Equal("amara", claims.Username)
	})

	t.Run("should fail when password complexity is not met", func(t *testing.T) {
		req := require.New(t)
		mockRepo.EXPECT().CreateUser(gomock.Any(), gomock.Any()).Times(0)

		token, err := svc.Register("amara", "simple")

		req.ErrorIs(err, errors.ErrInvalidPassword)
		req.Empty(token)
	})

	t.Run("should fail when user already exists in repository", func(t *testing.T) {
		req := require.New(t)
		mockRepo.EXPECT().
			CreateUser("kofi", gomock.Any()).
			Return(errors.ErrUserAlreadyExists).
			Times(1)

		_, err := svc.Register("kofi", "ComplexPass123!")

		req.ErrorIs(err, errors.ErrUserAlreadyExists)
	})
}

func TestAuthService_Login(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockIUserRepository(ctrl)
	issuer := auth.NewTokenIssuer("test-secret", 24*time.Hour)
	svc := NewAuthService(mockRepo, issuer, logs.GetLoggerFromLevel(slog.LevelDebug))

	hashedPassword, err := auth.HashPassword("Secret123456!")
	require.NoError(t, err)
	storedUser := repositories.User{Username: "amara", PasswordHash: hashedPassword}

	t.Run("should login successfully with correct credentials", func(t *testing.T) {
		req := require.New(t)
		mockRepo.EXPECT().GetUser("amara").Return(storedUser, nil).Times(1)

		token, err := svc.Login("amara", "Secret123456!")

		req.NoError(err)
		claims, err := issuer.Validate(string(token))
		req.NoError(err)
		req.Equal("amara", claims.Username)
	})

	t.Run("should return invalid credentials on a wrong password", func(t *testing.T) {
		req := require.New(t)
		mockRepo.EXPECT().GetUser("amara").Return(storedUser, nil).Times(1)

		_, err := svc.Login("amara", "WrongPassword123!")

		req.ErrorIs(err, errors.ErrInvalidCredentials)
	})

	t.Run("should return invalid credentials when user is not found", func(t *testing.T) {
		req := require.New(t)
		mockRepo.EXPECT().GetUser("ghost").Return(repositories.User{}, errors.ErrNotFound).Times(1)

		_, err := svc.Login("ghost", "anyPassword")

		req.ErrorIs(err, errors.ErrInvalidCredentials)
	})
}
