package services

import (
	"testing"
	"time"

	"group-chat/auth"
	"group-chat/errors"
	"group-chat/mocks"
	"group-chat/repositories"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestAuthService_Register(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockIUserRepository(ctrl)
	tokens := auth.NewTokenManager("test-secret", 24*time.Hour)
	svc := NewAuthService(mockRepo, tokens)

	t.Run("should register successfully when input is valid", func(t *testing.T) {
		req := require.New(t)
		username := "alice42"
		password := "ComplexPass123!" // Must satisfy the complexity rules

		// Expect CreateUser to be called with a hashed password (not the plain one)
		mockRepo.EXPECT().
			CreateUser(username, gomock.Not(gomock.Eq(password))).
			Return(repositories.User{ID: "user-uuid", Username: username}, nil).
			Times(1)

		result, err := svc.Register(username, password)

		req.NoError(err)
		req.Equal("user-uuid", result.UserID)
		req.NotEmpty(result.Token)

		userID, resolvedName, err := tokens.Verify(result.Token)
		req.NoError(err)
		req.Equal("user-uuid", userID)
		req.Equal(username, resolvedName)
	})

	t.Run("should fail when password complexity is not met", func(t *testing.T) {
		req := require.New(t)

		// Repository should NEVER be called
		mockRepo.EXPECT().CreateUser(gomock.Any(), gomock.Any()).Times(0)

		_, err := svc.Register("alice42", "simple")

		req.ErrorIs(err, errors.ErrInvalidPassword)
	})

	t.Run("should fail when user already exists in repository", func(t *testing.T) {
		req := require.New(t)

		mockRepo.EXPECT().
			CreateUser("duplicate", gomock.Any()).
			Return(repositories.User{}, errors.ErrUserAlreadyExists).
			Times(1)

		_, err := svc.Register("duplicate", "ComplexPass123!")

		req.ErrorIs(err, errors.ErrUserAlreadyExists)
	})
}

func TestAuthService_Login(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockIUserRepository(ctrl)
	tokens := auth.NewTokenManager("test-secret", 24*time.Hour)
	svc := NewAuthService(mockRepo, tokens)

	t.Run("should login successfully with correct credentials", func(t *testing.T) {
		req := require.New(t)
		password := "Secret123456!"

		hashedPassword, _ := auth.HashPassword(password)
		storedUser := repositories.User{
			ID:           "uuid-123",
			Username:     "alice42",
			PasswordHash: hashedPassword,
		}

		mockRepo.EXPECT().
			GetUserByUsername("alice42").
			Return(storedUser, nil).
			Times(1)

		result, err := svc.Login("alice42", password)

		req.NoError(err)
		req.Equal("uuid-123", result.UserID)
		req.NotEmpty(result.Token)
	})

	t.Run("should return invalid credentials on a wrong password", func(t *testing.T) {
		req := require.New(t)

		hashedPassword, _ := auth.HashPassword("CorrectPassword123!")
		mockRepo.EXPECT().
			GetUserByUsername("alice42").
			Return(repositories.User{Username: "alice42", PasswordHash: hashedPassword}, nil).
			Times(1)

		_, err := svc.Login("alice42", "WrongPassword123!")

		req.ErrorIs(err, errors.ErrInvalidCredentials)
	})

	t.Run("should return invalid credentials when user is not found", func(t *testing.T) {
		req := require.New(t)

		mockRepo.EXPECT().
			GetUserByUsername("unknown").
			Return(repositories.User{}, errors.ErrInvalidCredentials).
			Times(1)

		_, err := svc.Login("unknown", "anyPassword123!")

		req.ErrorIs(err, errors.ErrInvalidCredentials)
	})
}
