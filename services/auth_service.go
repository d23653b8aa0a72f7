package services

import (
	"fmt"

	"group-chat/auth"
	"group-chat/errors"
	"group-chat/repositories"
)

type IAuthService interface {
	Register(username, password string) (AuthResult, error)
	Login(username, password string) (AuthResult, error)
}

// AuthResult is what a successful register or login hands back to the
// transport layer.
type AuthResult struct {
	UserID   string
	Username string
	Token    string
}

type AuthService struct {
	userRepository repositories.IUserRepository
	tokens         *auth.TokenManager
}

func NewAuthService(repo repositories.IUserRepository, tokens *auth.TokenManager) IAuthService {
	return &AuthService{userRepository: repo, tokens: tokens}
}

func (s *AuthService) Register(username, password string) (AuthResult, error) {
	valReq := auth.RegisterRequest{
		Username: username,
		Password: password,
	}

	// Validate business rules before any expensive cryptographic work.
	if err := auth.ValidateRegister(valReq); err != nil {
		return AuthResult{}, fmt.Errorf("%w: %v", errors.ErrInvalidPassword, err)
	}

	// Hash in the service layer so the repository never sees plain passwords.
	hashedPassword, err := auth.HashPassword(password)
	if err != nil {
		return AuthResult{}, fmt.Errorf("hashing failed: %w", err)
	}

	user, err := s.userRepository.CreateUser(username, hashedPassword)
	if err != nil {
		return AuthResult{}, err // Propagates ErrUserAlreadyExists if the name is taken
	}

	token, err := s.tokens.Generate(user.ID, user.Username)
	if err != nil {
		return AuthResult{}, errors.ErrTokenGeneration
	}

	return AuthResult{UserID: user.ID, Username: user.Username, Token: token}, nil
}

func (s *AuthService) Login(username, password string) (AuthResult, error) {
	user, err := s.userRepository.GetUserByUsername(username)
	if err != nil {
		// Generic error to prevent user enumeration attacks.
		return AuthResult{}, errors.ErrInvalidCredentials
	}

	match, err := auth.ComparePassword(password, user.PasswordHash)
	if err != nil || !match {
		return AuthResult{}, errors.ErrInvalidCredentials
	}

	token, err := s.tokens.Generate(user.ID, user.Username)
	if err != nil {
		return AuthResult{}, errors.ErrTokenGeneration
	}

	return AuthResult{UserID: user.ID, Username: user.Username, Token: token}, nil
}
