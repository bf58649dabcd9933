package services

import (
	"artist-hub/auth"
	"artist-hub/domain"
	"artist-hub/errors"
	"artist-hub/repositories"
	"fmt"
	"log/slog"
)

type IAuthService interface {
	Login(username, password string) (Token, error)
	Register(username, password string) (Token, error)
}

// AuthService signs users up and in against the local backend.
type AuthService struct {
	userRepository repositories.IUserRepository
	issuer         *auth.TokenIssuer
	log            *slog.Logger
}

type Token string

func (t Token) String() string {
	return string(t)
}

func NewAuthService(repo repositories.IUserRepository, issuer *auth.TokenIssuer, log *slog.Logger) IAuthService {
	return &AuthService{userRepository: repo, issuer: issuer, log: log}
}

func (s *AuthService) Register(username, password string) (Token, error) {
	// Cheap checks first, hashing is expensive
	if err := auth.ValidateRegister(auth.RegisterRequest{Username: username, Password: password}); err != nil {
		return "", fmt.Errorf("%w: %v", errors.ErrInvalidPassword, err)
	}

	hashedPassword, err := auth.HashPassword(password)
	if err != nil {
		return "", fmt.Errorf("hashing failed: %w", err)
	}

	if err := s.userRepository.CreateUser(username, hashedPassword); err != nil {
		return "", err
	}
	s.log.Info("User registered", "username", username)

	token, err := s.issuer.Generate(domain.UserID(username))
	if err != nil {
		return "", errors.ErrTokenGeneration
	}
	return Token(token), nil
}

func (s *AuthService) Login(username, password string) (Token, error) {
	user, err := s.userRepository.GetUser(username)
	if err != nil {
		// Same error as a bad password, so usernames can't be probed
		return "", errors.ErrInvalidCredentials
	}

	match, err := auth.ComparePassword(password, user.PasswordHash)
	if err != nil || !match {
		return "", errors.ErrInvalidCredentials
	}

	token, err := s.issuer.Generate(domain.UserID(user.Username))
	if err != nil {
		return "", errors.ErrTokenGeneration
	}
	return Token(token), nil
}
