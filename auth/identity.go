package auth

import (
	"artist-hub/domain"
	"artist-hub/errors"
	"fmt"
	"sync"
)

// TokenIdentity resolves the current user from the session token it holds.
// An expired token resolves to nobody.
type TokenIdentity struct {
	mu     sync.RWMutex
	issuer *TokenIssuer
	token  string
}

func NewTokenIdentity(issuer *TokenIssuer) *TokenIdentity {
	return &TokenIdentity{issuer: issuer}
}

// SignIn replaces the session token after checking it.
func (i *TokenIdentity) SignIn(token string) (domain.UserID, error) {
	claims, err := i.issuer.Validate(token)
	if err != nil {
		return "", fmt.Errorf("%w: %v", errors.ErrUnauthenticated, err)
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	i.token = token
	return domain.UserID(claims.Username), nil
}

func (i *TokenIdentity) SignOut() {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.token = ""
}

func (i *TokenIdentity) CurrentUser() (domain.UserID, error) {
	token := i.Token()
	if token == "" {
		return "", errors.ErrUnauthenticated
	}
	claims, err := i.issuer.Validate(token)
	if err != nil {
		return "", fmt.Errorf("%w: %v", errors.ErrUnauthenticated, err)
	}
	return domain.UserID(claims.Username), nil
}

// Token returns the raw session token, used as bearer credential by the remote gateway.
func (i *TokenIdentity) Token() string {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.token
}
