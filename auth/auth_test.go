package auth

import (
	"artist-hub/domain"
	"artist-hub/errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestHashAndCompare(t *testing.T) {
	req := require.New(t)
	password := "Afrobeat-Summer-2024!"

	hash, err := HashPassword(password)
	req.NoError(err)
	req.True(strings.HasPrefix(hash, "$argon2id$"))

	match, err := ComparePassword(password, hash)
	req.NoError(err)
	req.True(match)

	match, err = ComparePassword("wrong-password", hash)
	req.NoError(err)
	req.False(match)

	_, err = ComparePassword(password, "$bcrypt$broken")
	req.Error(err)
}

func TestRegistrationValidation(t *testing.T) {
	tests := []struct {
		name    string
		req     RegisterRequest
		wantErr bool
		is      error
	}{
		{"Valid request", RegisterRequest{"amara", "ComplexPass123!"}, false, nil},
		{"Valid passphrase", RegisterRequest{"amara", "velvet drums at dawn 7"}, false, nil},
		{"Username too short", RegisterRequest{"am", "ComplexPass123!"}, true, nil},
		{"Username with spaces", RegisterRequest{"amara k", "ComplexPass123!"}, true, nil},
		{"Password too short", RegisterRequest{"amara", "Short1!"}, true, nil},
		{"Password too long", RegisterRequest{"amara", strings.Repeat("Ab1!", 33)}, true, nil},
		{"Two character classes", RegisterRequest{"amara", "nouppercase123"}, true, errors.ErrInvalidPassword},
		{"Contains username", RegisterRequest{"amara", "Amara-Beats-2024"}, true, errors.ErrInvalidPassword},
		{"Repetitive", RegisterRequest{"amara", "Aa1!Aa1!Aa1!"}, true, errors.ErrInvalidPassword},
		{"Trailing space", RegisterRequest{"amara", "ComplexPass123! "}, true, errors.ErrInvalidPassword},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRegister(tt.req)
			if !tt.wantErr {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			if tt.is != nil {
				require.ErrorIs(t, err, tt.is)
			}
		})
	}
}

func TestTokenIdentity(t *testing.T) {
	req := require.New(t)
	issuer := NewTokenIssuer("test-secret", time.Hour)
	identity := NewTokenIdentity(issuer)

	// Given nobody signed in
	_, err := identity.CurrentUser()
	req.ErrorIs(err, errors.ErrUnauthenticated)

	// When amara signs in
	token, err := issuer.Generate("amara")
	req.NoError(err)
	user, err := identity.SignIn(token)
	req.NoError(err)
	req.Equal(domain.UserID("amara"), user)

	current, err := identity.CurrentUser()
	req.NoError(err)
	req.Equal(domain.UserID("amara"), current)
	req.Equal(token, identity.Token())

	// Then signing out clears the identity
	identity.SignOut()
	_, err = identity.CurrentUser()
	req.ErrorIs(err, errors.ErrUnauthenticated)
}

func TestTokenIdentity_Rejects_Foreign_And_Expired_Tokens(t *testing.T) {
	req := require.New(t)
	issuer := NewTokenIssuer("test-secret", time.Hour)
	identity := NewTokenIdentity(issuer)

	foreign, err := NewTokenIssuer("other-secret", time.Hour).Generate("kofi")
	req.NoError(err)
	_, err = identity.SignIn(foreign)
	req.ErrorIs(err, errors.ErrUnauthenticated)

	token, err := issuer.Generate("amara")
	req.NoError(err)
	_, err = identity.SignIn(token)
	req.NoError(err)

	// When the clock moves past expiry
	issuer.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	_, err = identity.CurrentUser()
	req.ErrorIs(err, errors.ErrUnauthenticated)
}

func BenchmarkHashPassword(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_, _ = HashPassword("A-very-long-and-complex-password-for-bench-123!")
	}
}
