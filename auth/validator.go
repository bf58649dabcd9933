package auth

import (
	"artist-hub/errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

const (
	minPasswordClasses  = 3
	minDistinctPassword = 6
)

var validate = validator.New()

// RegisterRequest is a sign-up form. Usernames double as user identifiers
// and artist handles. Passwords may be passphrases: spaces count as symbols.
type RegisterRequest struct {
	Username string `validate:"required,alphanum,min=3,max=32"`
	Password string `validate:"required,min=10,max=128"`
}

func ValidateRegister(req RegisterRequest) error {
	if err := validate.Struct(req); err != nil {
		return err
	}
	return checkPassword(req.Username, req.Password)
}

// checkPassword applies the rules the struct tags cannot express.
func checkPassword(username, password string) error {
	if strings.TrimSpace(password) != password {
		return fmt.Errorf("%w: leading or trailing spaces", errors.ErrInvalidPassword)
	}
	if strings.Contains(strings.ToLower(password), strings.ToLower(username)) {
		return fmt.Errorf("%w: contains the username", errors.ErrInvalidPassword)
	}
	if classes := characterClasses(password); classes < minPasswordClasses {
		return fmt.Errorf("%w: mixes %d character classes, %d needed", errors.ErrInvalidPassword, classes, minPasswordClasses)
	}
	distinct := make(map[rune]struct{})
	for _, char := range strings.ToLower(password) {
		distinct[char] = struct{}{}
	}
	if len(distinct) < minDistinctPassword {
		return fmt.Errorf("%w: too repetitive", errors.ErrInvalidPassword)
	}
	return nil
}

// characterClasses counts upper case, lower case, digits and symbols.
func characterClasses(s string) int {
	var hasUpper, hasLower, hasNumber, hasSymbol bool
	for _, char := range s {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsNumber(char):
			hasNumber = true
		case unicode.IsPunct(char), unicode.IsSymbol(char), unicode.IsSpace(char):
			hasSymbol = true
		}
	}
	count := 0
	for _, present := range []bool{hasUpper, hasLower, hasNumber, hasSymbol} {
		if present {
			count++
		}
	}
	return count
}
