package auth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

var ErrMalformedCredential = errors.New("auth: malformed credential")

var unverified = jwt.NewParser()

// Decode reads the claims of an access credential without verifying its signature or
// expiry. The client never holds the signing key; an expired but well-formed credential
// still decodes and is rejected later by the resource backend.
func Decode(token string) (Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Claims{}, fmt.Errorf("%w: empty", ErrMalformedCredential)
	}

	var claims Claims
	if _, _, err := unverified.ParseUnverified(token, &claims); err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrMalformedCredential, err)
	}

	if claims.TokenType != "" && claims.TokenType != TokenTypeAccess {
		return Claims{}, fmt.Errorf("%w: token_type %q", ErrMalformedCredential, claims.TokenType)
	}
	switch {
	case claims.UserID == "":
		return Claims{}, fmt.Errorf("%w: user_id missing", ErrMalformedCredential)
	case claims.Email == "":
		return Claims{}, fmt.Errorf("%w: email missing", ErrMalformedCredential)
	case claims.UserType == "":
		return Claims{}, fmt.Errorf("%w: user_type missing", ErrMalformedCredential)
	}
	return claims, nil
}
