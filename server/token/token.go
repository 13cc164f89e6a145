// Package token issues and validates the JWT bearer tokens used to
// authenticate with the conversion server.
package token

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Issuer is the issuer of every token created by this package.
const Issuer = "gnfs"

// Validate parses tok and checks that it was signed with secret and has not
// expired. It returns the subject of the token.
func Validate(tok string, secret []byte) (string, error) {
	parsed, err := jwt.Parse(tok, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS512.Alg()}), jwt.WithIssuer(Issuer), jwt.WithLeeway(time.Minute))
	if err != nil {
		return "", err
	}

	subj, err := parsed.Claims.GetSubject()
	if err != nil {
		return "", fmt.Errorf("cannot get subject: %w", err)
	}
	if subj == "" {
		return "", fmt.Errorf("token has no subject")
	}

	return subj, nil
}

// Get extracts the bearer token from the Authorization header of req.
func Get(req *http.Request) (string, error) {
	authHeader := strings.TrimSpace(req.Header.Get("Authorization"))

	if authHeader == "" {
		return "", fmt.Errorf("no authorization header present")
	}

	authParts := strings.SplitN(authHeader, " ", 2)
	if len(authParts) != 2 {
		return "", fmt.Errorf("authorization header not in Bearer format")
	}

	scheme := strings.TrimSpace(strings.ToLower(authParts[0]))
	token := strings.TrimSpace(authParts[1])

	if scheme != "bearer" {
		return "", fmt.Errorf("authorization header not in Bearer format")
	}

	return token, nil
}

// Generate creates a token for subject signed with secret that is valid for
// the given duration.
func Generate(secret []byte, subject string, valid time.Duration) (string, error) {
	if subject == "" {
		return "", fmt.Errorf("subject cannot be empty")
	}

	claims := &jwt.MapClaims{
		"iss": Issuer,
		"exp": time.Now().Add(valid).Unix(),
		"sub": subject,
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)

	tokStr, err := tok.SignedString(secret)
	if err != nil {
		return "", err
	}
	return tokStr, nil
}
