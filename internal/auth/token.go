package auth

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Audience expected on every access token, matching what the external
// identity provider stamps on its sessions.
const Audience = "authenticated"

// TokenTTL applies only to locally minted tokens (dev and tests).
const TokenTTL = 24 * time.Hour

var ErrUnauthenticated = errors.New("unauthenticated")

// Claims carried by the verifier's access token. The subject is the stable
// external identity key (a UUID).
type Claims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

func signingSecret() ([]byte, error) {
	s := os.Getenv("AUTH_JWT_SECRET")
	if s == "" {
		return nil, errors.New("AUTH_JWT_SECRET not set")
	}
	return []byte(s), nil
}

// GenerateToken mints an HS256 token for a given identity. Used by tests and
// local development; in production tokens come from the external verifier.
func GenerateToken(subject uuid.UUID, email string) (string, error) {
	secret, err := signingSecret()
	if err != nil {
		return "", err
	}

	now := time.Now()
	claims := &Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject.String(),
			Audience:  []string{Audience},
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// ParseAndValidate verifies signature, expiry and audience, and checks that
// the subject is a well-formed identity key. Every failure mode collapses to
// ErrUnauthenticated; callers get no distinction between expired, malformed
// and forged tokens.
func ParseAndValidate(tokenStr string) (*Claims, error) {
	secret, err := signingSecret()
	if err != nil {
		return nil, err
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithAudience(Audience),
	)
	tok, err := parser.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	})
	if err != nil || !tok.Valid {
		return nil, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}

	claims, ok := tok.Claims.(*Claims)
	if !ok {
		return nil, ErrUnauthenticated
	}
	if _, err := uuid.Parse(claims.Subject); err != nil {
		return nil, ErrUnauthenticated
	}
	return claims, nil
}
