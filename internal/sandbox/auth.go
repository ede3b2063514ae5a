package sandbox

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/minibeans/internal/dependencies/clock"
)

// Errors
var (
	ErrInvalidPassword = errors.New("invalid password")
	ErrAccessDenied    = errors.New("access denied")
)

const adminSubject = "admin"

// Auth checks the admin password and issues signed session tokens
type Auth struct {
	clock        clock.Clock
	passwordHash []byte
	secret       []byte
	cfg          Config
}

// NewAuth hashes the configured admin password
func NewAuth(clk clock.Clock, cfg Config) (*Auth, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.MinCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash admin password: %w", err)
	}
	return &Auth{
		clock:        clk,
		passwordHash: hash,
		secret:       []byte(cfg.TokenSecret),
		cfg:          cfg,
	}, nil
}

// Login returns a signed token valid for the configured TTL
func (a *Auth) Login(password string) (string, error) {
	if bcrypt.CompareHashAndPassword(a.passwordHash, []byte(password)) != nil {
		return "", ErrInvalidPassword
	}

	now := a.clock.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": adminSubject,
		"iat": now.Unix(),
		"exp": now.Add(a.cfg.TokenTTL).Unix(),
	})
	return token.SignedString(a.secret)
}

// Valid reports whether token was issued here and has not expired.
// Expiry is checked against the injected clock rather than wall time.
func (a *Auth) Valid(token string) bool {
	if token == "" {
		return false
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	parsed, err := parser.Parse(token, func(*jwt.Token) (interface{}, error) {
		return a.secret, nil
	})
	if err != nil || !parsed.Valid {
		return false
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || claims["sub"] != adminSubject {
		return false
	}
	return claims.VerifyExpiresAt(a.clock.Now().Unix(), true)
}
