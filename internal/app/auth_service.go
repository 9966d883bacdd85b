package app

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/kferacho3/BodegaDanes/internal/clock"
	"github.com/kferacho3/BodegaDanes/internal/domain"
)

// AuthService performs the admin credential check and issues the session
// token the admin dashboard presents on calendar mutations. Single-account:
// the operator's email and a bcrypt hash of the password come from
// configuration, not the database.
type AuthService struct {
	email        string
	passwordHash string
	secret       []byte
	maxAge       time.Duration
	clock        clock.Clock
}

func NewAuthService(email, passwordHash, secret string, maxAge time.Duration, clk clock.Clock) *AuthService {
	return &AuthService{
		email:        email,
		passwordHash: passwordHash,
		secret:       []byte(secret),
		maxAge:       maxAge,
		clock:        clk,
	}
}

// Login checks the credentials and returns a signed session token.
// Both a wrong email and a wrong password come back as
// ErrInvalidCredentials; the caller learns nothing about which was wrong.
func (s *AuthService) Login(email, password string) (string, error) {
	if !strings.EqualFold(email, s.email) {
		return "", domain.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.passwordHash), []byte(password)); err != nil {
		return "", domain.ErrInvalidCredentials
	}

	now := s.clock.Now()
	claims := jwt.RegisteredClaims{
		Subject:   "admin",
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.maxAge)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", err
	}
	return signed, nil
}

// VerifyToken checks a session token's signature and expiry.
func (s *AuthService) VerifyToken(token string) error {
	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{},
		func(t *jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.clock.Now),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !parsed.Valid {
		return domain.ErrInvalidCredentials
	}
	return nil
}
