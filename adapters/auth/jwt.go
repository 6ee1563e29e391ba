// Package auth provides stateless authentication using JWT.
// Tokens are self-contained - no server-side session storage.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/preedep/MQUsageViewer/adapters/hasher"
	"github.com/preedep/MQUsageViewer/ports"
)

// ErrInvalidCredentials is returned by Issue on a username/password
// mismatch. Callers map it to 401 without detailing which field failed.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrUnauthorized is returned by Verify for any unusable token: missing,
// malformed, bad signature, or expired.
var ErrUnauthorized = errors.New("unauthorized")

// Claims represents the JWT claims for an authenticated session.
type Claims struct {
	jwt.RegisteredClaims
}

// TokenService issues and verifies signed session tokens for the single
// configured credential pair. Thread-safe; all fields are set once at
// construction and never mutated.
type TokenService struct {
	secret       []byte
	username     string
	passwordHash []byte
	salt         string
	hasher       ports.Hasher
	clock        ports.Clock
	expiration   time.Duration
}

// Config holds the credential material for a TokenService.
type Config struct {
	Secret       string
	Username     string
	PasswordHash []byte // bcrypt hash of password+salt, prepared at startup
	Salt         string // appended to the presented password before comparing
	Hasher       ports.Hasher
	Clock        ports.Clock
	Expiration   time.Duration
}

// NewTokenService creates a JWT token service. Expiration defaults to 24h.
func NewTokenService(cfg Config) *TokenService {
	if cfg.Expiration == 0 {
		cfg.Expiration = 24 * time.Hour
	}
	return &TokenService{
		secret:       []byte(cfg.Secret),
		username:     cfg.Username,
		passwordHash: cfg.PasswordHash,
		salt:         cfg.Salt,
		hasher:       cfg.Hasher,
		clock:        cfg.Clock,
		expiration:   cfg.Expiration,
	}
}

// Issue authenticates the credential pair and returns a signed token plus
// its expiry. Username comparison is constant-time; password comparison
// goes through bcrypt. Both checks always run so a bad username costs the
// same as a bad password.
func (s *TokenService) Issue(username, password string) (string, time.Time, error) {
	userOK := hasher.ConstantTimeEqual(username, s.username)
	passOK := s.hasher.Compare(s.passwordHash, password+s.salt)
	if !userOK || !passOK {
		return "", time.Time{}, ErrInvalidCredentials
	}

	now := s.clock.Now().UTC()
	expiresAt := now.Add(s.expiration)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}

	return signed, expiresAt, nil
}

// Verify validates a token and returns its claims. There is no grace
// period: a token whose expiry is at or before the current instant fails.
func (s *TokenService) Verify(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrUnauthorized
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return s.clock.Now() }), jwt.WithExpirationRequired())

	if err != nil {
		return nil, ErrUnauthorized
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrUnauthorized
	}

	return claims, nil
}
