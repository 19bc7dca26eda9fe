package utils

import (
	"errors" // Error values
	"time"   // Time for token expiration

	"github.com/golang-jwt/jwt/v5" // JWT library
)

var (
	// ErrMissingSecret is returned when tokens are issued without a signing secret
	ErrMissingSecret = errors.New("jwt secret is not configured")
	// ErrInvalidToken covers malformed, tampered and expired tokens alike
	ErrInvalidToken = errors.New("invalid or expired token")
)

// DefaultTokenTTL is the access token lifetime when none is configured
const DefaultTokenTTL = 7 * 24 * time.Hour

// TokenIdentity is the identity a token asserts
type TokenIdentity struct {
	ID       string `json:"id"`       // User ID
	Email    string `json:"email"`    // User email
	Username string `json:"username"` // Username
}

// JWT Claims. The user id travels as "id"; the embedded ID field is the
// standard "jti" claim and is not set.
type Claims struct {
	UserID               string `json:"id"`       // User ID
	Email                string `json:"email"`    // User email
	Username             string `json:"username"` // Username
	jwt.RegisteredClaims        // Standard JWT claims
}

// Identity returns the identity the claims assert
func (c *Claims) Identity() TokenIdentity {
	return TokenIdentity{ID: c.UserID, Email: c.Email, Username: c.Username}
}

// TokenService issues and verifies HS256 bearer tokens
type TokenService struct {
	secret []byte           // Shared signing secret
	ttl    time.Duration    // Token lifetime
	now    func() time.Time // Clock, replaceable in tests
}

// NewTokenService creates a token service; a non-positive ttl falls back to DefaultTokenTTL
func NewTokenService(secret string, ttl time.Duration) *TokenService {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenService{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// WithClock returns a copy of the service reading time from now
func (s *TokenService) WithClock(now func() time.Time) *TokenService {
	cp := *s
	cp.now = now
	return &cp
}

// Issue creates a signed token for the given identity
func (s *TokenService) Issue(identity TokenIdentity) (string, error) {
	if len(s.secret) == 0 {
		return "", ErrMissingSecret
	}
	now := s.now()
	// Set token claims
	claims := Claims{
		UserID:   identity.ID,
		Email:    identity.Email,
		Username: identity.Username,
		// Standard claims
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)), // Token expires after the configured TTL
			IssuedAt:  jwt.NewNumericDate(now),            // Issued at current time
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims) // Create token with claims
	return token.SignedString(s.secret)                        // Sign the token with the secret
}

// Verify parses and validates a token string, returning the embedded claims
func (s *TokenService) Verify(tokenStr string) (*Claims, error) {
	if len(s.secret) == 0 {
		return nil, ErrMissingSecret
	}
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (any, error) {
		return s.secret, nil // Return the secret key for validation
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), // Reject alg switching
		jwt.WithExpirationRequired(),                                 // Tokens without exp are not accepted
		jwt.WithTimeFunc(s.now),                                      // Evaluate expiry against our clock
	)
	// Check for parsing errors
	if err != nil {
		return nil, errors.Join(ErrInvalidToken, err)
	}
	// Validate token and extract claims
	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil // Return claims if valid
	}
	// Return error if token is invalid
	return nil, ErrInvalidToken
}
