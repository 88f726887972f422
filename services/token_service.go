package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/washbook/washbook-api/models"
)

// TokenTTL is how long an issued login token stays valid
const TokenTTL = 24 * time.Hour

var (
	ErrTokenInvalid = errors.New("token is invalid or expired")
	ErrTokenRevoked = errors.New("token has been revoked")
)

// Claims carried by a login token
type Claims struct {
	UserID uint   `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// TokenDenylist records revoked token IDs until their natural expiry,
// which is how logout invalidates an otherwise still-valid JWT.
type TokenDenylist interface {
	Revoke(ctx context.Context, jti string, until time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// TokenService issues, validates and revokes login tokens
type TokenService struct {
	secret   string
	denylist TokenDenylist
}

var tokenServiceInstance *TokenService

// InitTokenService initializes the token service
func InitTokenService(secret string, denylist TokenDenylist) *TokenService {
	tokenServiceInstance = &TokenService{secret: secret, denylist: denylist}
	return tokenServiceInstance
}

// GetTokenService returns the initialized token service instance
func GetTokenService() *TokenService {
	return tokenServiceInstance
}

// SetTokenService sets the token service instance (primarily for testing)
func SetTokenService(s *TokenService) {
	tokenServiceInstance = s
}

// Generate creates a signed HS256 token for the user
func (s *TokenService) Generate(user *models.User) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: user.ID,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.secret))
}

// Parse validates a token string and checks it against the denylist
func (s *TokenService) Parse(ctx context.Context, tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (any, error) {
		return []byte(s.secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, ErrTokenInvalid
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}

	revoked, err := s.denylist.IsRevoked(ctx, claims.ID)
	if err != nil {
		// A denylist outage must not silently accept revoked tokens
		logrus.WithFields(logrus.Fields{"jti": claims.ID}).Errorf("denylist check failed: %v", err)
		return nil, fmt.Errorf("denylist check failed: %w", err)
	}
	if revoked {
		return nil, ErrTokenRevoked
	}
	return claims, nil
}

// Revoke denylists the token until its expiry
func (s *TokenService) Revoke(ctx context.Context, claims *Claims) error {
	until := time.Now().Add(TokenTTL)
	if claims.ExpiresAt != nil {
		until = claims.ExpiresAt.Time
	}
	return s.denylist.Revoke(ctx, claims.ID, until)
}

// RedisDenylist backs the denylist with redis keys that expire alongside
// the tokens they revoke.
type RedisDenylist struct {
	client *redis.Client
}

// NewRedisDenylist creates a redis-backed denylist
func NewRedisDenylist(client *redis.Client) *RedisDenylist {
	return &RedisDenylist{client: client}
}

func denylistKey(jti string) string {
	return "token:denylist:" + jti
}

// Revoke marks a token ID revoked until the given time
func (d *RedisDenylist) Revoke(ctx context.Context, jti string, until time.Time) error {
	ttl := time.Until(until)
	if ttl <= 0 {
		return nil // already expired, nothing to revoke
	}
	return d.client.Set(ctx, denylistKey(jti), "1", ttl).Err()
}

// IsRevoked reports whether a token ID is on the denylist
func (d *RedisDenylist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	_, err := d.client.Get(ctx, denylistKey(jti)).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// MemoryDenylist is an in-process denylist used in development and tests
// when no redis address is configured.
type MemoryDenylist struct {
	mu      sync.RWMutex
	entries map[string]time.Time
}

// NewMemoryDenylist creates an in-memory denylist
func NewMemoryDenylist() *MemoryDenylist {
	return &MemoryDenylist{entries: make(map[string]time.Time)}
}

// Revoke marks a token ID revoked until the given time
func (d *MemoryDenylist) Revoke(_ context.Context, jti string, until time.Time) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.entries[jti] = until
	return nil
}

// IsRevoked reports whether a token ID is on the denylist
func (d *MemoryDenylist) IsRevoked(_ context.Context, jti string) (bool, error) {
	d.mu.RLock()
	until, exists := d.entries[jti]
	d.mu.RUnlock()
	if !exists {
		return false, nil
	}
	if time.Now().After(until) {
		d.mu.Lock()
		delete(d.entries, jti)
		d.mu.Unlock()
		return false, nil
	}
	return true, nil
}
