package auth

import (
	"errors"
	"slices"
	"time"

	"task-tracker-api/internal/cache"
	"task-tracker-api/internal/config"
	"task-tracker-api/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrTokenRevoked = errors.New("token has been revoked")

// Claims represents the JWT claims
type Claims struct {
	UID         string `json:"uid"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName,omitempty"`
	PhotoURL    string `json:"photoURL,omitempty"`
	jwt.RegisteredClaims
}

// UserInfo rebuilds the identity carried by the token
func (c *Claims) UserInfo() models.UserInfo {
	return models.UserInfo{
		UID:         c.UID,
		DisplayName: c.DisplayName,
		Email:       c.Email,
		PhotoURL:    c.PhotoURL,
	}
}

// Tokens issues and validates HS256 session tokens. Tokens revoked at sign-out are
// remembered until they would have expired anyway.
type Tokens struct {
	secret   []byte
	issuer   string
	audience string
	ttl      time.Duration
	revoked  *cache.SimpleCache[string, struct{}]
}

func NewTokens(cfg config.AuthConfig) *Tokens {
	return &Tokens{
		secret:   []byte(cfg.JWTSecret),
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
		ttl:      cfg.TokenTTL,
		revoked:  cache.NewSimpleCache[string, struct{}](cache.Options[string, struct{}]{ConcurrencySafe: true}),
	}
}

// TTL is how long an issued token stays valid
func (t *Tokens) TTL() time.Duration {
	return t.ttl
}

// GenerateToken generates a JWT token for the given user
func (t *Tokens) GenerateToken(user models.UserInfo) (string, error) {
	now := time.Now()
	claims := Claims{
		UID:         user.UID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		PhotoURL:    user.PhotoURL,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.UID,
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    t.issuer,
			Audience:  jwt.ClaimStrings{t.audience},
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

// ValidateToken validates a JWT token and returns the claims
func (t *Tokens) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return t.secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.Issuer != t.issuer {
		return nil, errors.New("invalid token issuer")
	}
	if !slices.Contains(claims.Audience, t.audience) {
		return nil, errors.New("invalid token audience")
	}
	if claims.UID == "" {
		return nil, errors.New("token carries no uid")
	}
	if claims.ID != "" && t.revoked.Has(claims.ID) {
		return nil, ErrTokenRevoked
	}
	return claims, nil
}

// Revoke rejects the token behind claims for the rest of its lifetime
func (t *Tokens) Revoke(claims *Claims) {
	if claims == nil || claims.ID == "" {
		return
	}
	ttl := t.ttl
	if claims.ExpiresAt != nil {
		ttl = time.Until(claims.ExpiresAt.Time)
	}
	if ttl <= 0 {
		return
	}
	t.revoked.Set(claims.ID, struct{}{}, ttl)
}

// PurgeRevoked forgets revocations whose tokens have expired
func (t *Tokens) PurgeRevoked() {
	t.revoked.PurgeExpired()
}
