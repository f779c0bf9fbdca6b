// Package auth issues and validates the tokens that bind a player name to a game.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/form3tech-oss/jwt-go"
)

var (
	// ErrInvalidToken indicates the token is malformed, expired or signed
	// with another secret.
	ErrInvalidToken = errors.New("auth: invalid token")

	// ErrMissingSecret is returned when an Authority is built without a secret.
	ErrMissingSecret = errors.New("auth: secret is required")
)

const issuer = "unoserver"

// Identity is what a valid token proves: who the player is and which game
// they were admitted to.
type Identity struct {
	Player string `json:"player"`
	GameID string `json:"gameID"`
}

// Validator validates authentication tokens.
type Validator interface {
	// Validate checks a token and returns the identity it carries.
	// Returns (nil, ErrInvalidToken) when the token cannot be trusted.
	Validate(ctx context.Context, token string) (*Identity, error)
}

// Authority signs and validates HS256 tokens with a shared secret.
type Authority struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// Option configures an Authority
type Option func(*Authority)

// WithClock overrides the time used to stamp issued tokens
func WithClock(now func() time.Time) Option {
	return func(a *Authority) {
		a.now = now
	}
}

// NewAuthority creates an Authority. Tokens expire after ttl.
func NewAuthority(secret string, ttl time.Duration, opts ...Option) (*Authority, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("auth: token ttl must be positive, got %s", ttl)
	}

	a := &Authority{secret: []byte(secret), ttl: ttl, now: time.Now}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Issue signs a token for player in game gameID
func (a *Authority) Issue(player, gameID string) (string, error) {
	if player == "" || gameID == "" {
		return "", fmt.Errorf("auth: player and game are required")
	}

	now := a.now()
	claims := jwt.MapClaims{
		"iss":  issuer,
		"sub":  player,
		"game": gameID,
		"iat":  now.Unix(),
		"exp":  now.Add(a.ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.secret)
}

func (a *Authority) Validate(ctx context.Context, tokenString string) (*Identity, error) {
	if tokenString == "" {
		return nil, ErrInvalidToken
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !claims.VerifyIssuer(issuer, true) {
		return nil, ErrInvalidToken
	}

	player, _ := claims["sub"].(string)
	gameID, _ := claims["game"].(string)
	if player == "" || gameID == "" {
		return nil, ErrInvalidToken
	}

	return &Identity{Player: player, GameID: gameID}, nil
}
