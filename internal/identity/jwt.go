package identity

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)

// Claims carried by player tokens.
type Claims struct {
	PlayerID    uuid.UUID `json:"player_id"`
	DisplayName string    `json:"display_name,omitempty"`
	jwt.RegisteredClaims
}

// Resolver issues and validates player tokens.
type Resolver struct {
	secret []byte
	ttl    time.Duration
	issuer string
}

// NewResolver creates a token resolver. A zero ttl defaults to 24 hours.
func NewResolver(secret []byte, ttl time.Duration, issuer string) *Resolver {
	if ttl == 0 {
		ttl = 24 * time.Hour
	}
	if issuer == "" {
		issuer = "lexiduel"
	}
	return &Resolver{secret: secret, ttl: ttl, issuer: issuer}
}

// Issue signs a token for the player.
func (r *Resolver) Issue(playerID uuid.UUID, displayName string) (string, error) {
	now := time.Now()
	claims := Claims{
		PlayerID:    playerID,
		DisplayName: displayName,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    r.issuer,
			Subject:   playerID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(r.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(r.secret)
}

// Resolve validates a token string and returns the player id it names.
func (r *Resolver) Resolve(tokenString string) (uuid.UUID, error) {
	claims, err := r.Validate(tokenString)
	if err != nil {
		return uuid.Nil, err
	}
	return claims.PlayerID, nil
}

// Validate parses the token and returns its claims.
func (r *Resolver) Validate(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return r.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.PlayerID == uuid.Nil {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
