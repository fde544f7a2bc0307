package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var jwtSecret []byte

// SetJWTSecret sets the signing secret. Must be called once at startup
// before any token is generated or parsed.
func SetJWTSecret(secret string) {
	jwtSecret = []byte(secret)
}

// Claims carried by an access token. ActiveOwnerID is nil until the
// client commits an actor switch; middleware treats nil as "acting as
// the personal owner". The claim is a hint only: every request
// re-validates it against current membership state.
type Claims struct {
	PersonID      uint   `json:"person_id"`
	Handle        string `json:"handle"`
	SystemRole    string `json:"system_role"`
	ActiveOwnerID *uint  `json:"active_owner_id,omitempty"`
	jwt.RegisteredClaims
}

// GenerateToken creates a signed access token for a person.
func GenerateToken(personID uint, handle, systemRole string, activeOwnerID *uint, expireHours int) (string, error) {
	now := time.Now()
	claims := Claims{
		PersonID:      personID,
		Handle:        handle,
		SystemRole:    systemRole,
		ActiveOwnerID: activeOwnerID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(expireHours) * time.Hour)),
			Issuer:    "agora",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret)
}

// ParseToken validates a token string and returns its claims.
func ParseToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return jwtSecret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}

	return claims, nil
}
