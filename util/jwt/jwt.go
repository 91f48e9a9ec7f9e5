package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is what the API reads off a verified token.
type Claims struct {
	UserID int64
	Role   string
}

func Issue(secret string, userID int64, role string, ttlHours int) (string, error) {
	claims := jwt.MapClaims{
		"sub":  userID,
		"role": role,
		"exp":  time.Now().Add(time.Duration(ttlHours) * time.Hour).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(secret))
}

// FromToken reads sub and role off a token already verified by echo-jwt.
func FromToken(tok *jwt.Token) (Claims, error) {
	if tok == nil || !tok.Valid {
		return Claims{}, errors.New("invalid token")
	}
	mc, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, errors.New("invalid claims")
	}
	sub, ok := mc["sub"].(float64)
	if !ok {
		return Claims{}, errors.New("sub missing in claims")
	}
	role, _ := mc["role"].(string)
	return Claims{UserID: int64(sub), Role: role}, nil
}
