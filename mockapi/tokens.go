package mockapi

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// sessionClaims is the JWT payload of a minted session token.
type sessionClaims struct {
	jwt.RegisteredClaims
	Name  string `json:"nome"`
	Email string `json:"email"`
}

// mintToken creates a signed session token for the account.
func (s *Server) mintToken(acct *Account) (string, error) {
	now := time.Now()
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  codeString(acct),
			IssuedAt: jwt.NewNumericDate(now),
			ID:       fmt.Sprintf("sess-%d-%d", acct.Code, now.UnixNano()),
		},
		Name:  acct.Name,
		Email: acct.Email,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.signingKey)
}

// verifyToken parses and validates a bearer token.
func (s *Server) verifyToken(tokenString string) (*sessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &sessionClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.signingKey, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*sessionClaims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenMalformed
	}
	return claims, nil
}
