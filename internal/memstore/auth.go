package memstore

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultSessionTTL is used when the seed sets no session lifetime.
const DefaultSessionTTL = 24 * time.Hour

var errTokenRevoked = errors.New("token revoked")

// Claims identifies a session.
type Claims struct {
	jwt.RegisteredClaims
	Username string `json:"username"`
}

type sessions struct {
	secret  []byte
	ttl     time.Duration
	now     func() time.Time
	revoked map[string]struct{}
}

func (s *sessions) issue(username string) (string, error) {
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		Username: username,
	})
	return token.SignedString(s.secret)
}

func (s *sessions) parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)

	if _, err := parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	}); err != nil {
		return nil, err
	}
	if _, ok := s.revoked[claims.ID]; ok {
		return nil, errTokenRevoked
	}
	return claims, nil
}

func (s *sessions) revoke(c *Claims) {
	s.revoked[c.ID] = struct{}{}
}
