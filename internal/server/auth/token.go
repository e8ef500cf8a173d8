package auth

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/savethatagain/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims is the payload of a session token: the standard iat/exp pair plus
// the user it was issued to.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"userId"`
	Email  string `json:"email"`
}

// TokenCodec issues and verifies HS256 session tokens with a fixed secret
// and lifetime. Tokens cannot be revoked before they expire.
type TokenCodec struct {
	secret   []byte
	validity time.Duration
	now      func() time.Time
}

func NewTokenCodec(secret string, validity time.Duration) *TokenCodec {
	return &TokenCodec{secret: []byte(secret), validity: validity, now: time.Now}
}

// Issue signs a token for userID that expires after the codec's validity.
func (c *TokenCodec) Issue(userID, email string) (string, error) {
	now := c.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.validity)),
		},
		UserID: userID,
		Email:  email,
	})
	return token.SignedString(c.secret)
}

// Verify checks signature, algorithm and expiry. Expired tokens yield
// common.ErrTokenExpired; every other failure yields common.ErrInvalidToken.
func (c *TokenCodec) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrInvalidToken
	}

	if !token.Valid || claims.UserID == "" {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}
