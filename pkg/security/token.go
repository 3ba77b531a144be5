package security

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("authorization token invalid")
	ErrTokenExpired = errors.New("authorization token expired")
)

// Identity is what an auth token proves about its bearer
type Identity struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
}

type claims struct {
	jwt.RegisteredClaims
	UserID int64  `json:"id"`
	Email  string `json:"email"`
}

// TokenIssuer mints and checks HS256 signed identity tokens
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue returns a signed token for id that expires after the issuer's ttl
func (t *TokenIssuer) Issue(id Identity) (string, error) {
	now := t.now()

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(id.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
		UserID: id.ID,
		Email:  id.Email,
	})

	return tok.SignedString(t.secret)
}

// Verify checks the signature and expiry of s and returns the identity it carries
func (t *TokenIssuer) Verify(s string) (Identity, error) {
	c := &claims{}

	tok, err := jwt.ParseWithClaims(s, c, func(*jwt.Token) (any, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Identity{}, ErrTokenExpired
		}

		return Identity{}, ErrInvalidToken
	}

	if !tok.Valid || c.UserID <= 0 || c.Email == "" {
		return Identity{}, ErrInvalidToken
	}

	return Identity{ID: c.UserID, Email: c.Email}, nil
}
