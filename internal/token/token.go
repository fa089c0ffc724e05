package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims bind an approval link to one application, approver and chain step.
type Claims struct {
	Email string `json:"email"`
	Step  int    `json:"step"`
	jwt.RegisteredClaims
}

func (c Claims) ApplicationID() string {
	return c.Subject
}

// Issuer signs and verifies approval action tokens.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewIssuer(secret string, ttl time.Duration) *Issuer {
	return &Issuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (i *Issuer) Issue(applicationID, email string, step int) (string, error) {
	now := i.now()
	claims := Claims{
		Email: email,
		Step:  step,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   applicationID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign action token: %w", err)
	}
	return signed, nil
}

func (i *Issuer) Verify(raw string) (Claims, error) {
	if raw == "" {
		return Claims{}, errors.New("token is empty")
	}

	var claims Claims
	_, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(i.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return Claims{}, fmt.Errorf("invalid action token: %w", err)
	}
	if claims.Subject == "" {
		return Claims{}, errors.New("invalid action token: missing subject")
	}
	return claims, nil
}
