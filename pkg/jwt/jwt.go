package jwt

import (
	"errors"
	"fmt"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
)

// Claims is the token payload issued by the identity service.
// Subject carries the authenticated user id. Times are Unix seconds; zero
// means the claim is absent.
type Claims struct {
	ID        string `json:"jti,omitempty"`
	Subject   string `json:"sub"`
	Role      string `json:"role,omitempty"`
	Issuer    string `json:"iss,omitempty"`
	ExpiresAt int64  `json:"exp,omitempty"`
	NotBefore int64  `json:"nbf,omitempty"`
	IssuedAt  int64  `json:"iat,omitempty"`
}

func numericDate(ts int64) *gojwt.NumericDate {
	if ts == 0 {
		return nil
	}
	return gojwt.NewNumericDate(time.Unix(ts, 0))
}

func (c Claims) GetExpirationTime() (*gojwt.NumericDate, error) { return numericDate(c.ExpiresAt), nil }
func (c Claims) GetIssuedAt() (*gojwt.NumericDate, error)       { return numericDate(c.IssuedAt), nil }
func (c Claims) GetNotBefore() (*gojwt.NumericDate, error)      { return numericDate(c.NotBefore), nil }
func (c Claims) GetIssuer() (string, error)                     { return c.Issuer, nil }
func (c Claims) GetSubject() (string, error)                    { return c.Subject, nil }
func (c Claims) GetAudience() (gojwt.ClaimStrings, error)       { return nil, nil }

// Service signs and verifies HS256 tokens.
type Service struct {
	key    []byte
	now    func() time.Time
	parser *gojwt.Parser
}

// Option configures Service.
type Option func(*Service)

// WithClock replaces time.Now for temporal claim checks.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New returns ErrMissingSigningKey for an empty secret.
func New(secret string, opts ...Option) (*Service, error) {
	if secret == "" {
		return nil, ErrMissingSigningKey
	}
	s := &Service{key: []byte(secret), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	s.parser = gojwt.NewParser(gojwt.WithTimeFunc(s.now))
	return s, nil
}

// Generate signs claims. IssuedAt is filled in when zero.
func (s *Service) Generate(claims Claims) (string, error) {
	if claims.Subject == "" {
		return "", ErrMissingClaims
	}
	if claims.IssuedAt == 0 {
		claims.IssuedAt = s.now().Unix()
	}

	token, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims).SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("jwt: sign: %w", err)
	}
	return token, nil
}

// Parse verifies the signature, algorithm and temporal claims of token.
func (s *Service) Parse(token string) (Claims, error) {
	var claims Claims
	_, err := s.parser.ParseWithClaims(token, &claims, func(t *gojwt.Token) (any, error) {
		if t.Method != gojwt.SigningMethodHS256 {
			return nil, ErrUnexpectedSigningMethod
		}
		return s.key, nil
	})
	if err != nil {
		return Claims{}, translate(err)
	}
	if claims.Subject == "" {
		return Claims{}, ErrInvalidClaims
	}
	return claims, nil
}

// translate maps parser failures onto this package's errors. The original
// error stays in the chain.
func translate(err error) error {
	switch {
	case errors.Is(err, gojwt.ErrTokenExpired):
		return errors.Join(ErrExpiredToken, err)
	case errors.Is(err, gojwt.ErrTokenSignatureInvalid):
		return errors.Join(ErrInvalidSignature, err)
	default:
		return errors.Join(ErrInvalidToken, err)
	}
}
