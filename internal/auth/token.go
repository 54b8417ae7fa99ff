package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/findtrainer/auth-api/internal/config"
	"github.com/findtrainer/auth-api/internal/models"
)

// Issuer signs claim sets into compact HS256 tokens. The signing key,
// issuer and audience come from configuration and are constant for the
// process lifetime.
type Issuer struct {
	secret   []byte
	issuer   string
	audience string
	ttl      time.Duration
}

// NewIssuer creates a token issuer from the JWT configuration
func NewIssuer(cfg *config.JWTConfig) *Issuer {
	return &Issuer{
		secret:   []byte(cfg.Secret),
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
		ttl:      cfg.TokenTTL,
	}
}

// Issue builds the claim set for an authenticated account and signs it.
// Claims: sub (user id), username, one roles entry per assigned role,
// iss/aud verbatim from configuration, exp = iat + TTL (24h by default).
func (i *Issuer) Issue(user *models.User, roles []string) (string, time.Time, error) {
	now := time.Now().UTC()
	expiresAt := now.Add(i.ttl)

	claims := jwt.MapClaims{
		"sub":      user.UserID,
		"username": user.Username,
		"roles":    roles,
		"iat":      now.Unix(),
		"exp":      expiresAt.Unix(),
		"iss":      i.issuer,
		"aud":      i.audience,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, err
	}

	return signed, expiresAt, nil
}
