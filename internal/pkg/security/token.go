package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dealerseo/seodash/app/models"
	"github.com/dealerseo/seodash/internal/pkg/env"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// TokenClaims are carried by API bearer tokens.
type TokenClaims struct {
	Email        string `json:"email"`
	Role         string `json:"role"`
	AgencyID     string `json:"agency_id,omitempty"`
	DealershipID string `json:"dealership_id,omitempty"`
	jwt.RegisteredClaims
}

// TokenConfig controls issuance and verification of API tokens.
type TokenConfig struct {
	Secret string
	TTL    time.Duration
	Issuer string
}

// LoadTokenConfig reads JWT_SECRET and JWT_TTL_HOURS.
func LoadTokenConfig() TokenConfig {
	return TokenConfig{
		Secret: env.GetEnv("JWT_SECRET", ""),
		TTL:    time.Duration(env.GetEnvInt("JWT_TTL_HOURS", 24)) * time.Hour,
		Issuer: env.GetEnv("JWT_ISSUER", "seodash"),
	}
}

// GenerateToken signs an HS256 token for user.
func GenerateToken(cfg TokenConfig, user *models.User, now time.Time) (string, time.Time, error) {
	if cfg.Secret == "" {
		return "", time.Time{}, errors.New("secret is required for token generation")
	}
	expires := now.Add(cfg.TTL)
	claims := TokenClaims{
		Email: user.Email,
		Role:  user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			Issuer:    cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	if user.AgencyID != nil {
		claims.AgencyID = *user.AgencyID
	}
	if user.DealershipID != nil {
		claims.DealershipID = *user.DealershipID
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.Secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expires, nil
}

// VerifyToken checks signature, algorithm, issuer and expiry.
func VerifyToken(cfg TokenConfig, token string) (*TokenClaims, error) {
	if cfg.Secret == "" {
		return nil, errors.New("secret is required for token verification")
	}
	claims := &TokenClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(cfg.Secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(cfg.Issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !parsed.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
