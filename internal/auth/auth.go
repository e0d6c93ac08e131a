// Package auth guards operator endpoints with HS256 bearer tokens.
package auth

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"pokeproxy/internal/common/errors"
	"pokeproxy/internal/common/logging"
)

// Issuer is stamped into every token this service mints
const Issuer = "pokeproxy"

// DefaultTokenTTL applies when GenerateJWT is given a zero ttl
const DefaultTokenTTL = 24 * time.Hour

// Claims carried by a stats token
type Claims struct {
	Scope string `json:"scope,omitempty"`
	jwt.RegisteredClaims
}

// Auth signs and validates bearer tokens
type Auth struct {
	secret []byte
	logger logging.Logger
	now    func() time.Time
}

// New creates an Auth. An empty secret is a configuration error.
func New(secret string, logger logging.Logger) (*Auth, error) {
	if secret == "" {
		return nil, errors.ConfigError("JWT secret is required")
	}
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}
	return &Auth{
		secret: []byte(secret),
		logger: logger,
		now:    time.Now,
	}, nil
}

// GenerateJWT mints a token for subject valid for ttl
func (a *Auth) GenerateJWT(subject, scope string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	now := a.now()
	claims := &Claims{
		Scope: scope,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ValidateJWT parses tokenString and checks signature, issuer and expiry
func (a *Auth) ValidateJWT(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, errors.UnauthorizedError("empty token")
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return a.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(Issuer),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil {
		return nil, errors.UnauthorizedError("invalid token").WithContext("reason", err.Error())
	}
	if !token.Valid {
		return nil, errors.UnauthorizedError("invalid token")
	}
	return claims, nil
}

// RequireBearer rejects requests without a valid "Authorization: Bearer" token
func (a *Auth) RequireBearer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			errors.WriteHTTP(w, errors.UnauthorizedError("Missing bearer token"))
			return
		}

		claims, err := a.ValidateJWT(strings.TrimSpace(token))
		if err != nil {
			a.logger.WithContext(r.Context()).Debug("Bearer token rejected",
				logging.String("path", r.URL.Path),
				logging.Err(err))
			errors.WriteHTTP(w, errors.UnauthorizedError("Invalid bearer token"))
			return
		}

		r.Header.Set("X-Token-Subject", claims.Subject)
		next.ServeHTTP(w, r)
	})
}
