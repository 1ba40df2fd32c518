package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// JWT validation errors
var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrInvalidSignature = errors.New("invalid token signature")
	ErrInvalidIssuer    = errors.New("invalid token issuer")
	ErrInvalidAudience  = errors.New("invalid token audience")
)

// Claims represents the authenticated identity carried by a token
type Claims struct {
	UserID string   `json:"sub"`
	Email  string   `json:"email"`
	Roles  []string `json:"roles"`
}

// JWTConfig configures token validation
type JWTConfig struct {
	SigningMethod string
	SecretKey     string
	Issuer        string
	Audience      []string
}

// JWTValidator validates bearer tokens
type JWTValidator struct {
	config JWTConfig
	method jwt.SigningMethod
}

// NewJWTValidator creates a validator for the given configuration.
// Only HMAC signing methods are supported.
func NewJWTValidator(config JWTConfig) (*JWTValidator, error) {
	if config.SecretKey == "" {
		return nil, fmt.Errorf("secret key is required")
	}

	method := jwt.GetSigningMethod(config.SigningMethod)
	if method == nil {
		return nil, fmt.Errorf("unsupported signing method: %s", config.SigningMethod)
	}
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("signing method %s is not an HMAC method", config.SigningMethod)
	}

	return &JWTValidator{
		config: config,
		method: method,
	}, nil
}

// tokenClaims is the registered-claims shape parsed off the wire
type tokenClaims struct {
	Email string   `json:"email"`
	Roles []string `json:"roles"`
	jwt.RegisteredClaims
}

// ValidateToken parses and verifies a token, returning its claims
func (v *JWTValidator) ValidateToken(tokenString string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &tokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != v.method.Alg() {
			return nil, ErrInvalidSignature
		}
		return []byte(v.config.SecretKey), nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			// Expired tokens keep their claims so the refresh flow can
			// re-issue for the same subject
			if parsed != nil {
				if claims, ok := parsed.Claims.(*tokenClaims); ok && claims.Subject != "" {
					return claimsFromToken(claims), ErrExpiredToken
				}
			}
			return nil, ErrExpiredToken
		case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, ErrInvalidSignature):
			return nil, ErrInvalidSignature
		default:
			return nil, ErrInvalidToken
		}
	}

	claims, ok := parsed.Claims.(*tokenClaims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}

	if v.config.Issuer != "" && claims.Issuer != v.config.Issuer {
		return nil, ErrInvalidIssuer
	}

	if len(v.config.Audience) > 0 && !audienceMatches(claims.Audience, v.config.Audience) {
		return nil, ErrInvalidAudience
	}

	if claims.Subject == "" {
		return nil, ErrInvalidToken
	}

	return claimsFromToken(claims), nil
}

func claimsFromToken(claims *tokenClaims) *Claims {
	roles := claims.Roles
	if len(roles) == 0 {
		roles = []string{"authenticated"}
	}
	return &Claims{
		UserID: claims.Subject,
		Email:  claims.Email,
		Roles:  roles,
	}
}

func audienceMatches(tokenAud jwt.ClaimStrings, allowed []string) bool {
	for _, aud := range tokenAud {
		for _, want := range allowed {
			if aud == want {
				return true
			}
		}
	}
	return false
}

// JWTGeneratorConfig configures token generation
type JWTGeneratorConfig struct {
	SigningMethod string
	SecretKey     string
	Issuer        string
	Audience      []string
	ExpiryTime    time.Duration
}

// JWTGenerator issues signed tokens, used by the refresh endpoint and
// by tests
type JWTGenerator struct {
	config JWTGeneratorConfig
	method jwt.SigningMethod
}

// NewJWTGenerator creates a generator for the given configuration
func NewJWTGenerator(config JWTGeneratorConfig) (*JWTGenerator, error) {
	if config.SecretKey == "" {
		return nil, fmt.Errorf("secret key is required")
	}
	// A negative expiry is allowed so callers can mint already-expired
	// tokens when exercising the refresh flow
	if config.ExpiryTime == 0 {
		config.ExpiryTime = 24 * time.Hour
	}

	method := jwt.GetSigningMethod(config.SigningMethod)
	if method == nil {
		return nil, fmt.Errorf("unsupported signing method: %s", config.SigningMethod)
	}

	return &JWTGenerator{
		config: config,
		method: method,
	}, nil
}

// GenerateToken issues a signed token for the given identity
func (g *JWTGenerator) GenerateToken(userID, email string, roles []string) (string, error) {
	now := time.Now()
	claims := tokenClaims{
		Email: email,
		Roles: roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    g.config.Issuer,
			Audience:  g.config.Audience,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(g.config.ExpiryTime)),
		},
	}

	token := jwt.NewWithClaims(g.method, claims)
	return token.SignedString([]byte(g.config.SecretKey))
}
