package jwtutil

import (
	"errors"
	"fmt"
	"time"

	"adminportal/pkg/config"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

// UserClaims represents the JWT claims for user authentication. A nil
// TenantID marks a host-level token with no tenant restriction.
type UserClaims struct {
	Email       string     `json:"email"`
	UserID      uuid.UUID  `json:"user_id"`
	TenantID    *uuid.UUID `json:"tenant_id,omitempty"`
	TenantSlug  string     `json:"tenant_slug,omitempty"`
	Role        string     `json:"role,omitempty"`
	Permissions []string   `json:"permissions,omitempty"`
	jwt.RegisteredClaims
}

// JWTUtil issues and validates tokens.
type JWTUtil struct {
	config *config.JWTConfig
}

// NewJWTUtil creates a new JWT utility with the given configuration
func NewJWTUtil(cfg *config.JWTConfig) *JWTUtil {
	return &JWTUtil{config: cfg}
}

// GenerateToken creates a signed token embedding user, tenant, role and
// permission claims with the configured expiry.
func (j *JWTUtil) GenerateToken(userID uuid.UUID, email string, tenantID *uuid.UUID, tenantSlug string, role string, permissions []string) (string, error) {
	if j.config == nil {
		return "", errors.New("JWT configuration not provided")
	}

	claims := UserClaims{
		Email:       email,
		UserID:      userID,
		TenantID:    tenantID,
		TenantSlug:  tenantSlug,
		Role:        role,
		Permissions: permissions,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Duration(j.config.ExpirationHours) * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(j.config.SigningKey))
}

// ValidateToken validates and parses the JWT token
func (j *JWTUtil) ValidateToken(tokenString string) (*UserClaims, error) {
	if j.config == nil {
		return nil, errors.New("JWT configuration not provided")
	}

	token, err := jwt.ParseWithClaims(
		tokenString,
		&UserClaims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(j.config.SigningKey), nil
		},
	)

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*UserClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, errors.New("invalid token")
}
