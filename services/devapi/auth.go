// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package devapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// TokenCookie is the name of the session cookie set by POST /signin.
const TokenCookie = "token"

// ErrUnauthorized is returned for a missing, forged or expired token.
var ErrUnauthorized = errors.New("unauthorized")

// =============================================================================
// Auth provider
// =============================================================================

// AuthInfo is the identity carried by a valid token.
type AuthInfo struct {
	UserID string
	Email  string
	Role   string
}

// AuthProvider issues and validates session tokens.
//
// Implementations must be safe for concurrent use.
type AuthProvider interface {
	Issue(info AuthInfo) (token string, expires time.Time, err error)
	Validate(ctx context.Context, token string) (*AuthInfo, error)
}

// claims is the JWT payload.
type claims struct {
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// JWTProvider signs HS256 tokens with a shared secret.
type JWTProvider struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

var _ AuthProvider = (*JWTProvider)(nil)

// NewJWTProvider returns a provider signing with secret. A zero ttl means
// 24h.
func NewJWTProvider(secret string, ttl time.Duration) (*JWTProvider, error) {
	if secret == "" {
		return nil, errors.New("devapi: jwt secret is required")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &JWTProvider{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

func (p *JWTProvider) Issue(info AuthInfo) (string, time.Time, error) {
	now := p.now()
	expires := now.Add(p.ttl)
	c := claims{
		Email: info.Email,
		Role:  info.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   info.UserID,
			Issuer:    "inkwell-devapi",
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(p.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expires, nil
}

func (p *JWTProvider) Validate(_ context.Context, token string) (*AuthInfo, error) {
	var c claims
	parsed, err := jwt.ParseWithClaims(token, &c, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return p.secret, nil
	}, jwt.WithTimeFunc(p.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	if !parsed.Valid || c.Subject == "" {
		return nil, ErrUnauthorized
	}
	return &AuthInfo{UserID: c.Subject, Email: c.Email, Role: c.Role}, nil
}

// =============================================================================
// Middleware
// =============================================================================

const authInfoKey = "inkwell_auth_info"

// CookieAuth validates the token cookie when one is sent. Requests without
// the cookie pass through anonymously; a bad cookie is rejected with 401.
func CookieAuth(provider AuthProvider) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(TokenCookie)
		if err != nil || token == "" {
			c.Next()
			return
		}
		info, err := provider.Validate(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, failure("Invalid or expired session"))
			return
		}
		c.Set(authInfoKey, info)
		c.Next()
	}
}

// AuthFrom returns the identity stored by CookieAuth, or nil.
func AuthFrom(c *gin.Context) *AuthInfo {
	v, ok := c.Get(authInfoKey)
	if !ok {
		return nil
	}
	info, _ := v.(*AuthInfo)
	return info
}

// actingAs checks that a body's userId matches the cookie identity, when
// there is one.
func actingAs(c *gin.Context, userID string) bool {
	info := AuthFrom(c)
	return info == nil || info.UserID == userID
}
