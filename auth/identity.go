// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/danielhkuo/campus-ballot/models"
)

// Claims is what the identity provider puts in a voter or admin token.
type Claims struct {
	Role      string `json:"role"`
	StudentID string `json:"student_id,omitempty"`
	Eligible  *bool  `json:"eligible,omitempty"`
	jwt.RegisteredClaims
}

// Identity is the verified caller.
type Identity struct {
	VoterID  string
	Role     string
	Eligible bool
}

func (i Identity) IsAdmin() bool { return i.Role == models.RoleAdmin }

// TokenVerifier checks HS256 tokens issued by the identity provider.
type TokenVerifier struct {
	secret         []byte
	requireVoterID bool
}

func NewTokenVerifier(secret string, requireVoterID bool) *TokenVerifier {
	return &TokenVerifier{secret: []byte(secret), requireVoterID: requireVoterID}
}

// Verify parses the token and resolves the caller's voter ID. With
// requireVoterID set, voter tokens must carry a student_id claim and that
// claim is the voter ID; otherwise the subject is used when it is absent.
func (v *TokenVerifier) Verify(tokenString string) (Identity, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return v.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Identity{}, ErrExpiredToken
		}
		return Identity{}, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return Identity{}, ErrInvalidToken
	}

	id := Identity{
		Role:     claims.Role,
		Eligible: claims.Eligible == nil || *claims.Eligible,
	}
	if id.Role == "" {
		id.Role = models.RoleVoter
	}
	if id.Role != models.RoleVoter && id.Role != models.RoleAdmin {
		return Identity{}, ErrInvalidToken
	}

	switch {
	case claims.StudentID != "":
		id.VoterID = claims.StudentID
	case v.requireVoterID && id.Role == models.RoleVoter:
		return Identity{}, ErrMissingVoterID
	default:
		id.VoterID = claims.Subject
	}
	if id.VoterID == "" {
		return Identity{}, ErrInvalidToken
	}

	return id, nil
}

// IssueToken signs a token the way the identity provider does. Used by
// tests and local tooling; production tokens come from the provider.
func IssueToken(secret string, claims Claims, expiresIn time.Duration) (string, error) {
	now := time.Now()
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(expiresIn))
	if claims.ID == "" {
		claims.ID = uuid.NewString()
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", err
	}
	return signed, nil
}
