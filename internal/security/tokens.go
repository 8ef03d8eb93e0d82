package security

import (
	"context"
	"errors"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/golang-jwt/jwt/v5"
)

const (
	purposeAccess = "access"
	purposeReset  = "reset"
)

// Tokens issues and verifies the HS256 tokens used for sessions and password resets.
type Tokens struct {
	auth      *jwtauth.JWTAuth
	accessTTL time.Duration
	resetTTL  time.Duration
	now       func() time.Time
}

func NewTokens(secret []byte, accessTTL, resetTTL time.Duration) *Tokens {
	return &Tokens{
		auth:      jwtauth.New("HS256", secret, nil),
		accessTTL: accessTTL,
		resetTTL:  resetTTL,
		now:       time.Now,
	}
}

// JWTAuth exposes the verifier for router middleware.
func (t *Tokens) JWTAuth() *jwtauth.JWTAuth {
	return t.auth
}

func (t *Tokens) IssueAccess(userID, role string) (string, error) {
	return t.issue(jwt.MapClaims{
		"user_id": userID,
		"role":    role,
		"purpose": purposeAccess,
	}, t.accessTTL)
}

func (t *Tokens) IssueReset(userID string) (string, error) {
	return t.issue(jwt.MapClaims{
		"user_id": userID,
		"purpose": purposeReset,
	}, t.resetTTL)
}

func (t *Tokens) issue(claims jwt.MapClaims, ttl time.Duration) (string, error) {
	now := t.now()
	claims["iat"] = now.Unix()
	claims["exp"] = now.Add(ttl).Unix()
	_, tokenString, err := t.auth.Encode(claims)
	return tokenString, err
}

// ParseReset verifies a reset token and returns the user it was issued for.
func (t *Tokens) ParseReset(tokenString string) (string, error) {
	token, err := jwtauth.VerifyToken(t.auth, tokenString)
	if err != nil {
		return "", err
	}
	claims, err := token.AsMap(context.Background())
	if err != nil {
		return "", err
	}
	if purpose, _ := claims["purpose"].(string); purpose != purposeReset {
		return "", errors.New("token is not a password reset token")
	}
	return UserIDFromClaims(claims)
}

// AccessUserID extracts the subject of a verified access token. Reset tokens
// are rejected so they cannot be used to call the API.
func AccessUserID(claims jwt.MapClaims) (string, error) {
	if purpose, _ := claims["purpose"].(string); purpose != purposeAccess {
		return "", errors.New("token is not an access token")
	}
	return UserIDFromClaims(claims)
}

func UserIDFromClaims(claims jwt.MapClaims) (string, error) {
	id, ok := claims["user_id"].(string)
	if !ok || id == "" {
		return "", errors.New("user_id claim is missing or not a string")
	}
	return id, nil
}
