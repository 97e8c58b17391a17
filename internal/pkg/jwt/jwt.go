package jwt

import (
	"time"

	"github.com/cmlabs-hris/hris-console-go/internal/domain/user"
	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

const (
	TokenTypeAccess = "access"
	TokenTypeSSE    = "sse"

	sseTokenTTL = 5 * time.Minute
)

// SessionClaims are the identity claims carried by an access token.
type SessionClaims struct {
	UserID     string
	Email      string
	DivisionID *string
	Role       user.Role
}

// StreamClaims identify the subscriber of an SSE connection.
type StreamClaims struct {
	UserID     string
	Role       user.Role
	DivisionID *string
}

type Service interface {
	GenerateAccessToken(claims SessionClaims, ttl time.Duration) (token string, expiresAt int64, err error)
	GenerateSSEToken(claims StreamClaims) (token string, expiresIn int, err error)
	ValidateSSEToken(tokenString string) (StreamClaims, error)
	JWTAuth() *jwtauth.JWTAuth
}

// JWTService verifies access tokens issued by the HR backend with the shared
// secret and issues the console's own short-lived SSE tokens.
type JWTService struct {
	tokenAuth *jwtauth.JWTAuth
}

func NewJWTService(secretKey string) Service {
	return &JWTService{
		tokenAuth: jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
	}
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

// GenerateAccessToken signs a session token in the backend's claim layout.
// Production tokens come from the backend; this is used by local tooling and tests.
func (j *JWTService) GenerateAccessToken(claims SessionClaims, ttl time.Duration) (token string, expiresAt int64, err error) {
	expiresAt = time.Now().Add(ttl).Unix()

	_, tokenString, err := j.tokenAuth.Encode(map[string]interface{}{
		"user_id":     claims.UserID,
		"email":       claims.Email,
		"division_id": valueOrNil(claims.DivisionID),
		"role":        string(claims.Role),
		"type":        TokenTypeAccess,
		"exp":         expiresAt,
	})
	return tokenString, expiresAt, err
}

func valueOrNil(value *string) interface{} {
	if value == nil {
		return nil
	}
	return *value
}

// GenerateSSEToken generates a short-lived token for SSE connections
func (j *JWTService) GenerateSSEToken(claims StreamClaims) (token string, expiresIn int, err error) {
	_, tokenString, err := j.tokenAuth.Encode(map[string]interface{}{
		"user_id":     claims.UserID,
		"role":        string(claims.Role),
		"division_id": valueOrNil(claims.DivisionID),
		"type":        TokenTypeSSE,
		"exp":         time.Now().Add(sseTokenTTL).Unix(),
	})
	if err != nil {
		return "", 0, err
	}

	return tokenString, int(sseTokenTTL.Seconds()), nil
}

// ValidateSSEToken validates an SSE token and returns its subject
func (j *JWTService) ValidateSSEToken(tokenString string) (StreamClaims, error) {
	token, err := j.tokenAuth.Decode(tokenString)
	if err != nil {
		return StreamClaims{}, err
	}
	if err := jwt.Validate(token, jwt.WithAcceptableSkew(30*time.Second)); err != nil {
		return StreamClaims{}, err
	}

	if tokenType, ok := token.Get("type"); !ok || tokenType != TokenTypeSSE {
		return StreamClaims{}, jwt.ErrInvalidJWT()
	}

	userIDVal, ok := token.Get("user_id")
	if !ok {
		return StreamClaims{}, jwt.ErrInvalidJWT()
	}
	userID, ok := user.ClaimID(userIDVal)
	if !ok {
		return StreamClaims{}, jwt.ErrInvalidJWT()
	}

	claims := StreamClaims{UserID: userID}
	if roleVal, ok := token.Get("role"); ok {
		role, _ := roleVal.(string)
		claims.Role = user.Role(role)
	}
	if divisionVal, ok := token.Get("division_id"); ok {
		claims.DivisionID = user.OptionalClaimID(divisionVal)
	}

	return claims, nil
}
