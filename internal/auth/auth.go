package auth

import (
	"errors"
	"time"

	"github.com/approvalengine/expense-service/internal"
	"github.com/golang-jwt/jwt/v5"
)

// AuthInfo is the internal domain model used by services and converters.
type AuthInfo struct {
	UserID    string
	Token     string
	ExpiresAt time.Time
}

type AuthResponseV1 struct {
	ID    string `json:"id"`
	Token string `json:"token"`
}

// TokenGenerator creates tokens and expiration times.
type TokenGenerator interface {
	GenerateAccessToken(p internal.Principal) (token string, err error)
	GenerateRefreshToken(p internal.Principal) (token string, err error)
	ValidateToken(tokenString string) (*Claims, error)
}

// AuthService performs authentication-related business logic.
type AuthService interface {
	Authenticate(dto LoginDTO) (AuthTokens, error)
	RefreshTokens(refreshToken string) (AuthTokens, error)
	ValidateAccessToken(tokenString string) (*Claims, error)
}

type AuthTokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Claims carries the principal the rest of the system needs:
// {user_id, company_id, role}, per spec's identity contract.
type Claims struct {
	UserID    int64  `json:"user_id"`
	CompanyID int64  `json:"company_id"`
	Role      string `json:"role"`
	Email     string `json:"email"`
	jwt.RegisteredClaims
}

func (c Claims) Principal() internal.Principal {
	return internal.Principal{
		UserID:    c.UserID,
		CompanyID: c.CompanyID,
		Role:      internal.Role(c.Role),
	}
}

type JWTTokenGenerator struct {
	AccessTokenSecret  []byte
	RefreshTokenSecret []byte
	AccessTokenTTL     time.Duration
	RefreshTokenTTL    time.Duration
}

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
	ErrUserInactive       = errors.New("user is inactive")
)

// ToV1 converts internal AuthInfo domain model to API-ready view model.
func (a AuthInfo) ToV1() AuthResponseV1 {
	return AuthResponseV1{
		ID:    a.UserID,
		Token: a.Token,
	}
}
