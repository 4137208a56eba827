package auth

import (
	"github.com/approvalengine/expense-service/internal"
	"golang.org/x/crypto/bcrypt"
)

// ServiceAPI is the surface the HTTP handler depends on.
type ServiceAPI interface {
	Authenticate(dto LoginDTO) (AuthTokens, error)
	RefreshTokens(refreshToken string) (AuthTokens, error)
	ValidateAccessToken(tokenString string) (*Claims, error)
	HashPassword(password string) (string, error)
}

// RepositoryAPI is the credential-lookup surface the service depends on.
type RepositoryAPI interface {
	GetPasswordForUsername(email string) (passwordHash string, p internal.Principal, err error)
	GetPrincipal(userID int64) (internal.Principal, error)
}

func VerifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}
