package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"

	"github.com/approvalengine/expense-service/internal"
)

func TestAuth(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "Auth Module Suite")
}

type mockUserRepository struct {
	hashes        map[string]string
	principals    map[string]internal.Principal
	byID          map[int64]internal.Principal
	returnError   bool
	errorToReturn error
}

func newMockUserRepository() *mockUserRepository {
	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("correct_password"), bcrypt.DefaultCost)

	employee := internal.Principal{UserID: 1, CompanyID: 1, Role: internal.RoleEmployee}
	admin := internal.Principal{UserID: 2, CompanyID: 1, Role: internal.RoleAdmin}
	manager := internal.Principal{UserID: 3, CompanyID: 1, Role: internal.RoleManager}

	return &mockUserRepository{
		hashes: map[string]string{
			"user@example.com":    string(hashedPassword),
			"admin@example.com":   string(hashedPassword),
			"manager@example.com": string(hashedPassword),
		},
		principals: map[string]internal.Principal{
			"user@example.com":    employee,
			"admin@example.com":   admin,
			"manager@example.com": manager,
		},
		byID: map[int64]internal.Principal{
			1: employee,
			2: admin,
			3: manager,
		},
	}
}

func (m *mockUserRepository) GetPasswordForUsername(email string) (string, internal.Principal, error) {
	if m.returnError {
		return "", internal.Principal{}, m.errorToReturn
	}
	hash, ok := m.hashes[email]
	if !ok {
		return "", internal.Principal{}, errors.New("user not found")
	}
	return hash, m.principals[email], nil
}

func (m *mockUserRepository) GetPrincipal(userID int64) (internal.Principal, error) {
	if m.returnError {
		return internal.Principal{}, m.errorToReturn
	}
	p, ok := m.byID[userID]
	if !ok {
		return internal.Principal{}, errors.New("user not found")
	}
	return p, nil
}

func (m *mockUserRepository) setError(err error) {
	m.returnError = true
	m.errorToReturn = err
}

var _ = ginkgo.Describe("AuthService", func() {
	var (
		service       *Service
		mockRepo      *mockUserRepository
		tokenGen      *JWTTokenGenerator
		accessSecret  = "test-access-secret"
		refreshSecret = "test-refresh-secret"
	)

	ginkgo.BeforeEach(func() {
		mockRepo = newMockUserRepository()
		tokenGen = NewJWTTokenGenerator(accessSecret, refreshSecret)
		service = NewService(mockRepo, tokenGen)
	})

	ginkgo.Describe("Authenticate", func() {
		ginkgo.Context("when credentials are valid", func() {
			ginkgo.It("should return access and refresh tokens", func() {
				tokens, err := service.Authenticate(LoginDTO{Email: "user@example.com", Password: "correct_password"})

				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(tokens.AccessToken).ToNot(gomega.BeEmpty())
				gomega.Expect(tokens.RefreshToken).ToNot(gomega.BeEmpty())
				gomega.Expect(tokens.AccessToken).ToNot(gomega.Equal(tokens.RefreshToken))
			})

			ginkgo.It("should embed the principal in the access token claims", func() {
				tokens, err := service.Authenticate(LoginDTO{Email: "admin@example.com", Password: "correct_password"})
				gomega.Expect(err).ToNot(gomega.HaveOccurred())

				claims, err := service.ValidateAccessToken(tokens.AccessToken)
				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(claims.UserID).To(gomega.Equal(int64(2)))
				gomega.Expect(claims.CompanyID).To(gomega.Equal(int64(1)))
				gomega.Expect(claims.Role).To(gomega.Equal(string(internal.RoleAdmin)))
			})
		})

		ginkgo.Context("when credentials are invalid", func() {
			ginkgo.It("should return error for unknown email", func() {
				tokens, err := service.Authenticate(LoginDTO{Email: "nonexistent@example.com", Password: "any_password"})

				gomega.Expect(err).To(gomega.Equal(ErrInvalidCredentials))
				gomega.Expect(tokens.AccessToken).To(gomega.BeEmpty())
			})

			ginkgo.It("should return error for wrong password", func() {
				tokens, err := service.Authenticate(LoginDTO{Email: "user@example.com", Password: "wrong_password"})

				gomega.Expect(err).To(gomega.Equal(ErrInvalidCredentials))
				gomega.Expect(tokens.AccessToken).To(gomega.BeEmpty())
			})
		})

		ginkgo.Context("when input validation fails", func() {
			ginkgo.It("should return validation error for empty email", func() {
				_, err := service.Authenticate(LoginDTO{Email: "", Password: "password"})

				gomega.Expect(err).To(gomega.HaveOccurred())
				gomega.Expect(err.Error()).To(gomega.ContainSubstring("email is required"))
			})

			ginkgo.It("should return validation error for empty password", func() {
				_, err := service.Authenticate(LoginDTO{Email: "user@example.com", Password: ""})

				gomega.Expect(err).To(gomega.HaveOccurred())
				gomega.Expect(err.Error()).To(gomega.ContainSubstring("password is required"))
			})
		})

		ginkgo.Context("when repository returns error", func() {
			ginkgo.It("should return invalid credentials error", func() {
				mockRepo.setError(errors.New("database error"))

				tokens, err := service.Authenticate(LoginDTO{Email: "user@example.com", Password: "correct_password"})

				gomega.Expect(err).To(gomega.Equal(ErrInvalidCredentials))
				gomega.Expect(tokens.AccessToken).To(gomega.BeEmpty())
			})
		})
	})

	ginkgo.Describe("RefreshTokens", func() {
		var validRefreshToken string

		ginkgo.BeforeEach(func() {
			tokens, err := service.Authenticate(LoginDTO{Email: "user@example.com", Password: "correct_password"})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			validRefreshToken = tokens.RefreshToken
		})

		ginkgo.Context("when refresh token is valid", func() {
			ginkgo.It("should reload the principal's current role", func() {
				mockRepo.byID[1] = internal.Principal{UserID: 1, CompanyID: 1, Role: internal.RoleManager}

				newTokens, err := service.RefreshTokens(validRefreshToken)
				gomega.Expect(err).ToNot(gomega.HaveOccurred())

				claims, err := service.ValidateAccessToken(newTokens.AccessToken)
				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(claims.Role).To(gomega.Equal(string(internal.RoleManager)))
			})
		})

		ginkgo.Context("when refresh token is invalid", func() {
			ginkgo.It("should return error for malformed token", func() {
				tokens, err := service.RefreshTokens("invalid.token.format")

				gomega.Expect(err).To(gomega.HaveOccurred())
				gomega.Expect(tokens.AccessToken).To(gomega.BeEmpty())
			})

			ginkgo.It("should return error for expired token", func() {
				expiredTokenGen := NewJWTTokenGenerator(accessSecret, refreshSecret)
				expiredTokenGen.RefreshTokenTTL = -1 * time.Hour
				expiredToken, err := expiredTokenGen.GenerateRefreshToken(internal.Principal{UserID: 1, CompanyID: 1, Role: internal.RoleEmployee})
				gomega.Expect(err).ToNot(gomega.HaveOccurred())

				tokens, err := service.RefreshTokens(expiredToken)

				gomega.Expect(err).To(gomega.HaveOccurred())
				gomega.Expect(tokens.AccessToken).To(gomega.BeEmpty())
			})
		})

		ginkgo.Context("when the principal has gone inactive", func() {
			ginkgo.It("should return ErrUserInactive", func() {
				delete(mockRepo.byID, 1)

				tokens, err := service.RefreshTokens(validRefreshToken)

				gomega.Expect(err).To(gomega.Equal(ErrUserInactive))
				gomega.Expect(tokens.AccessToken).To(gomega.BeEmpty())
			})
		})
	})

	ginkgo.Describe("ValidateAccessToken", func() {
		var validAccessToken string

		ginkgo.BeforeEach(func() {
			tokens, err := service.Authenticate(LoginDTO{Email: "manager@example.com", Password: "correct_password"})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			validAccessToken = tokens.AccessToken
		})

		ginkgo.Context("when access token is valid", func() {
			ginkgo.It("should return claims carrying the principal", func() {
				claims, err := service.ValidateAccessToken(validAccessToken)

				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(claims).ToNot(gomega.BeNil())
				gomega.Expect(claims.UserID).To(gomega.Equal(int64(3)))
				gomega.Expect(claims.Principal()).To(gomega.Equal(internal.Principal{UserID: 3, CompanyID: 1, Role: internal.RoleManager}))
			})
		})

		ginkgo.Context("when access token is invalid", func() {
			ginkgo.It("should return error for malformed token", func() {
				claims, err := service.ValidateAccessToken("invalid.token")

				gomega.Expect(err).To(gomega.HaveOccurred())
				gomega.Expect(claims).To(gomega.BeNil())
			})

			ginkgo.It("should return error for empty token", func() {
				claims, err := service.ValidateAccessToken("")

				gomega.Expect(err).To(gomega.HaveOccurred())
				gomega.Expect(claims).To(gomega.BeNil())
			})
		})
	})

	ginkgo.Describe("HashPassword", func() {
		ginkgo.It("should return a bcrypt hash distinct from the plaintext", func() {
			hash, err := service.HashPassword("test_password_123")

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(hash).ToNot(gomega.BeEmpty())
			gomega.Expect(bcrypt.CompareHashAndPassword([]byte(hash), []byte("test_password_123"))).ToNot(gomega.HaveOccurred())
		})

		ginkgo.It("should generate different hashes for the same password", func() {
			hash1, err1 := service.HashPassword("same_password")
			hash2, err2 := service.HashPassword("same_password")

			gomega.Expect(err1).ToNot(gomega.HaveOccurred())
			gomega.Expect(err2).ToNot(gomega.HaveOccurred())
			gomega.Expect(hash1).ToNot(gomega.Equal(hash2))
		})
	})

	ginkgo.Describe("GenerateRandomToken", func() {
		ginkgo.It("should generate a 64-char hex token", func() {
			token, err := GenerateRandomToken()

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(len(token)).To(gomega.Equal(64))
		})

		ginkgo.It("should generate different tokens each time", func() {
			token1, err1 := GenerateRandomToken()
			token2, err2 := GenerateRandomToken()

			gomega.Expect(err1).ToNot(gomega.HaveOccurred())
			gomega.Expect(err2).ToNot(gomega.HaveOccurred())
			gomega.Expect(token1).ToNot(gomega.Equal(token2))
		})
	})
})

var _ = ginkgo.Describe("JWTTokenGenerator", func() {
	var (
		tokenGen      *JWTTokenGenerator
		accessSecret  = "test-access-secret-key"
		refreshSecret = "test-refresh-secret-key"
	)

	ginkgo.BeforeEach(func() {
		tokenGen = NewJWTTokenGenerator(accessSecret, refreshSecret)
	})

	ginkgo.Describe("GenerateAccessToken / ValidateToken", func() {
		ginkgo.It("should round-trip the principal through the token", func() {
			principal := internal.Principal{UserID: 123, CompanyID: 7, Role: internal.RoleEmployee}

			token, err := tokenGen.GenerateAccessToken(principal)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(token).ToNot(gomega.BeEmpty())

			claims, err := tokenGen.ValidateToken(token)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(claims.Principal()).To(gomega.Equal(principal))
		})
	})

	ginkgo.Describe("GenerateRefreshToken / ValidateToken", func() {
		ginkgo.It("should round-trip the principal through the token", func() {
			principal := internal.Principal{UserID: 456, CompanyID: 9, Role: internal.RoleManager}

			token, err := tokenGen.GenerateRefreshToken(principal)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			claims, err := tokenGen.ValidateToken(token)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(claims.Principal()).To(gomega.Equal(principal))
		})
	})

	ginkgo.Describe("ValidateToken", func() {
		ginkgo.Context("with an invalid token", func() {
			ginkgo.It("should return an error for a malformed token", func() {
				claims, err := tokenGen.ValidateToken("invalid.token.here")

				gomega.Expect(err).To(gomega.HaveOccurred())
				gomega.Expect(claims).To(gomega.BeNil())
			})

			ginkgo.It("should return an error for an empty token", func() {
				claims, err := tokenGen.ValidateToken("")

				gomega.Expect(err).To(gomega.HaveOccurred())
				gomega.Expect(claims).To(gomega.BeNil())
			})
		})

		ginkgo.Context("with an expired access token", func() {
			ginkgo.It("should return ErrTokenExpired", func() {
				expiredGen := NewJWTTokenGenerator(accessSecret, refreshSecret)
				expiredGen.AccessTokenTTL = -1 * time.Hour
				token, err := expiredGen.GenerateAccessToken(internal.Principal{UserID: 1, CompanyID: 1, Role: internal.RoleEmployee})
				gomega.Expect(err).ToNot(gomega.HaveOccurred())

				claims, err := tokenGen.ValidateToken(token)

				gomega.Expect(err).To(gomega.Equal(ErrTokenExpired))
				gomega.Expect(claims).To(gomega.BeNil())
			})
		})
	})
})

var _ = ginkgo.Describe("LoginDTO", func() {
	ginkgo.Describe("Validate", func() {
		ginkgo.It("should not return error when all fields are valid", func() {
			err := LoginDTO{Email: "user@example.com", Password: "secure_password"}.Validate()
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
		})

		ginkgo.It("should return validation error when email is empty", func() {
			err := LoginDTO{Email: "", Password: "password"}.Validate()
			gomega.Expect(err).To(gomega.MatchError("email is required"))
		})

		ginkgo.It("should return validation error when password is empty", func() {
			err := LoginDTO{Email: "user@example.com", Password: ""}.Validate()
			gomega.Expect(err).To(gomega.MatchError("password is required"))
		})
	})
})

var _ = ginkgo.Describe("RefreshTokenDTO", func() {
	ginkgo.Describe("Validate", func() {
		ginkgo.It("should not return error when refresh token is provided", func() {
			err := RefreshTokenDTO{RefreshToken: "valid.jwt.token"}.Validate()
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
		})

		ginkgo.It("should return validation error when refresh token is empty", func() {
			err := RefreshTokenDTO{RefreshToken: ""}.Validate()
			gomega.Expect(err).To(gomega.MatchError("refresh_token is required"))
		})
	})
})
