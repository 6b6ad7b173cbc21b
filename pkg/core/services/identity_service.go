package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/linksnip/linksnip/pkg/core/domain"
	"github.com/linksnip/linksnip/pkg/ports"
)

const tokenTTL = 24 * time.Hour

type tokenClaims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

type IdentityService struct {
	accounts  ports.AccountRepository
	jwtSecret []byte
}

func NewIdentityService(accounts ports.AccountRepository, jwtSecret []byte) *IdentityService {
	return &IdentityService{accounts: accounts, jwtSecret: jwtSecret}
}

// Register creates a new account. No token is issued; the client logs in
// separately.
func (s *IdentityService) Register(ctx context.Context, name, email, password string) error {
	if name == "" || email == "" || password == "" {
		return fmt.Errorf("all fields are required: %w", domain.ErrValidation)
	}

	existing, err := s.accounts.AccountByEmail(ctx, email)
	if err != nil {
		return err
	}
	if existing != nil {
		return fmt.Errorf("user already exists: %w", domain.ErrConflict)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	acct := &domain.Account{
		Name:      name,
		Email:     email,
		Password:  string(hash),
		CreatedAt: time.Now(),
	}

	// The unique email index catches the race between the lookup above and
	// this insert.
	return s.accounts.CreateAccount(ctx, acct)
}

// Authenticate verifies credentials and issues a signed token. Unknown
// email and wrong password fail identically to avoid account enumeration.
func (s *IdentityService) Authenticate(ctx context.Context, email, password string) (string, error) {
	acct, err := s.accounts.AccountByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	if acct == nil {
		return "", fmt.Errorf("invalid credentials: %w", domain.ErrAuth)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(acct.Password), []byte(password)); err != nil {
		return "", fmt.Errorf("invalid credentials: %w", domain.ErrAuth)
	}

	return s.issueToken(acct.ID)
}

// AuthenticateExternal completes a Google sign-in: the caller has already
// verified the email with the provider. The account is created on first
// sign-in with an empty password hash, so it can never password-login.
func (s *IdentityService) AuthenticateExternal(ctx context.Context, name, email string) (string, error) {
	if email == "" {
		return "", fmt.Errorf("missing email: %w", domain.ErrAuth)
	}

	acct, err := s.accounts.AccountByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	if acct == nil {
		acct = &domain.Account{
			Name:      name,
			Email:     email,
			CreatedAt: time.Now(),
		}
		if err := s.accounts.CreateAccount(ctx, acct); err != nil {
			return "", err
		}
	}

	return s.issueToken(acct.ID)
}

// VerifyToken checks a bearer token and yields the embedded account
// identifier. A leading "Bearer " prefix is tolerated.
func (s *IdentityService) VerifyToken(token string) (string, error) {
	token = strings.TrimPrefix(token, "Bearer ")
	if token == "" {
		return "", fmt.Errorf("token missing: %w", domain.ErrAuth)
	}

	claims := &tokenClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	})
	if err != nil || !parsed.Valid || claims.UserID == "" {
		return "", fmt.Errorf("invalid token: %w", domain.ErrAuth)
	}

	return claims.UserID, nil
}

// VerifyTokenOptional never fails; a missing or invalid token simply yields
// no identity, letting anonymous flows proceed.
func (s *IdentityService) VerifyTokenOptional(token string) *string {
	id, err := s.VerifyToken(token)
	if err != nil {
		return nil
	}
	return &id
}

func (s *IdentityService) issueToken(accountID string) (string, error) {
	now := time.Now()
	claims := &tokenClaims{
		UserID: accountID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}
