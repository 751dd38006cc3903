package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	googleauth "communique-chatbot/internal/auth/google"
	"communique-chatbot/internal/model"
	"communique-chatbot/internal/pkg/jwtutil"
)

// UserStore is the persistence surface AuthService needs.
type UserStore interface {
	Create(user *model.User) error
	GetByEmail(email string) (*model.User, error)
	GetByGoogleID(googleID string) (*model.User, error)
	GetByID(id uint) (*model.User, error)
}

// IDTokenVerifier validates a Google ID token with the identity provider.
type IDTokenVerifier interface {
	Verify(ctx context.Context, idToken string) (*googleauth.Claims, error)
}

type AuthService struct {
	userRepo      UserStore
	verifier      IDTokenVerifier
	jwtSecret     string
	jwtExpiration time.Duration
}

type SignupInput struct {
	Email    string
	Password string
	Name     string
}

type LoginInput struct {
	Email    string
	Password string
}

type AuthResult struct {
	Token string
	User  *model.User
}

func NewAuthService(userRepo UserStore, verifier IDTokenVerifier, jwtSecret string, jwtExpiration time.Duration) *AuthService {
	return &AuthService{
		userRepo:      userRepo,
		verifier:      verifier,
		jwtSecret:     jwtSecret,
		jwtExpiration: jwtExpiration,
	}
}

func (s *AuthService) Signup(input SignupInput) (*AuthResult, error) {
	email := strings.TrimSpace(strings.ToLower(input.Email))
	password := strings.TrimSpace(input.Password)

	if email == "" || password == "" || len(password) < 8 {
		return nil, ErrInvalidInput
	}

	existing, err := s.userRepo.GetByEmail(email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password failed: %w", err)
	}

	user := &model.User{
		Email:        email,
		PasswordHash: string(hash),
		Name:         strings.TrimSpace(input.Name),
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}

	return s.issueToken(user)
}

func (s *AuthService) Login(input LoginInput) (*AuthResult, error) {
	email := strings.TrimSpace(strings.ToLower(input.Email))
	password := strings.TrimSpace(input.Password)
	if email == "" || password == "" {
		return nil, ErrInvalidInput
	}

	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		return nil, err
	}
	if user == nil || user.PasswordHash == "" {
		return nil, ErrInvalidCredential
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredential
	}

	return s.issueToken(user)
}

// LoginWithGoogle delegates identity verification to Google and creates the
// local user row on first sign-in.
func (s *AuthService) LoginWithGoogle(ctx context.Context, idToken string) (*AuthResult, error) {
	if strings.TrimSpace(idToken) == "" {
		return nil, ErrInvalidInput
	}

	claims, err := s.verifier.Verify(ctx, idToken)
	if err != nil {
		if errors.Is(err, googleauth.ErrInvalidIDToken) {
			return nil, ErrInvalidIDToken
		}
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	user, err := s.userRepo.GetByGoogleID(claims.Subject)
	if err != nil {
		return nil, err
	}
	if user == nil {
		user = &model.User{
			Email:    strings.ToLower(claims.Email),
			GoogleID: claims.Subject,
			Name:     claims.Name,
		}
		if err := s.userRepo.Create(user); err != nil {
			return nil, err
		}
	}

	return s.issueToken(user)
}

func (s *AuthService) GetUserByID(id uint) (*model.User, error) {
	if id == 0 {
		return nil, ErrInvalidInput
	}
	return s.userRepo.GetByID(id)
}

func (s *AuthService) issueToken(user *model.User) (*AuthResult, error) {
	token, err := jwtutil.GenerateToken(s.jwtSecret, s.jwtExpiration, user.ID, user.Email)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: user}, nil
}
