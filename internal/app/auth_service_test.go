package app

import (
	"context"
	"errors"
	"testing"
	"time"

	googleauth "communique-chatbot/internal/auth/google"
	"communique-chatbot/internal/pkg/jwtutil"
)

func newTestAuthService(store *fakeUserStore, verifier *fakeVerifier) *AuthService {
	return NewAuthService(store, verifier, "test-secret", time.Hour)
}

func TestSignupCreatesUserAndToken(t *testing.T) {
	store := &fakeUserStore{}
	svc := newTestAuthService(store, &fakeVerifier{})

	result, err := svc.Signup(SignupInput{
		Email:    "User@Example.com",
		Password: "strongpass",
		Name:     "Test User",
	})
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if result.User.Email != "user@example.com" {
		t.Fatalf("email should be lowercased, got %q", result.User.Email)
	}
	if result.User.PasswordHash == "" || result.User.PasswordHash == "strongpass" {
		t.Fatalf("password must be stored hashed")
	}

	claims, err := jwtutil.ParseToken("test-secret", result.Token)
	if err != nil {
		t.Fatalf("issued token does not parse: %v", err)
	}
	if claims.UserID != result.User.ID {
		t.Fatalf("token user id %d, want %d", claims.UserID, result.User.ID)
	}
}

func TestSignupRejectsShortPassword(t *testing.T) {
	svc := newTestAuthService(&fakeUserStore{}, &fakeVerifier{})
	if _, err := svc.Signup(SignupInput{Email: "a@b.c", Password: "short"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestSignupDuplicateEmail(t *testing.T) {
	store := &fakeUserStore{}
	svc := newTestAuthService(store, &fakeVerifier{})

	if _, err := svc.Signup(SignupInput{Email: "a@b.c", Password: "strongpass"}); err != nil {
		t.Fatalf("first signup: %v", err)
	}
	if _, err := svc.Signup(SignupInput{Email: "A@B.C", Password: "otherpass1"}); !errors.Is(err, ErrEmailExists) {
		t.Fatalf("expected ErrEmailExists, got %v", err)
	}
}

func TestLoginSuccess(t *testing.T) {
	store := &fakeUserStore{}
	svc := newTestAuthService(store, &fakeVerifier{})

	if _, err := svc.Signup(SignupInput{Email: "a@b.c", Password: "strongpass"}); err != nil {
		t.Fatalf("signup: %v", err)
	}
	result, err := svc.Login(LoginInput{Email: "a@b.c", Password: "strongpass"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if result.Token == "" {
		t.Fatalf("expected a token")
	}
}

func TestLoginWrongPassword(t *testing.T) {
	store := &fakeUserStore{}
	svc := newTestAuthService(store, &fakeVerifier{})

	if _, err := svc.Signup(SignupInput{Email: "a@b.c", Password: "strongpass"}); err != nil {
		t.Fatalf("signup: %v", err)
	}
	if _, err := svc.Login(LoginInput{Email: "a@b.c", Password: "wrongpass"}); !errors.Is(err, ErrInvalidCredential) {
		t.Fatalf("expected ErrInvalidCredential, got %v", err)
	}
}

func TestLoginUnknownUser(t *testing.T) {
	svc := newTestAuthService(&fakeUserStore{}, &fakeVerifier{})
	if _, err := svc.Login(LoginInput{Email: "nobody@b.c", Password: "whatever1"}); !errors.Is(err, ErrInvalidCredential) {
		t.Fatalf("expected ErrInvalidCredential, got %v", err)
	}
}

func TestLoginGoogleOnlyAccountHasNoPassword(t *testing.T) {
	store := &fakeUserStore{}
	verifier := &fakeVerifier{claims: &googleauth.Claims{Subject: "g-1", Email: "g@b.c"}}
	svc := newTestAuthService(store, verifier)

	if _, err := svc.LoginWithGoogle(context.Background(), "id-token"); err != nil {
		t.Fatalf("google login: %v", err)
	}
	if _, err := svc.Login(LoginInput{Email: "g@b.c", Password: "anything1"}); !errors.Is(err, ErrInvalidCredential) {
		t.Fatalf("password login on google account should fail, got %v", err)
	}
}

func TestLoginWithGoogleFirstSignInCreatesUser(t *testing.T) {
	store := &fakeUserStore{}
	verifier := &fakeVerifier{claims: &googleauth.Claims{Subject: "g-42", Email: "G@Example.com", Name: "G User"}}
	svc := newTestAuthService(store, verifier)

	result, err := svc.LoginWithGoogle(context.Background(), "id-token")
	if err != nil {
		t.Fatalf("google login: %v", err)
	}
	if result.User.GoogleID != "g-42" {
		t.Fatalf("unexpected google id: %q", result.User.GoogleID)
	}
	if result.User.Email != "g@example.com" {
		t.Fatalf("email should be lowercased, got %q", result.User.Email)
	}
	if len(store.users) != 1 {
		t.Fatalf("expected 1 user created, got %d", len(store.users))
	}

	// Second sign-in reuses the row.
	again, err := svc.LoginWithGoogle(context.Background(), "id-token")
	if err != nil {
		t.Fatalf("second google login: %v", err)
	}
	if again.User.ID != result.User.ID {
		t.Fatalf("second sign-in created a new user")
	}
	if len(store.users) != 1 {
		t.Fatalf("expected still 1 user, got %d", len(store.users))
	}
}

func TestLoginWithGoogleInvalidToken(t *testing.T) {
	verifier := &fakeVerifier{err: googleauth.ErrInvalidIDToken}
	svc := newTestAuthService(&fakeUserStore{}, verifier)

	if _, err := svc.LoginWithGoogle(context.Background(), "bad"); !errors.Is(err, ErrInvalidIDToken) {
		t.Fatalf("expected ErrInvalidIDToken, got %v", err)
	}
}

func TestLoginWithGoogleUpstreamFailure(t *testing.T) {
	verifier := &fakeVerifier{err: errBoom}
	svc := newTestAuthService(&fakeUserStore{}, verifier)

	if _, err := svc.LoginWithGoogle(context.Background(), "token"); !errors.Is(err, ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
}
