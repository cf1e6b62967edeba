package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/yaojiejia/portfolioAnalysis/internal/apperrors"
	"github.com/yaojiejia/portfolioAnalysis/internal/repository"
	"github.com/yaojiejia/portfolioAnalysis/internal/service"
	"github.com/yaojiejia/portfolioAnalysis/internal/testutil"
)

// TestAuthService_Signup tests account registration.
func TestAuthService_Signup(t *testing.T) {
	ctx := context.Background()

	t.Run("stores a hashed password", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestAuthService(t, db)

		user, err := svc.Signup(ctx, "jane", "jane@example.com", "s3cret-pass")
		if err != nil {
			t.Fatalf("Signup() returned unexpected error: %v", err)
		}

		stored, err := repository.NewUserRepository(db).GetUserByID(ctx, user.ID)
		if err != nil {
			t.Fatalf("GetUserByID() returned unexpected error: %v", err)
		}
		if stored.PasswordHash == "" || stored.PasswordHash == "s3cret-pass" {
			t.Errorf("Expected a bcrypt hash, got %q", stored.PasswordHash)
		}
	})

	t.Run("rejects a taken username or email", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestAuthService(t, db)
		existing := testutil.NewUser().Build(t, db)

		_, err := svc.Signup(ctx, existing.Username, "new@example.com", "s3cret-pass")
		if !errors.Is(err, apperrors.ErrUserExists) {
			t.Errorf("Expected ErrUserExists for username, got %v", err)
		}

		_, err = svc.Signup(ctx, "new_user", existing.Email, "s3cret-pass")
		if !errors.Is(err, apperrors.ErrUserExists) {
			t.Errorf("Expected ErrUserExists for email, got %v", err)
		}
	})
}

// TestAuthService_Login tests credential checks and token issuance.
//
// WHY: Both failure modes must look the same to the client so that login
// cannot reveal which emails are registered.
func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	svc := testutil.NewTestAuthService(t, db)
	user := testutil.NewUser().Build(t, db)

	t.Run("issues a verifiable access token", func(t *testing.T) {
		result, err := svc.Login(ctx, user.Email, testutil.DefaultPassword)
		if err != nil {
			t.Fatalf("Login() returned unexpected error: %v", err)
		}

		claims, err := svc.ParseAccessToken(result.AccessToken)
		if err != nil {
			t.Fatalf("ParseAccessToken() returned unexpected error: %v", err)
		}
		if claims.UserID != user.ID {
			t.Errorf("Expected user_id %s, got %s", user.ID, claims.UserID)
		}
		if claims.Type != service.TokenTypeAccess {
			t.Errorf("Expected type access, got %s", claims.Type)
		}
		if result.RefreshToken == "" {
			t.Error("Expected a refresh token")
		}
	})

	t.Run("wrong password and unknown email fail alike", func(t *testing.T) {
		_, err := svc.Login(ctx, user.Email, "not-the-password")
		if !errors.Is(err, apperrors.ErrInvalidCredentials) {
			t.Errorf("Expected ErrInvalidCredentials, got %v", err)
		}

		_, err = svc.Login(ctx, "ghost@example.com", testutil.DefaultPassword)
		if !errors.Is(err, apperrors.ErrInvalidCredentials) {
			t.Errorf("Expected ErrInvalidCredentials, got %v", err)
		}
	})
}

// TestAuthService_Refresh tests exchanging refresh tokens.
func TestAuthService_Refresh(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	svc := testutil.NewTestAuthService(t, db)
	user := testutil.NewUser().Build(t, db)

	result, err := svc.Login(ctx, user.Email, testutil.DefaultPassword)
	if err != nil {
		t.Fatalf("Login() returned unexpected error: %v", err)
	}

	t.Run("returns a new access token", func(t *testing.T) {
		token, err := svc.Refresh(ctx, result.RefreshToken)
		if err != nil {
			t.Fatalf("Refresh() returned unexpected error: %v", err)
		}

		claims, err := svc.ParseAccessToken(token)
		if err != nil {
			t.Fatalf("ParseAccessToken() returned unexpected error: %v", err)
		}
		if claims.UserID != user.ID {
			t.Errorf("Expected user_id %s, got %s", user.ID, claims.UserID)
		}
	})

	t.Run("refresh token is not an access token", func(t *testing.T) {
		_, err := svc.ParseAccessToken(result.RefreshToken)
		if !errors.Is(err, apperrors.ErrInvalidToken) {
			t.Errorf("Expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("access token is not a refresh token", func(t *testing.T) {
		_, err := svc.Refresh(ctx, result.AccessToken)
		if !errors.Is(err, apperrors.ErrInvalidToken) {
			t.Errorf("Expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("missing token", func(t *testing.T) {
		_, err := svc.Refresh(ctx, "")
		if !errors.Is(err, apperrors.ErrMissingToken) {
			t.Errorf("Expected ErrMissingToken, got %v", err)
		}
	})
}

// TestAuthService_ParseAccessToken tests signature checks.
func TestAuthService_ParseAccessToken(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	user := testutil.NewUser().Build(t, db)

	issuer := testutil.NewTestAuthService(t, db)
	result, err := issuer.Login(ctx, user.Email, testutil.DefaultPassword)
	if err != nil {
		t.Fatalf("Login() returned unexpected error: %v", err)
	}

	settings := testutil.TestAuthSettings
	settings.JWTSecret = "another-secret"
	other, err := service.NewAuthService(repository.NewUserRepository(db), settings)
	if err != nil {
		t.Fatalf("NewAuthService() returned unexpected error: %v", err)
	}

	if _, err := other.ParseAccessToken(result.AccessToken); !errors.Is(err, apperrors.ErrInvalidToken) {
		t.Errorf("Expected ErrInvalidToken for a foreign signature, got %v", err)
	}
	if _, err := other.ParseAccessToken(""); !errors.Is(err, apperrors.ErrMissingToken) {
		t.Errorf("Expected ErrMissingToken, got %v", err)
	}
}
