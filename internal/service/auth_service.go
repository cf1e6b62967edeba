package service

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fernet/fernet-go"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/yaojiejia/portfolioAnalysis/internal/apperrors"
	"github.com/yaojiejia/portfolioAnalysis/internal/model"
	"github.com/yaojiejia/portfolioAnalysis/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

// Token types carried in the "type" claim.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// AccessClaims are the claims of an access token.
type AccessClaims struct {
	UserID string `json:"user_id"`
	Type   string `json:"type"`
	jwt.RegisteredClaims
}

type refreshPayload struct {
	UserID string `json:"user_id"`
	Type   string `json:"type"`
}

// AuthSettings holds the signing keys and token lifetimes used by AuthService.
// An empty FernetKey derives the refresh token key from JWTSecret.
type AuthSettings struct {
	JWTSecret               string
	FernetKey               string
	AccessTokenTTL          time.Duration
	RefreshedAccessTokenTTL time.Duration
	RefreshTokenTTL         time.Duration
}

// AuthService handles account registration, login and token issuance.
// Access tokens are HS256 JWTs; refresh tokens are Fernet tokens so that
// their payload is opaque to the client.
type AuthService struct {
	userRepo  *repository.UserRepository
	settings  AuthSettings
	jwtKey    []byte
	fernetKey *fernet.Key
	now       func() time.Time
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo *repository.UserRepository, settings AuthSettings) (*AuthService, error) {
	if settings.JWTSecret == "" {
		return nil, errors.New("jwt secret is required")
	}

	var key *fernet.Key
	if settings.FernetKey != "" {
		k, err := fernet.DecodeKey(settings.FernetKey)
		if err != nil {
			return nil, fmt.Errorf("invalid fernet key: %w", err)
		}
		key = k
	} else {
		k := fernet.Key(sha256.Sum256([]byte("refresh:" + settings.JWTSecret)))
		key = &k
	}

	return &AuthService{
		userRepo:  userRepo,
		settings:  settings,
		jwtKey:    []byte(settings.JWTSecret),
		fernetKey: key,
		now:       time.Now,
	}, nil
}

// Signup registers a new user. Input is expected to be validated already.
// Returns apperrors.ErrUserExists when the username or email is taken.
func (s *AuthService) Signup(ctx context.Context, username, email, password string) (model.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)

	exists, err := s.userRepo.ExistsByUsernameOrEmail(ctx, username, email)
	if err != nil {
		return model.User{}, fmt.Errorf("%w: %w", apperrors.ErrFailedToRegister, err)
	}
	if exists {
		return model.User{}, apperrors.ErrUserExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return model.User{}, fmt.Errorf("%w: %w", apperrors.ErrFailedToRegister, err)
	}

	user := model.User{
		ID:           uuid.New().String(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    s.now().UTC(),
	}

	if err := s.userRepo.InsertUser(ctx, &user); err != nil {
		// Lost a race with a concurrent signup.
		if errors.Is(err, apperrors.ErrDuplicateEntry) {
			return model.User{}, apperrors.ErrUserExists
		}
		return model.User{}, fmt.Errorf("%w: %w", apperrors.ErrFailedToRegister, err)
	}

	return user, nil
}

// Login checks credentials and issues an access token and a refresh token.
// Unknown emails and wrong passwords both return apperrors.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (model.LoginResult, error) {
	user, err := s.userRepo.GetUserByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return model.LoginResult{}, apperrors.ErrInvalidCredentials
		}
		return model.LoginResult{}, fmt.Errorf("%w: %w", apperrors.ErrFailedToRetrieveUser, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return model.LoginResult{}, apperrors.ErrInvalidCredentials
	}

	access, err := s.issueAccessToken(user.ID, s.settings.AccessTokenTTL)
	if err != nil {
		return model.LoginResult{}, err
	}
	refresh, err := s.issueRefreshToken(user.ID)
	if err != nil {
		return model.LoginResult{}, err
	}

	return model.LoginResult{
		AccessToken:  access,
		User:         user,
		RefreshToken: refresh,
	}, nil
}

// Refresh exchanges a valid refresh token for a new short-lived access token.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	if refreshToken == "" {
		return "", apperrors.ErrMissingToken
	}

	msg := fernet.VerifyAndDecrypt([]byte(refreshToken), s.settings.RefreshTokenTTL, []*fernet.Key{s.fernetKey})
	if msg == nil {
		return "", apperrors.ErrInvalidToken
	}

	var payload refreshPayload
	if err := json.Unmarshal(msg, &payload); err != nil || payload.Type != TokenTypeRefresh || payload.UserID == "" {
		return "", apperrors.ErrInvalidToken
	}

	if _, err := s.userRepo.GetUserByID(ctx, payload.UserID); err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return "", apperrors.ErrInvalidToken
		}
		return "", fmt.Errorf("%w: %w", apperrors.ErrFailedToRetrieveUser, err)
	}

	return s.issueAccessToken(payload.UserID, s.settings.RefreshedAccessTokenTTL)
}

// GetUser returns the profile of a user.
func (s *AuthService) GetUser(ctx context.Context, userID string) (model.User, error) {
	return s.userRepo.GetUserByID(ctx, userID)
}

// ParseAccessToken verifies signature, expiry and token type.
func (s *AuthService) ParseAccessToken(token string) (*AccessClaims, error) {
	if token == "" {
		return nil, apperrors.ErrMissingToken
	}

	claims := &AccessClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return s.jwtKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrInvalidToken, err)
	}
	if claims.Type != TokenTypeAccess || claims.UserID == "" {
		return nil, apperrors.ErrInvalidToken
	}
	return claims, nil
}

func (s *AuthService) issueAccessToken(userID string, ttl time.Duration) (string, error) {
	now := s.now()
	claims := AccessClaims{
		UserID: userID,
		Type:   TokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtKey)
	if err != nil {
		return "", fmt.Errorf("%w: %w", apperrors.ErrFailedToIssueToken, err)
	}
	return signed, nil
}

func (s *AuthService) issueRefreshToken(userID string) (string, error) {
	payload, err := json.Marshal(refreshPayload{UserID: userID, Type: TokenTypeRefresh})
	if err != nil {
		return "", fmt.Errorf("%w: %w", apperrors.ErrFailedToIssueToken, err)
	}
	tok, err := fernet.EncryptAndSign(payload, s.fernetKey)
	if err != nil {
		return "", fmt.Errorf("%w: %w", apperrors.ErrFailedToIssueToken, err)
	}
	return string(tok), nil
}
