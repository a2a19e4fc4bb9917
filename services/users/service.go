package users

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"cinetrack/internal/database"
	"cinetrack/models"
)

var (
	ErrEmailRequired      = errors.New("email is required")
	ErrUsernameRequired   = errors.New("username is required")
	ErrPasswordTooShort   = errors.New("password must be at least 8 characters")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrUserInactive       = errors.New("user account is inactive")
)

// UserStore is the persistence surface the service needs.
type UserStore interface {
	Create(ctx context.Context, username, email, fullName, hashedPassword string) (models.User, error)
	GetByID(ctx context.Context, id int64) (models.User, error)
	GetByEmail(ctx context.Context, email string) (models.User, error)
}

// Service handles registration, login and token verification. Tokens are
// HS256 JWTs carrying the user ID as subject.
type Service struct {
	store    UserStore
	secret   []byte
	tokenTTL time.Duration
}

func NewService(store UserStore, secret string, tokenTTL time.Duration) *Service {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &Service{
		store:    store,
		secret:   []byte(secret),
		tokenTTL: tokenTTL,
	}
}

// Register creates a new account with a bcrypt-hashed password.
func (s *Service) Register(ctx context.Context, creds models.Credentials) (models.User, error) {
	email := strings.ToLower(strings.TrimSpace(creds.Email))
	username := strings.TrimSpace(creds.Username)
	if email == "" {
		return models.User{}, ErrEmailRequired
	}
	if username == "" {
		return models.User{}, ErrUsernameRequired
	}
	if len(creds.Password) < 8 {
		return models.User{}, ErrPasswordTooShort
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(creds.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.store.Create(ctx, username, email, strings.TrimSpace(creds.FullName), string(hash))
	if errors.Is(err, database.ErrConflict) {
		return models.User{}, ErrUserExists
	}
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}

// Login checks credentials and issues a bearer token. A missing user and a
// wrong password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, creds models.Credentials) (models.Token, error) {
	email := strings.ToLower(strings.TrimSpace(creds.Email))
	user, err := s.store.GetByEmail(ctx, email)
	if errors.Is(err, database.ErrNotFound) {
		return models.Token{}, ErrInvalidCredentials
	}
	if err != nil {
		return models.Token{}, err
	}
	if !user.IsActive {
		return models.Token{}, ErrUserInactive
	}
	if bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(creds.Password)) != nil {
		return models.Token{}, ErrInvalidCredentials
	}

	now := time.Now().UTC()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(user.ID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return models.Token{}, fmt.Errorf("sign token: %w", err)
	}
	return models.Token{AccessToken: signed, TokenType: "bearer"}, nil
}

// Authenticate verifies a bearer token and loads the account it names.
func (s *Service) Authenticate(ctx context.Context, token string) (models.User, error) {
	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return models.User{}, ErrInvalidToken
	}
	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok {
		return models.User{}, ErrInvalidToken
	}
	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return models.User{}, ErrInvalidToken
	}

	user, err := s.store.GetByID(ctx, userID)
	if errors.Is(err, database.ErrNotFound) {
		return models.User{}, ErrInvalidToken
	}
	if err != nil {
		return models.User{}, err
	}
	if !user.IsActive {
		return models.User{}, ErrUserInactive
	}
	return user, nil
}
