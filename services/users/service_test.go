package users

import (
	"context"
	"errors"
	"testing"
	"time"

	"cinetrack/internal/database"
	"cinetrack/models"
)

type fakeUserStore struct {
	users  map[int64]models.User
	nextID int64
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[int64]models.User), nextID: 1}
}

func (f *fakeUserStore) Create(ctx context.Context, username, email, fullName, hashedPassword string) (models.User, error) {
	for _, u := range f.users {
		if u.Email == email || u.Username == username {
			return models.User{}, database.ErrConflict
		}
	}
	user := models.User{
		ID:             f.nextID,
		Username:       username,
		Email:          email,
		FullName:       fullName,
		IsActive:       true,
		HashedPassword: hashedPassword,
	}
	f.users[user.ID] = user
	f.nextID++
	return user, nil
}

func (f *fakeUserStore) GetByID(ctx context.Context, id int64) (models.User, error) {
	user, ok := f.users[id]
	if !ok {
		return models.User{}, database.ErrNotFound
	}
	return user, nil
}

func (f *fakeUserStore) GetByEmail(ctx context.Context, email string) (models.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return models.User{}, database.ErrNotFound
}

const testSecret = "test-secret-key"

func register(t *testing.T, svc *Service) models.User {
	t.Helper()
	user, err := svc.Register(context.Background(), models.Credentials{
		Username: "alice",
		Email:    "Alice@Example.COM",
		Password: "correct horse",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	return user
}

func TestRegisterLoginAuthenticate(t *testing.T) {
	svc := NewService(newFakeUserStore(), testSecret, time.Hour)
	user := register(t, svc)

	if user.Email != "alice@example.com" {
		t.Errorf("email not lowercased: %q", user.Email)
	}
	if user.HashedPassword == "correct horse" {
		t.Error("password stored in the clear")
	}

	token, err := svc.Login(context.Background(), models.Credentials{Email: "alice@example.com", Password: "correct horse"})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if token.TokenType != "bearer" || token.AccessToken == "" {
		t.Fatalf("bad token: %+v", token)
	}

	authed, err := svc.Authenticate(context.Background(), token.AccessToken)
	if err != nil {
		t.Fatalf("authenticate failed: %v", err)
	}
	if authed.ID != user.ID {
		t.Errorf("authenticated as user %d, want %d", authed.ID, user.ID)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc := NewService(newFakeUserStore(), testSecret, time.Hour)

	cases := []struct {
		name    string
		creds   models.Credentials
		wantErr error
	}{
		{"missing email", models.Credentials{Username: "a", Password: "long enough"}, ErrEmailRequired},
		{"missing username", models.Credentials{Email: "a@b.c", Password: "long enough"}, ErrUsernameRequired},
		{"short password", models.Credentials{Username: "a", Email: "a@b.c", Password: "short"}, ErrPasswordTooShort},
	}
	for _, tc := range cases {
		if _, err := svc.Register(context.Background(), tc.creds); !errors.Is(err, tc.wantErr) {
			t.Errorf("%s: got %v, want %v", tc.name, err, tc.wantErr)
		}
	}
}

func TestRegisterDuplicate(t *testing.T) {
	svc := NewService(newFakeUserStore(), testSecret, time.Hour)
	register(t, svc)

	_, err := svc.Register(context.Background(), models.Credentials{
		Username: "alice2",
		Email:    "alice@example.com",
		Password: "another pass",
	})
	if !errors.Is(err, ErrUserExists) {
		t.Fatalf("got %v, want ErrUserExists", err)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	svc := NewService(newFakeUserStore(), testSecret, time.Hour)
	register(t, svc)

	if _, err := svc.Login(context.Background(), models.Credentials{Email: "alice@example.com", Password: "wrong"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password: got %v", err)
	}
	if _, err := svc.Login(context.Background(), models.Credentials{Email: "nobody@example.com", Password: "wrong"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown email: got %v", err)
	}
}

func TestLoginInactiveUser(t *testing.T) {
	store := newFakeUserStore()
	svc := NewService(store, testSecret, time.Hour)
	user := register(t, svc)

	u := store.users[user.ID]
	u.IsActive = false
	store.users[user.ID] = u

	if _, err := svc.Login(context.Background(), models.Credentials{Email: "alice@example.com", Password: "correct horse"}); !errors.Is(err, ErrUserInactive) {
		t.Errorf("got %v, want ErrUserInactive", err)
	}
}

func TestAuthenticateRejectsGarbage(t *testing.T) {
	svc := NewService(newFakeUserStore(), testSecret, time.Hour)

	for _, token := range []string{"", "not-a-jwt", "aaa.bbb.ccc"} {
		if _, err := svc.Authenticate(context.Background(), token); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("token %q: got %v", token, err)
		}
	}
}

func TestAuthenticateRejectsExpiredToken(t *testing.T) {
	store := newFakeUserStore()
	svc := NewService(store, testSecret, time.Hour)
	svc.tokenTTL = -time.Minute
	register(t, svc)

	token, err := svc.Login(context.Background(), models.Credentials{Email: "alice@example.com", Password: "correct horse"})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if _, err := svc.Authenticate(context.Background(), token.AccessToken); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expired token: got %v", err)
	}
}

func TestAuthenticateRejectsForeignSecret(t *testing.T) {
	store := newFakeUserStore()
	issuer := NewService(store, "other-secret", time.Hour)
	verifier := NewService(store, testSecret, time.Hour)
	register(t, issuer)

	token, err := issuer.Login(context.Background(), models.Credentials{Email: "alice@example.com", Password: "correct horse"})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if _, err := verifier.Authenticate(context.Background(), token.AccessToken); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("foreign signature: got %v", err)
	}
}
