package auth

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"webstore/entity"
)

type memoryRepo struct {
	users map[string]*entity.User
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{users: make(map[string]*entity.User)}
}

func (r *memoryRepo) CreateUser(_ context.Context, user *entity.User) error {
	user.ID = primitive.NewObjectID()
	r.users[user.Email] = user
	return nil
}

func (r *memoryRepo) GetUserByEmail(_ context.Context, email string) (*entity.User, error) {
	if u, ok := r.users[email]; ok {
		return u, nil
	}
	return nil, errNotFound
}

func (r *memoryRepo) GetUserByID(_ context.Context, id primitive.ObjectID) (*entity.User, error) {
	for _, u := range r.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, errNotFound
}

func (r *memoryRepo) UpdateUser(_ context.Context, user *entity.User) error {
	r.users[user.Email] = user
	return nil
}

var errNotFound = errors.New("user not found")

func newTestService(repo Repository) *Service {
	s := NewAuthService("test-secret", 1, slog.New(slog.NewTextHandler(io.Discard, nil)))
	s.SetRepository(repo)
	return s
}

func TestRegisterLoginAuthenticateRoundTrip(t *testing.T) {
	s := newTestService(newMemoryRepo())
	ctx := context.Background()

	registered, err := s.Register(ctx, "Alice", "alice@example.com", "hunter22")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if registered.Password == "hunter22" {
		t.Error("password must be stored hashed")
	}

	user, token, err := s.Login(ctx, "alice@example.com", "hunter22")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if token == "" {
		t.Fatal("login must issue a token")
	}
	if user.ID != registered.ID {
		t.Error("login returned a different user")
	}

	authenticated, err := s.AuthenticateByToken(token)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if authenticated.ID != registered.ID {
		t.Error("token resolved to a different user")
	}
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	s := newTestService(newMemoryRepo())
	ctx := context.Background()

	if _, err := s.Register(ctx, "Alice", "alice@example.com", "hunter22"); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if _, err := s.Register(ctx, "Impostor", "alice@example.com", "hunter23"); err != ErrEmailTaken {
		t.Errorf("err = %v, want ErrEmailTaken", err)
	}
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	s := newTestService(newMemoryRepo())

	if _, err := s.Register(context.Background(), "Bob", "bob@example.com", "12345"); err == nil {
		t.Error("short password must be rejected")
	}
}

func TestLoginWrongPassword(t *testing.T) {
	s := newTestService(newMemoryRepo())
	ctx := context.Background()

	if _, err := s.Register(ctx, "Alice", "alice@example.com", "hunter22"); err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, _, err := s.Login(ctx, "alice@example.com", "wrong"); err != ErrInvalidCredentials {
		t.Errorf("wrong password: err = %v, want ErrInvalidCredentials", err)
	}
	if _, _, err := s.Login(ctx, "nobody@example.com", "hunter22"); err != ErrInvalidCredentials {
		t.Errorf("unknown email: err = %v, want ErrInvalidCredentials", err)
	}
}

func TestAuthenticateByTokenRejectsGarbage(t *testing.T) {
	s := newTestService(newMemoryRepo())

	if _, err := s.AuthenticateByToken("not-a-token"); err != ErrInvalidToken {
		t.Errorf("err = %v, want ErrInvalidToken", err)
	}
}

func TestUpdatePasswordRotatesHash(t *testing.T) {
	repo := newMemoryRepo()
	s := newTestService(repo)
	ctx := context.Background()

	user, err := s.Register(ctx, "Alice", "alice@example.com", "hunter22")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if err := s.UpdatePassword(ctx, user, "newsecret"); err != nil {
		t.Fatalf("update password: %v", err)
	}

	if _, _, err := s.Login(ctx, "alice@example.com", "hunter22"); err != ErrInvalidCredentials {
		t.Error("old password should no longer work")
	}
	if _, _, err := s.Login(ctx, "alice@example.com", "newsecret"); err != nil {
		t.Errorf("new password login: %v", err)
	}
}
