package authenticate

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"webstore/entity"
	"webstore/internal/lib/api/cont"
)

type fakeAuth struct {
	user *entity.User
}

func (f *fakeAuth) AuthenticateByToken(token string) (*entity.User, error) {
	if f.user != nil && token == "good" {
		return f.user, nil
	}
	return nil, errors.New("invalid token")
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func serve(t *testing.T, header string, auth Authenticate) (*httptest.ResponseRecorder, *entity.User) {
	t.Helper()

	var seen *entity.User
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = cont.GetUser(r.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/profile", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()

	New(testLogger(), auth)(next).ServeHTTP(rec, req)
	return rec, seen
}

func TestAuthenticatePassesValidToken(t *testing.T) {
	user := &entity.User{Name: "alice", Email: "alice@example.com"}

	rec, seen := serve(t, "Bearer good", &fakeAuth{user: user})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if seen == nil || seen.Email != user.Email {
		t.Errorf("context user = %+v", seen)
	}
}

func TestAuthenticateRejectsMalformedHeaders(t *testing.T) {
	// "Bearer" with no token must be a 401, not a panic
	for _, header := range []string{"Bearer", "Bearer ", "Token good", "good"} {
		rec, seen := serve(t, header, &fakeAuth{user: &entity.User{}})

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("header %q: status = %d, want 401", header, rec.Code)
		}
		if seen != nil {
			t.Errorf("header %q: handler reached with user %+v", header, seen)
		}
	}
}

func TestAuthenticateRejectsMissingHeader(t *testing.T) {
	rec, _ := serve(t, "", &fakeAuth{})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestAuthenticateRejectsInvalidToken(t *testing.T) {
	rec, _ := serve(t, "Bearer bad", &fakeAuth{user: &entity.User{}})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}
