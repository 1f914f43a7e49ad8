package auth_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/ledgerline/ledgerline/internal/auth"
	"github.com/ledgerline/ledgerline/internal/shared"
)

type stubRepo struct {
	user     *auth.User
	sessions map[string]int64
}

func (s *stubRepo) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	if s.user == nil || s.user.Email != email {
		return nil, shared.ErrNotFound
	}
	return s.user, nil
}

func (s *stubRepo) CreateSession(ctx context.Context, id string, userID int64, expiresAt time.Time, ip, ua string) error {
	if s.sessions == nil {
		s.sessions = make(map[string]int64)
	}
	s.sessions[id] = userID
	return nil
}

func (s *stubRepo) DeleteSession(ctx context.Context, id string) error {
	delete(s.sessions, id)
	return nil
}

func newAuthHandler(t *testing.T, repo auth.Repository) (*auth.Handler, *shared.SessionManager) {
	t.Helper()
	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	sessionManager := shared.NewSessionManager(redisClient, "test_session", time.Hour, false)
	handler := auth.NewHandler(nil, auth.NewService(repo), sessionManager)
	return handler, sessionManager
}

func doLogin(t *testing.T, handler *auth.Handler, sm *shared.SessionManager, body string) (*httptest.ResponseRecorder, *shared.Session) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	sess, err := sm.Load(context.Background(), req)
	if err != nil {
		t.Fatalf("load session: %v", err)
	}
	ctx := shared.ContextWithSession(req.Context(), sess)
	req = req.WithContext(ctx)

	res := httptest.NewRecorder()
	router := newTestRouter(handler)
	router.ServeHTTP(res, req)
	if err := sm.Commit(ctx, res, sess); err != nil {
		t.Fatalf("commit session: %v", err)
	}
	return res, sess
}

func newTestRouter(handler *auth.Handler) http.Handler {
	r := chi.NewRouter()
	r.Route("/auth", handler.MountRoutes)
	return r
}

func TestLoginSuccess(t *testing.T) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	repo := &stubRepo{user: &auth.User{ID: 1, Email: "user@test.local", Name: "Test User", PasswordHash: string(hashed), IsActive: true}}
	handler, sm := newAuthHandler(t, repo)

	res, sess := doLogin(t, handler, sm, `{"email":"user@test.local","password":"correct horse"}`)
	if res.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", res.Code, res.Body.String())
	}
	if sess.User() != 1 {
		t.Fatalf("session user = %d, want 1", sess.User())
	}
	if repo.sessions[sess.ID] != 1 {
		t.Fatal("session must be registered in postgres store")
	}
}

func TestLoginWrongPassword(t *testing.T) {
	hashed, _ := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.DefaultCost)
	repo := &stubRepo{user: &auth.User{ID: 1, Email: "user@test.local", PasswordHash: string(hashed), IsActive: true}}
	handler, sm := newAuthHandler(t, repo)

	res, sess := doLogin(t, handler, sm, `{"email":"user@test.local","password":"wrong password"}`)
	if res.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", res.Code)
	}
	if sess.User() != 0 {
		t.Fatal("failed login must not authenticate the session")
	}
}

func TestLoginInactiveUser(t *testing.T) {
	hashed, _ := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.DefaultCost)
	repo := &stubRepo{user: &auth.User{ID: 1, Email: "user@test.local", PasswordHash: string(hashed), IsActive: false}}
	handler, sm := newAuthHandler(t, repo)

	res, _ := doLogin(t, handler, sm, `{"email":"user@test.local","password":"correct horse"}`)
	if res.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", res.Code)
	}
}

func TestLoginMalformedBody(t *testing.T) {
	handler, sm := newAuthHandler(t, &stubRepo{})
	res, _ := doLogin(t, handler, sm, `{"email":`)
	if res.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", res.Code)
	}
}
