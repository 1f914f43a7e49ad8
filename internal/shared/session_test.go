package shared

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestManager(t *testing.T) *SessionManager {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewSessionManager(client, "test_session", time.Hour, false)
}

func TestSessionRoundTrip(t *testing.T) {
	sm := newTestManager(t)
	ctx := context.Background()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := sm.Load(ctx, req)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if sess.User() != 0 {
		t.Fatal("fresh session must be anonymous")
	}
	sess.SetUser(42)

	res := httptest.NewRecorder()
	if err := sm.Commit(ctx, res, sess); err != nil {
		t.Fatalf("commit: %v", err)
	}
	cookies := res.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Value != sess.ID {
		t.Fatalf("expected session cookie, got %+v", cookies)
	}

	// Second request carrying the cookie resolves the same user.
	req2 := httptest.NewRequest(http.MethodGet, "/", nil)
	req2.AddCookie(cookies[0])
	sess2, err := sm.Load(ctx, req2)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if sess2.User() != 42 {
		t.Fatalf("user = %d, want 42", sess2.User())
	}
}

func TestSessionDestroy(t *testing.T) {
	sm := newTestManager(t)
	ctx := context.Background()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, _ := sm.Load(ctx, req)
	sess.SetUser(7)
	res := httptest.NewRecorder()
	if err := sm.Commit(ctx, res, sess); err != nil {
		t.Fatalf("commit: %v", err)
	}
	cookie := res.Result().Cookies()[0]

	sm.Destroy(sess)
	res2 := httptest.NewRecorder()
	if err := sm.Commit(ctx, res2, sess); err != nil {
		t.Fatalf("destroy commit: %v", err)
	}
	expired := res2.Result().Cookies()
	if len(expired) != 1 || expired[0].MaxAge != -1 {
		t.Fatalf("expected expiring cookie, got %+v", expired)
	}

	// The old cookie no longer resolves a user.
	req3 := httptest.NewRequest(http.MethodGet, "/", nil)
	req3.AddCookie(cookie)
	sess3, err := sm.Load(ctx, req3)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if sess3.User() != 0 {
		t.Fatal("destroyed session must be anonymous")
	}
}

func TestCurrentUserID(t *testing.T) {
	ctx := context.Background()
	if _, ok := CurrentUserID(ctx); ok {
		t.Fatal("empty context must carry no user")
	}
	sess := &Session{}
	if _, ok := CurrentUserID(ContextWithSession(ctx, sess)); ok {
		t.Fatal("anonymous session must carry no user")
	}
	sess.SetUser(9)
	id, ok := CurrentUserID(ContextWithSession(ctx, sess))
	if !ok || id != 9 {
		t.Fatalf("got (%d, %v), want (9, true)", id, ok)
	}
}
