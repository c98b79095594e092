package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hajimeclub/portal/internal/entities"
)

// fakeUserResolver backs the session manager with an in-memory user table.
type fakeUserResolver struct {
	mu    sync.Mutex
	users map[uint]*entities.User
}

func newFakeUserResolver(ids ...uint) *fakeUserResolver {
	r := &fakeUserResolver{users: make(map[uint]*entities.User)}
	for _, id := range ids {
		r.users[id] = &entities.User{ID: id, Role: entities.UserRoleStudent}
	}
	return r
}

func (r *fakeUserResolver) GetByID(id uint) (*entities.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.users[id], nil
}

func (r *fakeUserResolver) remove(id uint) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, id)
}

func newTestManager(t *testing.T, users UserResolver) (*Manager, *MemoryStore) {
	t.Helper()
	store := NewMemoryStore()
	m, err := NewManager(store, users, []byte("0123456789abcdef0123456789abcdef"), time.Hour, false)
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	return m, store
}

func TestManager_IssueResolve(t *testing.T) {
	m, _ := newTestManager(t, newFakeUserResolver(42))
	ctx := context.Background()

	token, expiry, err := m.Issue(ctx, 42)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	if token == "" {
		t.Fatal("Issue() returned empty token")
	}
	if until := time.Until(expiry); until < 59*time.Minute || until > time.Hour {
		t.Errorf("expiry %v not ~1h out", until)
	}

	user, err := m.Resolve(ctx, token)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if user == nil || user.ID != 42 {
		t.Errorf("Resolve() = %+v, want user 42", user)
	}
}

func TestManager_TokensAreUnique(t *testing.T) {
	m, _ := newTestManager(t, newFakeUserResolver(1))
	ctx := context.Background()

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		token, _, err := m.Issue(ctx, 1)
		if err != nil {
			t.Fatalf("Issue() error = %v", err)
		}
		if seen[token] {
			t.Fatalf("token %q issued twice", token)
		}
		seen[token] = true
	}
}

func TestManager_ResolveUnknownTokenIsAnonymous(t *testing.T) {
	m, _ := newTestManager(t, newFakeUserResolver(1))

	user, err := m.Resolve(context.Background(), "no-such-token")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if user != nil {
		t.Errorf("Resolve() = %+v, want anonymous", user)
	}
}

func TestManager_RevokeIsIdempotent(t *testing.T) {
	m, _ := newTestManager(t, newFakeUserResolver(7))
	ctx := context.Background()

	token, _, err := m.Issue(ctx, 7)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	for i := 0; i < 3; i++ {
		if err := m.Revoke(ctx, token); err != nil {
			t.Fatalf("Revoke() #%d error = %v", i+1, err)
		}
	}
	if err := m.Revoke(ctx, "never-existed"); err != nil {
		t.Fatalf("Revoke(unknown) error = %v", err)
	}

	user, err := m.Resolve(ctx, token)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if user != nil {
		t.Error("Resolve() after Revoke() still returns an identity")
	}
}

func TestManager_ExpiredTokenIsAnonymousAndDropped(t *testing.T) {
	store := NewMemoryStore()
	users := newFakeUserResolver(3)
	m, err := NewManager(store, users, []byte("0123456789abcdef0123456789abcdef"), time.Hour, false)
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	ctx := context.Background()

	// Plant an already-expired record directly.
	if err := store.Put(ctx, "expired-token", Record{UserID: 3, Expiry: time.Now().Add(-time.Minute)}); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	user, err := m.Resolve(ctx, "expired-token")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if user != nil {
		t.Error("Resolve() returned an identity for an expired token")
	}

	if _, ok, _ := store.Get(ctx, "expired-token"); ok {
		t.Error("expired token still present in store after Resolve()")
	}
}

func TestManager_DeletedUserInvalidatesSessionLazily(t *testing.T) {
	users := newFakeUserResolver(9)
	m, store := newTestManager(t, users)
	ctx := context.Background()

	token, _, err := m.Issue(ctx, 9)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	users.remove(9)

	user, err := m.Resolve(ctx, token)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if user != nil {
		t.Error("Resolve() returned an identity for a deleted user")
	}

	if _, ok, _ := store.Get(ctx, token); ok {
		t.Error("session entry survived its user's deletion")
	}
}

func TestManager_CookieRoundtrip(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m, _ := newTestManager(t, newFakeUserResolver(5))
	ctx := context.Background()

	token, expiry, err := m.Issue(ctx, 5)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	m.WriteCookie(c, token, expiry)

	cookies := w.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("got %d cookies, want 1", len(cookies))
	}
	cookie := cookies[0]
	if cookie.Name != SessionCookieName {
		t.Errorf("cookie name = %q", cookie.Name)
	}
	if !cookie.HttpOnly {
		t.Error("cookie is not HTTP-only")
	}
	if cookie.MaxAge <= 0 {
		t.Error("cookie max-age not set")
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)

	got, ok := m.TokenFromRequest(req)
	if !ok {
		t.Fatal("TokenFromRequest() rejected a cookie the manager wrote")
	}
	if got != token {
		t.Errorf("TokenFromRequest() = %q, want %q", got, token)
	}
}

func TestManager_TamperedCookieIsRejected(t *testing.T) {
	m, _ := newTestManager(t, newFakeUserResolver(5))

	token, _, err := m.Issue(context.Background(), 5)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	tests := []struct {
		name  string
		value string
	}{
		{"unsigned token", token},
		{"wrong signature", token + ".deadbeef"},
		{"different token same signature", "a" + m.signToken(token)[1:]},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: tt.value})

			if _, ok := m.TokenFromRequest(req); ok {
				t.Error("TokenFromRequest() accepted a tampered cookie")
			}
		})
	}
}

func TestMemoryStore_Concurrency(t *testing.T) {
	m, _ := newTestManager(t, newFakeUserResolver(1, 2, 3, 4, 5, 6, 7, 8))
	ctx := context.Background()

	var wg sync.WaitGroup
	tokens := make([]string, 64)
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			token, _, err := m.Issue(ctx, uint(i%8)+1)
			if err != nil {
				t.Errorf("Issue() error = %v", err)
				return
			}
			tokens[i] = token
		}(i)
	}
	wg.Wait()

	seen := make(map[string]bool)
	for _, token := range tokens {
		if token == "" {
			continue
		}
		if seen[token] {
			t.Fatalf("token %q allocated twice under concurrency", token)
		}
		seen[token] = true

		user, err := m.Resolve(ctx, token)
		if err != nil || user == nil {
			t.Fatalf("Resolve(%q) = (%v, %v)", token, user, err)
		}
	}
}

func TestMemoryStore_PurgeExpired(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_ = store.Put(ctx, "live", Record{UserID: 1, Expiry: time.Now().Add(time.Hour)})
	_ = store.Put(ctx, "dead-1", Record{UserID: 2, Expiry: time.Now().Add(-time.Minute)})
	_ = store.Put(ctx, "dead-2", Record{UserID: 3, Expiry: time.Now().Add(-time.Hour)})

	if removed := store.PurgeExpired(); removed != 2 {
		t.Errorf("PurgeExpired() = %d, want 2", removed)
	}
	if store.Len() != 1 {
		t.Errorf("Len() = %d after purge, want 1", store.Len())
	}
	if _, ok, _ := store.Get(ctx, "live"); !ok {
		t.Error("live session was purged")
	}
}
