package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	repo "Hydra/internal/repo"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryRepo struct {
	mu    sync.Mutex
	users map[string]struct {
		id   int
		hash string
	}
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{users: map[string]struct {
		id   int
		hash string
	}{}}
}

func (m *memoryRepo) CreateUser(_ context.Context, login, _, password string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[login]; ok {
		return 0, assert.AnError
	}
	id := len(m.users) + 1
	m.users[login] = struct {
		id   int
		hash string
	}{id, password}
	return id, nil
}

func (m *memoryRepo) GetBylogin(_ context.Context, login string) (int, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[login]
	if !ok {
		return 0, "", repo.ErrUserNotFound
	}
	return u.id, u.hash, nil
}

func post(h http.HandlerFunc, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader(body)))
	return rec
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == cookieName {
			return c
		}
	}
	t.Fatal("no session cookie")
	return nil
}

func TestRegisterAndLogin(t *testing.T) {
	env := &Authenv{JWTkey: []byte("test-key"), Repo: newMemoryRepo()}

	t.Run("should register and set a cookie", func(t *testing.T) {
		rec := post(env.RegisterHandler, `{"login":" alice ","email":"a@example.com","password":"secret1"}`)
		require.Equal(t, http.StatusCreated, rec.Code)
		c := sessionCookie(t, rec)
		assert.True(t, c.HttpOnly)
	})

	t.Run("should refuse a duplicate or weak registration", func(t *testing.T) {
		assert.Equal(t, http.StatusConflict, post(env.RegisterHandler, `{"login":"alice","email":"a@example.com","password":"secret1"}`).Code)
		assert.Equal(t, http.StatusBadRequest, post(env.RegisterHandler, `{"login":"bob","email":"b@example.com","password":"123"}`).Code)
		assert.Equal(t, http.StatusBadRequest, post(env.RegisterHandler, `{"login":"bob"}`).Code)
	})

	t.Run("should log in with the right password only", func(t *testing.T) {
		rec := post(env.AuthHandler, `{"login":"alice","password":"secret1"}`)
		require.Equal(t, http.StatusOK, rec.Code)
		sessionCookie(t, rec)

		assert.Equal(t, http.StatusUnauthorized, post(env.AuthHandler, `{"login":"alice","password":"wrong!"}`).Code)
		assert.Equal(t, http.StatusUnauthorized, post(env.AuthHandler, `{"login":"nobody","password":"secret1"}`).Code)
	})
}

func TestAuthMiddleware(t *testing.T) {
	env := &Authenv{JWTkey: []byte("test-key"), Repo: newMemoryRepo()}
	var gotID int
	var gotLogin string
	protected := env.AuthMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID, _ = UserID(r.Context())
		gotLogin = UserLogin(r.Context())
	}))

	call := func(c *http.Cookie) int {
		req := httptest.NewRequest(http.MethodGet, "/api/user/tools", nil)
		if c != nil {
			req.AddCookie(c)
		}
		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, req)
		return rec.Code
	}

	t.Run("should admit a valid session", func(t *testing.T) {
		rec := httptest.NewRecorder()
		require.NoError(t, env.addCookie(rec, 7, "alice"))
		assert.Equal(t, http.StatusOK, call(sessionCookie(t, rec)))
		assert.Equal(t, 7, gotID)
		assert.Equal(t, "alice", gotLogin)
	})

	t.Run("should refuse missing, forged and expired tokens", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, call(nil))

		forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"user_id": 1, "login": "x"}).SignedString([]byte("other"))
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, call(&http.Cookie{Name: cookieName, Value: forged}))

		expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"user_id": 1, "login": "x", "exp": time.Now().Add(-time.Hour).Unix(),
		}).SignedString(env.JWTkey)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, call(&http.Cookie{Name: cookieName, Value: expired}))
	})
}

func TestLimitMiddleware(t *testing.T) {
	l := NewIPRateLimiter(0.001, 2)
	h := l.LimitMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/catalog/pumps", nil)
		req.RemoteAddr = "10.0.0.1:5000"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{200, 200, 429}, codes)

	other := httptest.NewRequest(http.MethodGet, "/api/catalog/pumps", nil)
	other.RemoteAddr = "10.0.0.2:5000"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, other)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLogout(t *testing.T) {
	env := &Authenv{JWTkey: []byte("k")}
	rec := httptest.NewRecorder()
	env.Logout(rec, httptest.NewRequest(http.MethodPost, "/api/logout", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	c := sessionCookie(t, rec)
	assert.Equal(t, -1, c.MaxAge)
}
