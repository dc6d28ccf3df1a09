package users

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salesagent-backend/internal/auth"
	"salesagent-backend/internal/middleware"
	"salesagent-backend/internal/validation"
)

func newManager() *auth.Manager {
	return &auth.Manager{
		Secret:     []byte("test-secret"),
		AccessTTL:  15 * time.Minute,
		RefreshTTL: time.Hour,
		Issuer:     "salesagent-backend",
	}
}

func newRouter(svc *Service, manager *auth.Manager) http.Handler {
	h := NewHandler(svc, manager, false, validation.New(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	r := chi.NewRouter()
	r.Use(middleware.Authenticate(manager))
	r.Post("/auth/login", h.Login)
	r.Post("/auth/refresh", h.Refresh)
	r.Post("/auth/logout", h.Logout)
	r.Get("/auth/me", h.Me)
	return r
}

func cookieByName(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestCreateRejectsDuplicateEmail(t *testing.T) {
	svc := NewService(NewMemoryRepository(), time.UTC)
	ctx := context.Background()
	u, err := svc.Create(ctx, CreateRequest{Email: "Anna@Example.com", DisplayName: "Anna", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, "anna@example.com", u.Email)
	assert.Equal(t, RoleTeamMember, u.Role)
	assert.NotEqual(t, "secret123", u.PasswordHash)

	_, err = svc.Create(ctx, CreateRequest{Email: "anna@example.com", DisplayName: "Anna 2", Password: "secret123"})
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestLoginRefreshMe(t *testing.T) {
	svc := NewService(NewMemoryRepository(), time.UTC)
	_, err := svc.Create(context.Background(), CreateRequest{Email: "anna@example.com", DisplayName: "Anna", Password: "secret123", Role: RoleAdmin})
	require.NoError(t, err)
	manager := newManager()
	router := newRouter(svc, manager)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"email":"anna@example.com","password":"wrong"}`)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"email":"ANNA@example.com","password":"secret123"}`)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "passwordHash")

	access := cookieByName(rec, middleware.AccessCookie)
	refresh := cookieByName(rec, RefreshCookie)
	require.NotNil(t, access)
	require.NotNil(t, refresh)

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.AddCookie(access)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	var me User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &me))
	assert.Equal(t, RoleAdmin, me.Role)

	req = httptest.NewRequest(http.MethodPost, "/auth/refresh", nil)
	req.AddCookie(access)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/auth/refresh", nil)
	req.AddCookie(&http.Cookie{Name: RefreshCookie, Value: refresh.Value})
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLoginWithoutManager(t *testing.T) {
	svc := NewService(NewMemoryRepository(), time.UTC)
	router := newRouter(svc, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"email":"anna@example.com","password":"x"}`)))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/logout", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
