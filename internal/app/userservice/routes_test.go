package userservice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/user-service/internal/cache"
	"github.com/magabrotheeeer/user-service/internal/config"
	"github.com/magabrotheeeer/user-service/internal/lib/jwt"
	"github.com/magabrotheeeer/user-service/internal/models"
	authservice "github.com/magabrotheeeer/user-service/internal/services/auth"
	userservice "github.com/magabrotheeeer/user-service/internal/services/user"
)

// memoryRepo — хранилище пользователей в памяти для прогона всего
// приложения через httptest без контейнера с PostgreSQL.
type memoryRepo struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]*models.User
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{users: make(map[int64]*models.User)}
}

func (r *memoryRepo) CreateUser(_ context.Context, email, passwordHash, name string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return nil, models.ErrEmailTaken
		}
	}
	r.nextID++
	now := time.Now()
	u := &models.User{
		ID:           r.nextID,
		Email:        email,
		PasswordHash: passwordHash,
		Name:         name,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	r.users[u.ID] = u
	return u, nil
}

func (r *memoryRepo) GetUserByID(_ context.Context, id int64) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, models.ErrUserNotFound
	}
	copied := *u
	return &copied, nil
}

func (r *memoryRepo) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, models.ErrUserNotFound
}

func (r *memoryRepo) UpdateUser(_ context.Context, id int64, upd models.UserUpdate) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, models.ErrUserNotFound
	}
	if upd.Email != nil {
		u.Email = *upd.Email
	}
	if upd.Name != nil {
		u.Name = *upd.Name
	}
	if upd.PasswordHash != nil {
		u.PasswordHash = *upd.PasswordHash
	}
	if upd.IsActive != nil {
		u.IsActive = *upd.IsActive
	}
	u.UpdatedAt = time.Now()
	copied := *u
	return &copied, nil
}

func (r *memoryRepo) DeleteUser(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return models.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *memoryRepo) CountUsers(_ context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.users), nil
}

func (r *memoryRepo) ListUsers(_ context.Context, limit, offset int) ([]*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*models.User
	for id := int64(1); id <= r.nextID && len(result) < limit+offset; id++ {
		if u, ok := r.users[id]; ok {
			copied := *u
			result = append(result, &copied)
		}
	}
	if offset >= len(result) {
		return nil, nil
	}
	return result[offset:], nil
}

// setAdmin поднимает пользователю флаг администратора напрямую в хранилище.
func (r *memoryRepo) setAdmin(id int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		u.IsAdmin = true
	}
}

func setupRouter(t *testing.T) (chi.Router, *memoryRepo) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	cacheRedis, err := cache.InitServer(context.Background(), config.RedisConnection{
		AddressRedis: mr.Addr(),
	})
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
	repo := newMemoryRepo()
	jwtMaker := jwt.NewJWTMaker("test-secret", time.Hour)
	authService := authservice.NewAuthService(repo, jwtMaker)
	userService := userservice.NewUserService(repo, cacheRedis, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, authService, userService)
	return router, repo
}

func registerUser(t *testing.T, router chi.Router, email, name, password string) int64 {
	t.Helper()

	body := fmt.Sprintf(`{"email":%q,"name":%q,"password":%q}`, email, name, password)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var resp struct {
		Data models.User `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp.Data.ID
}

func loginUser(t *testing.T, router chi.Router, email, password string) string {
	t.Helper()

	form := url.Values{"username": {email}, "password": {password}}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp struct {
		Data struct {
			AccessToken string `json:"access_token"`
			TokenType   string `json:"token_type"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Equal(t, "bearer", resp.Data.TokenType)
	require.NotEmpty(t, resp.Data.AccessToken)
	return resp.Data.AccessToken
}

func doAuthorized(router chi.Router, method, target, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestRoutes_RegisterLoginMe(t *testing.T) {
	router, _ := setupRouter(t)

	registerUser(t, router, "alice@example.com", "Alice", "password123")
	token := loginUser(t, router, "alice@example.com", "password123")

	rr := doAuthorized(router, http.MethodGet, "/api/v1/users/me", token)
	assert.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Data models.User `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "alice@example.com", resp.Data.Email)
	assert.Equal(t, "Alice", resp.Data.Name)
}

func TestRoutes_AdminGate(t *testing.T) {
	router, repo := setupRouter(t)

	registerUser(t, router, "bob@example.com", "Bob", "password123")
	bobToken := loginUser(t, router, "bob@example.com", "password123")

	t.Run("non-admin cannot list users", func(t *testing.T) {
		rr := doAuthorized(router, http.MethodGet, "/api/v1/users", bobToken)
		assert.Equal(t, http.StatusForbidden, rr.Code)
		assert.Empty(t, rr.Header().Get("WWW-Authenticate"))
	})

	t.Run("admin lists users", func(t *testing.T) {
		adminID := registerUser(t, router, "root@example.com", "Root", "password123")
		repo.setAdmin(adminID)
		adminToken := loginUser(t, router, "root@example.com", "password123")

		rr := doAuthorized(router, http.MethodGet, "/api/v1/users", adminToken)
		assert.Equal(t, http.StatusOK, rr.Code)

		var resp struct {
			Data userservice.Page `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, 2, resp.Data.Total)
	})
}

func TestRoutes_Unauthorized(t *testing.T) {
	router, _ := setupRouter(t)

	t.Run("no token", func(t *testing.T) {
		rr := doAuthorized(router, http.MethodGet, "/api/v1/users/me", "")
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Equal(t, "Bearer", rr.Header().Get("WWW-Authenticate"))
	})

	t.Run("garbage token", func(t *testing.T) {
		rr := doAuthorized(router, http.MethodGet, "/api/v1/users/me", "not-a-jwt")
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Equal(t, "Bearer", rr.Header().Get("WWW-Authenticate"))
	})
}

func TestRoutes_DeactivatedAccount(t *testing.T) {
	router, _ := setupRouter(t)

	registerUser(t, router, "carol@example.com", "Carol", "password123")
	token := loginUser(t, router, "carol@example.com", "password123")

	// Пользователь деактивирует собственную учётную запись.
	body := bytes.NewBufferString(`{"is_active":false}`)
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/users/me", body)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	// Токен действителен, но запрос отклоняется проверкой активности.
	rr = doAuthorized(router, http.MethodGet, "/api/v1/users/me", token)
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Empty(t, rr.Header().Get("WWW-Authenticate"))
}
