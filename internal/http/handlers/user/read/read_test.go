package read_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/user-service/internal/http/handlers/user/read"
	"github.com/magabrotheeeer/user-service/internal/models"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) Get(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func doRequest(t *testing.T, handler http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()

	router := chi.NewRouter()
	router.Get("/users/{id}", handler.ServeHTTP)

	req := httptest.NewRequest(http.MethodGet, target, nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestReadHandler(t *testing.T) {
	t.Run("success returns user", func(t *testing.T) {
		service := new(ServiceMock)
		service.On("Get", mock.Anything, int64(7)).
			Return(&models.User{ID: 7, Email: "a@x.com", PasswordHash: "$2a$10$secret"}, nil).Once()

		handler := read.New(newNoopLogger(), service)
		rr := doRequest(t, handler, "/users/7")

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.NotContains(t, rr.Body.String(), "$2a$10$secret")

		var resp struct {
			Data *models.User `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, int64(7), resp.Data.ID)
		service.AssertExpectations(t)
	})

	t.Run("missing user returns 404", func(t *testing.T) {
		service := new(ServiceMock)
		service.On("Get", mock.Anything, int64(9)).Return(nil, models.ErrUserNotFound).Once()

		handler := read.New(newNoopLogger(), service)
		rr := doRequest(t, handler, "/users/9")

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("non-numeric id returns 400", func(t *testing.T) {
		service := new(ServiceMock)
		handler := read.New(newNoopLogger(), service)
		rr := doRequest(t, handler, "/users/abc")

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		service.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
	})

	t.Run("storage failure returns 500", func(t *testing.T) {
		service := new(ServiceMock)
		service.On("Get", mock.Anything, int64(7)).Return(nil, assert.AnError).Once()

		handler := read.New(newNoopLogger(), service)
		rr := doRequest(t, handler, "/users/7")

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
	})
}
