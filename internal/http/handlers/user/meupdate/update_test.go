package meupdate_test

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/user-service/internal/http/handlers/user/meupdate"
	"github.com/magabrotheeeer/user-service/internal/http/middlewarectx"
	"github.com/magabrotheeeer/user-service/internal/models"
	userservice "github.com/magabrotheeeer/user-service/internal/services/user"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) Update(ctx context.Context, id int64, params userservice.UpdateParams) (*models.User, error) {
	args := m.Called(ctx, id, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func doRequest(t *testing.T, handler http.Handler, body string, caller *models.User) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPatch, "/users/me", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if caller != nil {
		ctx := context.WithValue(req.Context(), middlewarectx.UserKey, caller)
		req = req.WithContext(ctx)
	}
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func TestMeUpdateHandler(t *testing.T) {
	caller := &models.User{ID: 1, Email: "old@x.com", IsActive: true}

	t.Run("only provided fields are passed on", func(t *testing.T) {
		service := new(ServiceMock)
		service.On("Update", mock.Anything, int64(1), mock.MatchedBy(func(p userservice.UpdateParams) bool {
			return p.Name != nil && *p.Name == "New Name" &&
				p.Email == nil && p.Password == nil && p.IsActive == nil
		})).Return(&models.User{ID: 1, Name: "New Name"}, nil).Once()

		handler := meupdate.New(newNoopLogger(), service)
		rr := doRequest(t, handler, `{"name":"New Name"}`, caller)

		assert.Equal(t, http.StatusOK, rr.Code)
		service.AssertExpectations(t)
	})

	t.Run("explicit is_active=false is distinguished from absence", func(t *testing.T) {
		service := new(ServiceMock)
		service.On("Update", mock.Anything, int64(1), mock.MatchedBy(func(p userservice.UpdateParams) bool {
			return p.IsActive != nil && !*p.IsActive
		})).Return(&models.User{ID: 1, IsActive: false}, nil).Once()

		handler := meupdate.New(newNoopLogger(), service)
		rr := doRequest(t, handler, `{"is_active":false}`, caller)

		assert.Equal(t, http.StatusOK, rr.Code)
		service.AssertExpectations(t)
	})

	t.Run("email conflict returns 409", func(t *testing.T) {
		service := new(ServiceMock)
		service.On("Update", mock.Anything, int64(1), mock.Anything).
			Return(nil, models.ErrEmailTaken).Once()

		handler := meupdate.New(newNoopLogger(), service)
		rr := doRequest(t, handler, `{"email":"taken@x.com"}`, caller)

		assert.Equal(t, http.StatusConflict, rr.Code)
	})

	t.Run("invalid email returns 422", func(t *testing.T) {
		service := new(ServiceMock)
		handler := meupdate.New(newNoopLogger(), service)
		rr := doRequest(t, handler, `{"email":"not-an-email"}`, caller)

		assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
		service.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("short password returns 422", func(t *testing.T) {
		service := new(ServiceMock)
		handler := meupdate.New(newNoopLogger(), service)
		rr := doRequest(t, handler, `{"password":"short"}`, caller)

		assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	})

	t.Run("malformed json returns 400", func(t *testing.T) {
		service := new(ServiceMock)
		handler := meupdate.New(newNoopLogger(), service)
		rr := doRequest(t, handler, `{"name":`, caller)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("missing caller returns 401", func(t *testing.T) {
		service := new(ServiceMock)
		handler := meupdate.New(newNoopLogger(), service)
		rr := doRequest(t, handler, `{"name":"New Name"}`, nil)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Equal(t, "Bearer", rr.Header().Get("WWW-Authenticate"))
	})
}
