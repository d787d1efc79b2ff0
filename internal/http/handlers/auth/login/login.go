// Package login реализует HTTP-обработчик входа по форме OAuth2.
//
// Обработчик принимает form-encoded поля username и password
// (username содержит email), проверяет учётные данные и возвращает
// токен доступа. Неверный email и неверный пароль неразличимы в ответе.
package login

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/user-service/internal/http/response"
	"github.com/magabrotheeeer/user-service/internal/lib/sl"
	"github.com/magabrotheeeer/user-service/internal/models"
)

// Service описывает интерфейс бизнес-логики входа.
type Service interface {
	Login(ctx context.Context, email, rawPassword string) (string, *models.User, error)
}

// Handler обрабатывает HTTP-запросы входа по форме.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler с указанными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Вход по форме OAuth2
// @Description Аутентифицирует пользователя по email (поле username) и паролю. Возвращает bearer-токен.
// @Tags Auth
// @Accept  x-www-form-urlencoded
// @Produce  json
// @Param username formData string true "Email пользователя"
// @Param password formData string true "Пароль"
// @Success 200 {object} response.Response "Токен доступа"
// @Failure 422 {object} response.ErrorResponse "Отсутствуют учетные данные"
// @Failure 401 {object} response.ErrorResponse "Неверные учетные данные"
// @Failure 403 {object} response.ErrorResponse "Учетная запись деактивирована"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /auth/login [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.login"

	log := h.log.With(
		sl.Op(op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	if err := r.ParseForm(); err != nil {
		log.Error("failed to parse form", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	email := r.PostFormValue("username")
	pass := r.PostFormValue("password")
	if email == "" || pass == "" {
		log.Error("missing credentials in form")
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.Error("username and password are required"))
		return
	}

	token, user, err := h.service.Login(r.Context(), email, pass)
	if err != nil {
		writeLoginError(w, r, log, err)
		return
	}

	log.Info("login success", slog.Int64("id", user.ID))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"access_token": token,
		"token_type":   "bearer",
	}))
}

// writeLoginError отображает ошибки входа в HTTP-статусы.
func writeLoginError(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	switch {
	case errors.Is(err, models.ErrInvalidCredentials):
		log.Error("invalid credentials", sl.Err(err))
		w.Header().Set("WWW-Authenticate", "Bearer")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error(models.ErrInvalidCredentials.Error()))
	case errors.Is(err, models.ErrInactiveUser):
		log.Error("inactive user login denied", sl.Err(err))
		w.WriteHeader(http.StatusForbidden)
		render.JSON(w, r, response.Error(models.ErrInactiveUser.Error()))
	default:
		log.Error("login failed", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal server error"))
	}
}
