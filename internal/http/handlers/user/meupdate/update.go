// Package meupdate реализует HTTP-обработчик частичного обновления
// собственного профиля.
//
// Изменяются только поля, присутствующие в JSON: явное is_active=false
// применяется, отсутствие поля оставляет значение прежним. Смена email
// повторно проверяется на занятость.
package meupdate

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/user-service/internal/http/middlewarectx"
	"github.com/magabrotheeeer/user-service/internal/http/response"
	"github.com/magabrotheeeer/user-service/internal/lib/sl"
	"github.com/magabrotheeeer/user-service/internal/models"
	userservice "github.com/magabrotheeeer/user-service/internal/services/user"
)

// Request — частичное обновление профиля. nil-поля не изменяются.
type Request struct {
	Email    *string `json:"email" validate:"omitempty,email"`
	Name     *string `json:"name" validate:"omitempty,min=1,max=100"`
	Password *string `json:"password" validate:"omitempty,min=8,max=100"`
	IsActive *bool   `json:"is_active"`
}

// Service описывает интерфейс бизнес-логики обновления пользователя.
type Service interface {
	Update(ctx context.Context, id int64, params userservice.UpdateParams) (*models.User, error)
}

// Handler обрабатывает запросы на обновление профиля текущего пользователя.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создает новый Handler с переданным логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Обновление собственного профиля
// @Description Частично обновляет учётную запись предъявителя токена.
// @Tags Users
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body Request true "Изменяемые поля"
// @Success 200 {object} response.Response "Обновлённый профиль"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 401 {object} response.ErrorResponse "Невалидный токен"
// @Failure 409 {object} response.ErrorResponse "Email уже зарегистрирован"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /users/me [patch]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.user.meupdate"

	log := h.log.With(
		sl.Op(op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	user, ok := middlewarectx.UserFromContext(r.Context())
	if !ok {
		log.Error("user missing in context")
		w.Header().Set("WWW-Authenticate", "Bearer")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error(models.ErrInvalidToken.Error()))
		return
	}

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	updated, err := h.service.Update(r.Context(), user.ID, userservice.UpdateParams{
		Email:    req.Email,
		Name:     req.Name,
		Password: req.Password,
		IsActive: req.IsActive,
	})
	if err != nil {
		if errors.Is(err, models.ErrEmailTaken) {
			log.Error("email already registered", sl.Err(err))
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error(models.ErrEmailTaken.Error()))
			return
		}
		log.Error("failed to update profile", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not update profile"))
		return
	}

	log.Info("profile updated", slog.Int64("id", updated.ID))
	render.JSON(w, r, response.OKWithData(updated))
}
