// Package update реализует HTTP-обработчик частичного обновления
// пользователя по ID. Доступен только администраторам.
package update

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/user-service/internal/http/response"
	"github.com/magabrotheeeer/user-service/internal/lib/sl"
	"github.com/magabrotheeeer/user-service/internal/models"
	userservice "github.com/magabrotheeeer/user-service/internal/services/user"
)

// Request — частичное обновление пользователя. nil-поля не изменяются.
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

// Handler обрабатывает запросы на обновление пользователя по ID.
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
// @Summary Обновление пользователя
// @Description Частично обновляет учётную запись по ID.
// @Tags Users
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param id path int true "ID пользователя"
// @Param request body Request true "Изменяемые поля"
// @Success 200 {object} response.Response "Обновлённый пользователь"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON или ID"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 401 {object} response.ErrorResponse "Невалидный токен"
// @Failure 403 {object} response.ErrorResponse "Требуются права администратора"
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Failure 409 {object} response.ErrorResponse "Email уже зарегистрирован"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /users/{id} [patch]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.user.update"

	log := h.log.With(
		sl.Op(op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		log.Error("failed to decode id from url", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("failed to decode id from url"))
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

	updated, err := h.service.Update(r.Context(), id, userservice.UpdateParams{
		Email:    req.Email,
		Name:     req.Name,
		Password: req.Password,
		IsActive: req.IsActive,
	})
	if err != nil {
		switch {
		case errors.Is(err, models.ErrUserNotFound):
			log.Error("user not found", slog.Int64("id", id))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error(models.ErrUserNotFound.Error()))
		case errors.Is(err, models.ErrEmailTaken):
			log.Error("email already registered", sl.Err(err))
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error(models.ErrEmailTaken.Error()))
		default:
			log.Error("failed to update user", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not update user"))
		}
		return
	}

	log.Info("user updated", slog.Int64("id", updated.ID))
	render.JSON(w, r, response.OKWithData(updated))
}
