// Package list реализует HTTP-обработчик постраничного перечисления
// пользователей. Доступен только администраторам.
package list

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/user-service/internal/http/response"
	"github.com/magabrotheeeer/user-service/internal/lib/sl"
	userservice "github.com/magabrotheeeer/user-service/internal/services/user"
)

// Request — параметры пагинации из строки запроса.
// Страницы нумеруются с единицы, размер страницы ограничен сотней.
type Request struct {
	Page     int `validate:"min=1"`
	PageSize int `validate:"min=1,max=100"`
}

// Service описывает интерфейс бизнес-логики перечисления пользователей.
type Service interface {
	List(ctx context.Context, page, pageSize int) (*userservice.Page, error)
}

// Handler обрабатывает запросы на перечисление пользователей.
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

// parseQuery разбирает параметры пагинации с значениями по умолчанию.
func parseQuery(r *http.Request) (Request, error) {
	req := Request{Page: 1, PageSize: 20}

	if raw := r.URL.Query().Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil {
			return req, err
		}
		req.Page = page
	}
	if raw := r.URL.Query().Get("page_size"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil {
			return req, err
		}
		req.PageSize = size
	}
	return req, nil
}

// ServeHTTP godoc
// @Summary Список пользователей
// @Description Возвращает страницу пользователей с общим количеством и числом страниц.
// @Tags Users
// @Produce  json
// @Security BearerAuth
// @Param page query int false "Номер страницы (с 1)" default(1)
// @Param page_size query int false "Размер страницы [1,100]" default(20)
// @Success 200 {object} response.Response "Страница пользователей"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 401 {object} response.ErrorResponse "Невалидный токен"
// @Failure 403 {object} response.ErrorResponse "Требуются права администратора"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /users [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.user.list"

	log := h.log.With(
		sl.Op(op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	req, err := parseQuery(r)
	if err != nil {
		log.Error("failed to parse pagination params", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.Error("page and page_size must be integers"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	page, err := h.service.List(r.Context(), req.Page, req.PageSize)
	if err != nil {
		log.Error("failed to list users", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list users"))
		return
	}

	log.Info("listed users", slog.Int("count", len(page.Items)), slog.Int("total", page.Total))
	render.JSON(w, r, response.OKWithData(page))
}
