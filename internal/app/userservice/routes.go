// Package userservice собирает приложение: маршруты, middleware и зависимости.
package userservice

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/user-service/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/user-service/internal/http/handlers/auth/register"
	"github.com/magabrotheeeer/user-service/internal/http/handlers/auth/token"
	"github.com/magabrotheeeer/user-service/internal/http/handlers/user/list"
	"github.com/magabrotheeeer/user-service/internal/http/handlers/user/me"
	"github.com/magabrotheeeer/user-service/internal/http/handlers/user/meupdate"
	"github.com/magabrotheeeer/user-service/internal/http/handlers/user/read"
	"github.com/magabrotheeeer/user-service/internal/http/handlers/user/remove"
	"github.com/magabrotheeeer/user-service/internal/http/handlers/user/update"
	"github.com/magabrotheeeer/user-service/internal/http/middlewarectx"
	authservice "github.com/magabrotheeeer/user-service/internal/services/auth"
	userservice "github.com/magabrotheeeer/user-service/internal/services/user"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, authService *authservice.AuthService, userService *userservice.UserService) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
		middlewarectx.Metrics,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/auth/register", register.New(logger, authService).ServeHTTP)
		r.Post("/auth/login", login.New(logger, authService).ServeHTTP)
		r.Post("/auth/token", token.New(logger, authService).ServeHTTP)

		// Группа с обязательной аутентификацией. Проверка активности
		// выполняется и в Authenticate, и отдельным слоем RequireActive.
		r.Group(func(r chi.Router) {
			r.Use(
				middlewarectx.Authenticate(authService, logger),
				middlewarectx.RequireActive(logger),
			)
			r.Get("/users/me", me.New(logger).ServeHTTP)
			r.Patch("/users/me", meupdate.New(logger, userService).ServeHTTP)

			// Операции администратора
			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.RequireAdmin(logger))
				r.Get("/users", list.New(logger, userService).ServeHTTP)
				r.Get("/users/{id}", read.New(logger, userService).ServeHTTP)
				r.Patch("/users/{id}", update.New(logger, userService).ServeHTTP)
				r.Delete("/users/{id}", remove.New(logger, userService).ServeHTTP)
			})
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
