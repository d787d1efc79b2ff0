// Package middlewarectx содержит HTTP middleware для проверки токена
// доступа и наложения предикатов доступа.
//
// Authenticate проверяет JWT из заголовка Authorization, загружает
// пользователя и кладёт его в контекст запроса; деактивированной
// учётной записи доступ запрещён. RequireActive повторяет проверку
// активности для групп маршрутов, RequireAdmin накладывает поверх
// требование роли администратора. OptionalAuthenticate никогда не
// отклоняет запрос: невалидный или отсутствующий токен означает
// анонимный вызов.
//
// Ответ 401 всегда сопровождается заголовком WWW-Authenticate: Bearer;
// ответ 403 — нет.
package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/user-service/internal/http/response"
	"github.com/magabrotheeeer/user-service/internal/lib/sl"
	"github.com/magabrotheeeer/user-service/internal/models"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

// UserKey — ключ для записи пользователя в контексте.
const UserKey Key = "user"

// Resolver описывает интерфейс разрешения личности по токену доступа.
type Resolver interface {
	ResolveToken(ctx context.Context, token string) (*models.User, error)
}

// UserFromContext извлекает пользователя, положенного в контекст
// middleware аутентификации.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(UserKey).(*models.User)
	return user, ok
}

// bearerToken извлекает токен из заголовка Authorization.
func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", false
	}
	return strings.TrimPrefix(authHeader, "Bearer "), true
}

func unauthorized(w http.ResponseWriter, r *http.Request, msg string) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	w.WriteHeader(http.StatusUnauthorized)
	render.JSON(w, r, response.Error(msg))
}

// Authenticate возвращает HTTP middleware, которое проверяет JWT в заголовке
// Authorization и требует активную учётную запись.
//
// Если токен валиден и пользователь активен, запись кладётся в контекст
// запроса, иначе возвращается 401 Unauthorized или 403 Forbidden.
func Authenticate(resolver Resolver, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.Authenticate"

			log := log.With(
				sl.Op(op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			tokenStr, ok := bearerToken(r)
			if !ok {
				log.Error("missing or invalid authorization header")
				unauthorized(w, r, models.ErrInvalidToken.Error())
				return
			}

			user, err := resolver.ResolveToken(r.Context(), tokenStr)
			if err != nil {
				log.Error("failed to resolve token", sl.Err(err))
				unauthorized(w, r, models.ErrInvalidToken.Error())
				return
			}
			if !user.IsActive {
				log.Error("inactive user denied", slog.Int64("id", user.ID))
				w.WriteHeader(http.StatusForbidden)
				render.JSON(w, r, response.Error(models.ErrInactiveUser.Error()))
				return
			}

			ctx := context.WithValue(r.Context(), UserKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireActive возвращает middleware, повторно требующее активную
// учётную запись. Ставится в цепочку после Authenticate: проверка
// активности дублируется намеренно, чтобы группа маршрутов не зависела
// от того, какой из слоёв её наложил.
func RequireActive(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.RequireActive"

			log := log.With(
				sl.Op(op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			user, ok := UserFromContext(r.Context())
			if !ok {
				log.Error("user missing in context")
				unauthorized(w, r, models.ErrInvalidToken.Error())
				return
			}
			if !user.IsActive {
				log.Error("inactive user denied", slog.Int64("id", user.ID))
				w.WriteHeader(http.StatusForbidden)
				render.JSON(w, r, response.Error(models.ErrInactiveUser.Error()))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin возвращает middleware, требующее роль администратора.
// Ставится в цепочку после Authenticate.
func RequireAdmin(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.RequireAdmin"

			log := log.With(
				sl.Op(op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			user, ok := UserFromContext(r.Context())
			if !ok {
				log.Error("user missing in context")
				unauthorized(w, r, models.ErrInvalidToken.Error())
				return
			}
			if !user.IsAdmin {
				log.Error("admin access denied", slog.Int64("id", user.ID))
				w.WriteHeader(http.StatusForbidden)
				render.JSON(w, r, response.Error(models.ErrAdminRequired.Error()))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// OptionalAuthenticate возвращает middleware, которое кладёт пользователя
// в контекст, если токен предъявлен и валиден, и пропускает запрос
// анонимно в любом другом случае. Ошибки разрешения проглатываются,
// активность и роль не проверяются.
func OptionalAuthenticate(resolver Resolver, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.OptionalAuthenticate"

			tokenStr, ok := bearerToken(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			user, err := resolver.ResolveToken(r.Context(), tokenStr)
			if err != nil {
				log.Debug("optional auth skipped",
					sl.Op(op),
					slog.String("request_id", middleware.GetReqID(r.Context())),
					sl.Err(err))
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), UserKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
