// Package services содержит бизнес-логику управления пользователями:
// чтение профилей с кешированием, постраничное перечисление,
// частичное обновление и удаление.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/user-service/internal/lib/password"
	"github.com/magabrotheeeer/user-service/internal/lib/sl"
	"github.com/magabrotheeeer/user-service/internal/models"
)

// cacheTTL ограничивает время жизни записи пользователя в кеше.
const cacheTTL = time.Hour

// UserRepository определяет методы для работы с пользователями в хранилище.
type UserRepository interface {
	// GetUserByID возвращает пользователя по ID или models.ErrUserNotFound.
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	// GetUserByEmail возвращает пользователя по email или models.ErrUserNotFound.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	// UpdateUser применяет частичное обновление и возвращает новую версию записи.
	UpdateUser(ctx context.Context, id int64, upd models.UserUpdate) (*models.User, error)
	// DeleteUser удаляет пользователя по ID.
	DeleteUser(ctx context.Context, id int64) error
	// CountUsers возвращает общее количество пользователей.
	CountUsers(ctx context.Context) (int, error)
	// ListUsers возвращает страницу пользователей с пагинацией.
	ListUsers(ctx context.Context, limit, offset int) ([]*models.User, error)
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	// Get пытается получить значение из кеша по ключу.
	Get(ctx context.Context, key string, result any) (bool, error)
	// Set сохраняет значение в кеш с временем жизни.
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	// Invalidate удаляет значение из кеша по ключу.
	Invalidate(ctx context.Context, key string) error
}

// UpdateParams описывает частичное обновление пользователя на уровне
// бизнес-логики: пароль передаётся в открытом виде и хэшируется здесь.
// nil означает «поле не меняется».
type UpdateParams struct {
	Email    *string
	Name     *string
	Password *string
	IsActive *bool
}

// Page описывает страницу списка пользователей.
type Page struct {
	Items      []*models.User `json:"items"`
	Total      int            `json:"total"`
	Page       int            `json:"page"`
	PageSize   int            `json:"page_size"`
	TotalPages int            `json:"total_pages"`
}

// UserService реализует бизнес-логику работы с пользователями, включая кеширование.
type UserService struct {
	repo  UserRepository
	cache Cache
	log   *slog.Logger
}

// NewUserService создает новый экземпляр UserService.
func NewUserService(repo UserRepository, cache Cache, log *slog.Logger) *UserService {
	return &UserService{
		repo:  repo,
		cache: cache,
		log:   log,
	}
}

func cacheKey(id int64) string {
	return fmt.Sprintf("user:%d", id)
}

// Get возвращает пользователя по ID, используя кеш или репозиторий.
// Ошибки кеша не фатальны: запись читается из базы.
func (s *UserService) Get(ctx context.Context, id int64) (*models.User, error) {
	key := cacheKey(id)

	var cached models.User
	found, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		s.log.Warn("failed to read user from cache", slog.String("key", key), sl.Err(err))
	}
	if found {
		return &cached, nil
	}

	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, key, user, cacheTTL); err != nil {
		s.log.Warn("failed to cache user", slog.String("key", key), sl.Err(err))
	}
	return user, nil
}

// List возвращает страницу пользователей.
//
// Страницы нумеруются с единицы, размер страницы ограничен [1, 100];
// количество страниц — деление с округлением вверх.
func (s *UserService) List(ctx context.Context, page, pageSize int) (*Page, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > 100 {
		pageSize = 100
	}

	offset := (page - 1) * pageSize
	items, err := s.repo.ListUsers(ctx, pageSize, offset)
	if err != nil {
		return nil, err
	}
	total, err := s.repo.CountUsers(ctx)
	if err != nil {
		return nil, err
	}

	return &Page{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: (total + pageSize - 1) / pageSize,
	}, nil
}

// Update применяет частичное обновление пользователя.
//
// При смене email повторно проверяется его занятость; уникальное
// ограничение в базе остаётся последней инстанцией. Новый пароль
// хэшируется, кеш записи инвалидируется.
func (s *UserService) Update(ctx context.Context, id int64, params UpdateParams) (*models.User, error) {
	const op = "services.user.Update"

	upd := models.UserUpdate{
		Name:     params.Name,
		IsActive: params.IsActive,
	}

	if params.Email != nil {
		current, err := s.repo.GetUserByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if *params.Email != current.Email {
			_, err := s.repo.GetUserByEmail(ctx, *params.Email)
			switch {
			case err == nil:
				return nil, models.ErrEmailTaken
			case !errors.Is(err, models.ErrUserNotFound):
				return nil, fmt.Errorf("%s: %w", op, err)
			}
			upd.Email = params.Email
		}
	}

	if params.Password != nil {
		hashed, err := password.GetHash(*params.Password)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		upd.PasswordHash = &hashed
	}

	user, err := s.repo.UpdateUser(ctx, id, upd)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Invalidate(ctx, cacheKey(id)); err != nil {
		s.log.Warn("failed to invalidate user cache", slog.Int64("id", id), sl.Err(err))
	}
	s.log.Info("updated user", slog.Int64("id", id))
	return user, nil
}

// Delete удаляет пользователя по ID от имени администратора callerID.
//
// Удаление собственной учётной записи запрещается до обращения к
// хранилищу, строка при этом не затрагивается.
func (s *UserService) Delete(ctx context.Context, callerID, id int64) error {
	if callerID == id {
		return models.ErrSelfDelete
	}

	if err := s.repo.DeleteUser(ctx, id); err != nil {
		return err
	}

	if err := s.cache.Invalidate(ctx, cacheKey(id)); err != nil {
		s.log.Warn("failed to invalidate user cache", slog.Int64("id", id), sl.Err(err))
	}
	s.log.Info("deleted user", slog.Int64("id", id))
	return nil
}
