// Package services содержит логику бизнес-уровня для регистрации,
// аутентификации и разрешения личности по токену доступа.
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/user-service/internal/lib/jwt"
	"github.com/magabrotheeeer/user-service/internal/lib/password"
	"github.com/magabrotheeeer/user-service/internal/models"
)

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	// CreateUser сохраняет нового пользователя и возвращает созданную запись.
	CreateUser(ctx context.Context, email, passwordHash, name string) (*models.User, error)

	// GetUserByEmail возвращает пользователя по email или models.ErrUserNotFound.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUserByID возвращает пользователя по ID или models.ErrUserNotFound.
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
}

// AuthService отвечает за регистрацию, вход по паролю с выдачей JWT
// и разрешение личности предъявителя токена.
type AuthService struct {
	users    UserRepository
	jwtMaker jwt.Maker
}

// NewAuthService создает новый экземпляр AuthService.
func NewAuthService(users UserRepository, jwtMaker jwt.Maker) *AuthService {
	return &AuthService{
		users:    users,
		jwtMaker: jwtMaker,
	}
}

// Register создает нового пользователя с хэшированием пароля.
//
// Проверка занятости email перед вставкой — только быстрый путь для
// дружелюбной ошибки; решающее слово за уникальным ограничением в базе,
// поэтому конкурентная регистрация того же адреса тоже вернёт
// models.ErrEmailTaken.
func (s *AuthService) Register(ctx context.Context, email, name, rawPassword string) (*models.User, error) {
	const op = "services.auth.Register"

	_, err := s.users.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, models.ErrEmailTaken
	case !errors.Is(err, models.ErrUserNotFound):
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	hashed, err := password.GetHash(rawPassword)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	user, err := s.users.CreateUser(ctx, email, hashed, name)
	if err != nil {
		if errors.Is(err, models.ErrEmailTaken) {
			return nil, models.ErrEmailTaken
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return user, nil
}

// Authenticate проверяет пару email+пароль и возвращает пользователя.
//
// Несуществующий email и неверный пароль неразличимы для вызывающего:
// оба случая дают models.ErrInvalidCredentials, чтобы исключить
// перечисление учётных записей. Операция read-only.
func (s *AuthService) Authenticate(ctx context.Context, email, rawPassword string) (*models.User, error) {
	const op = "services.auth.Authenticate"

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			return nil, models.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		return nil, models.ErrInvalidCredentials
	}
	return user, nil
}

// Login аутентифицирует пользователя и выпускает токен доступа.
// Деактивированной учётной записи вход запрещён.
func (s *AuthService) Login(ctx context.Context, email, rawPassword string) (string, *models.User, error) {
	const op = "services.auth.Login"

	user, err := s.Authenticate(ctx, email, rawPassword)
	if err != nil {
		return "", nil, err
	}
	if !user.IsActive {
		return "", nil, models.ErrInactiveUser
	}

	token, err := s.jwtMaker.GenerateToken(user.ID)
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", op, err)
	}
	return token, user, nil
}

// ResolveToken разбирает токен и загружает пользователя, на которого он ссылается.
//
// Единый конвейер разрешения личности: предикаты активности и роли
// накладываются поверх на уровне middleware. Невалидный токен и токен
// удалённого пользователя дают одну и ту же ошибку models.ErrInvalidToken,
// чтобы не раскрывать причину отказа.
func (s *AuthService) ResolveToken(ctx context.Context, token string) (*models.User, error) {
	const op = "services.auth.ResolveToken"

	claims, err := s.jwtMaker.ParseToken(token)
	if err != nil {
		return nil, models.ErrInvalidToken
	}
	userID, err := claims.UserID()
	if err != nil {
		return nil, models.ErrInvalidToken
	}

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			return nil, models.ErrInvalidToken
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return user, nil
}
