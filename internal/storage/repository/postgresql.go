// Package repository реализует хранилище данных на основе PostgreSQL
// для управления пользователями. Предоставляет методы создания, чтения,
// частичного обновления, удаления и постраничного перечисления
// учётных записей.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	// Регистрация драйвера pgx для использования с database/sql.
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/magabrotheeeer/user-service/internal/models"
)

// Код ошибки PostgreSQL о нарушении уникального ограничения.
const pgUniqueViolation = "23505"

// Storage инкапсулирует соединение с базой данных PostgreSQL
// и реализует методы работы с пользователями.
type Storage struct {
	DB *sql.DB
}

// New создаёт подключение к PostgreSQL и проверяет его доступность.
func New(storageConnectionString string) (*Storage, error) {
	const op = "storage.New"

	db, err := sql.Open("pgx", storageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = db.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{
		DB: db,
	}, nil
}

// CheckDatabaseReady проверяет готовность базы данных: таблица users
// должна существовать после применения миграций.
func CheckDatabaseReady(storage *Storage) error {
	var exists bool
	err := storage.DB.QueryRow(`SELECT EXISTS (
        SELECT FROM information_schema.tables
        WHERE table_name = 'users'
    )`).Scan(&exists)
	if err != nil || !exists {
		return fmt.Errorf("required table users missing or query error: %w", err)
	}
	return nil
}

// isUniqueViolation сообщает, что ошибка вызвана нарушением
// уникального ограничения (например, повторным email).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

// notFoundAs заменяет sql.ErrNoRows на доменную ошибку.
func notFoundAs(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return models.ErrUserNotFound
	}
	return err
}
