// Package models содержит доменную модель пользователя системы,
// включающую данные учётной записи, хэш пароля, флаги активности и роли,
// а также метки времени создания и обновления.
// Структуры используются в бизнес‑логике и при работе с хранилищем.
package models

import "time"

// User представляет зарегистрированного пользователя системы.
//
// PasswordHash никогда не сериализуется наружу.
type User struct {
	ID           int64     `json:"id"`         // Уникальный числовой идентификатор
	Email        string    `json:"email"`      // Электронная почта (уникальная)
	PasswordHash string    `json:"-"`          // Хэш пароля пользователя
	Name         string    `json:"name"`       // Отображаемое имя
	IsActive     bool      `json:"is_active"`  // Признак активной учётной записи
	IsAdmin      bool      `json:"is_admin"`   // Признак администратора
	CreatedAt    time.Time `json:"created_at"` // Дата создания
	UpdatedAt    time.Time `json:"updated_at"` // Дата последнего обновления
}

// UserUpdate описывает частичное обновление пользователя.
//
// nil означает «поле не меняется»; указатель на нулевое значение —
// явная установка: IsActive = false должно применяться,
// а не трактоваться как отсутствие поля.
type UserUpdate struct {
	Email        *string
	Name         *string
	PasswordHash *string
	IsActive     *bool
}

// IsEmpty сообщает, что ни одно поле не запрошено к изменению.
func (u UserUpdate) IsEmpty() bool {
	return u.Email == nil && u.Name == nil && u.PasswordHash == nil && u.IsActive == nil
}
