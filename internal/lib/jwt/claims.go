// Package jwt реализует выпуск и разбор JWT токенов доступа.
//
// Токен не хранится на сервере: идентификатор пользователя и срок действия
// зашиты в подписанный payload, владение токеном до истечения срока
// достаточно для аутентификации.
package jwt

import (
	"strconv"

	"github.com/golang-jwt/jwt/v5"
)

// Claims описывает payload токена доступа.
//
// Идентификатор пользователя хранится в стандартном поле Subject
// в десятичной записи; срок действия — в ExpiresAt.
type Claims struct {
	jwt.RegisteredClaims
}

// UserID извлекает идентификатор пользователя из поля Subject.
// Возвращает ошибку, если поле пустое или не является числом.
func (c *Claims) UserID() (int64, error) {
	return strconv.ParseInt(c.Subject, 10, 64)
}
