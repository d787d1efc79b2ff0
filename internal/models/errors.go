package models

import "errors"

// Доменные ошибки сервиса. Обработчики отображают их в HTTP-статусы.
var (
	// ErrUserNotFound возвращается, когда пользователь с указанным ID отсутствует.
	ErrUserNotFound = errors.New("user not found")
	// ErrEmailTaken возвращается при попытке занять уже зарегистрированный email.
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidCredentials возвращается при неверном email или пароле.
	// Единая ошибка для обоих случаев, чтобы не раскрывать существование учётной записи.
	ErrInvalidCredentials = errors.New("incorrect email or password")
	// ErrInvalidToken возвращается при невалидном, просроченном токене
	// или токене, ссылающемся на несуществующего пользователя.
	ErrInvalidToken = errors.New("could not validate credentials")
	// ErrInactiveUser возвращается для деактивированной учётной записи.
	ErrInactiveUser = errors.New("inactive user")
	// ErrAdminRequired возвращается, когда операция доступна только администратору.
	ErrAdminRequired = errors.New("admin privileges required")
	// ErrSelfDelete возвращается при попытке администратора удалить собственную учётную запись.
	ErrSelfDelete = errors.New("cannot delete yourself")
)
