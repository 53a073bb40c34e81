package config

import "errors"

// Ошибки валидации конфигурации.
var (
	ErrUnknownStorageDriver = errors.New("unknown storage driver")
	ErrEmptyJWTSecret       = errors.New("jwt secret key must not be empty")
)
