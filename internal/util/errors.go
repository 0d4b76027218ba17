package util

import "errors"

var (
	ErrUserNotFound       = errors.New("用户不存在")
	ErrEmailRegistered    = errors.New("该邮箱已被注册")
	ErrUsernameRegistered = errors.New("该用户名已被注册")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrSetNotFound        = errors.New("flashcard set not found")
	ErrCardNotFound       = errors.New("flashcard not found")
	ErrInvalidStatus      = errors.New("status must be correct, incorrect or skipped")
)
