package domain

import (
	"errors"
	"fmt"
)

// Базовые ошибки клиента
var (
	// Категории, с которыми сравнивают через errors.Is
	ErrAuth       = errors.New("authentication failed")
	ErrNetwork    = errors.New("network error")
	ErrGeneration = errors.New("story generation failed")
	ErrValidation = errors.New("validation failed")

	ErrNotAuthenticated  = errors.New("not authenticated")
	ErrStoryNotFound     = errors.New("story not found")
	ErrMalformedResponse = errors.New("malformed response")
	ErrUnknownFormat     = errors.New("unknown export format")
	ErrNotEditing        = errors.New("no story is being edited")
)

// AuthError - неверные учетные данные или отклоненный токен.
type AuthError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("auth error (status %d): %s: %v", e.StatusCode, e.Message, e.Err)
	}
	return fmt.Sprintf("auth error (status %d): %s", e.StatusCode, e.Message)
}

func (e *AuthError) Unwrap() error        { return e.Err }
func (e *AuthError) Is(target error) bool { return target == ErrAuth }

// NetworkError - транспортная ошибка, ответа нет.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error during %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error        { return e.Err }
func (e *NetworkError) Is(target error) bool { return target == ErrNetwork }

// GenerationError - сервис не смог выдать текст.
type GenerationError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *GenerationError) Error() string {
	msg := "generation error"
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *GenerationError) Unwrap() error        { return e.Err }
func (e *GenerationError) Is(target error) bool { return target == ErrGeneration }

// ValidationError - пустое или недопустимое обязательное поле.
type ValidationError struct {
	Field   string
	Message string
}

// NewValidationError создает ошибку валидации поля.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }
