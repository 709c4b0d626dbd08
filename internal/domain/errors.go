package domain

import (
	"errors"
	"sort"
	"strings"
)

var (
	// ErrProductNotFound возвращается, если товар не найден в репозитории.
	ErrProductNotFound = errors.New("product not found")
	// ErrCategoryNotFound возвращается, если категория не найдена.
	ErrCategoryNotFound = errors.New("category not found")
	// ErrCartNotFound возвращается, если корзина не найдена.
	ErrCartNotFound = errors.New("cart not found")
	// ErrUserNotFound возвращается, если пользователь не найден.
	ErrUserNotFound = errors.New("user not found")
	// ErrVersionConflict сигнализирует, что запись изменили между чтением и сохранением.
	ErrVersionConflict = errors.New("version conflict")
	// ErrAccessDenied — один из предикатов доступа отклонил операцию.
	ErrAccessDenied = errors.New("access denied")
	// ErrCategoryInUse — категорию нельзя удалить, пока на неё ссылаются товары.
	ErrCategoryInUse = errors.New("category is referenced by products")
	// ErrInvalidReference — внешний ключ указывает на несуществующую запись.
	ErrInvalidReference = errors.New("referenced entity does not exist")
	// ErrUsernameTaken — имя пользователя уже занято.
	ErrUsernameTaken = errors.New("username already taken")
)

// NonFieldErrors — ключ для ошибок, не относящихся к конкретному полю.
const NonFieldErrors = "non_field_errors"

// ValidationError собирает замечания по полям входных данных.
type ValidationError struct {
	Fields map[string][]string
}

// NewValidationError создаёт пустой набор замечаний.
func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string][]string)}
}

// Add добавляет замечание к полю.
func (e *ValidationError) Add(field, message string) {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	e.Fields[field] = append(e.Fields[field], message)
}

// Has сообщает, есть ли уже замечания по полю.
func (e *ValidationError) Has(field string) bool {
	return len(e.Fields[field]) > 0
}

// Empty возвращает true, если замечаний нет.
func (e *ValidationError) Empty() bool {
	return e == nil || len(e.Fields) == 0
}

// OrNil возвращает nil для пустого набора, чтобы не получить typed-nil в error.
func (e *ValidationError) OrNil() error {
	if e.Empty() {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	if e.Empty() {
		return "validation failed"
	}
	fields := make([]string, 0, len(e.Fields))
	for field := range e.Fields {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, field+": "+strings.Join(e.Fields[field], " "))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// IsVersionConflict проверяет, является ли ошибка конфликтом версий.
func IsVersionConflict(err error) bool {
	return errors.Is(err, ErrVersionConflict)
}

// IsNotFound проверяет, что ошибка означает отсутствие любой сущности каталога.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrProductNotFound) ||
		errors.Is(err, ErrCategoryNotFound) ||
		errors.Is(err, ErrCartNotFound) ||
		errors.Is(err, ErrUserNotFound)
}

// AsValidation извлекает ValidationError из цепочки ошибок.
func AsValidation(err error) (*ValidationError, bool) {
	var verr *ValidationError
	if errors.As(err, &verr) && !verr.Empty() {
		return verr, true
	}
	return nil, false
}
