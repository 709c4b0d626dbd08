// Package access содержит предикаты доступа к операциям каталога.
//
// Предикат получает вызывающего, вид операции и целевую сущность и отвечает
// allow/deny. Evaluate проверяет предикаты по порядку и останавливается на
// первом отказе.
package access

import (
	"context"
	"fmt"
	"net/http"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// Operation описывает вид действия над ресурсом.
type Operation string

const (
	OpRead   Operation = "read"
	OpCreate Operation = "create"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
)

// ReadOnly сообщает, что операция не изменяет состояние.
func (o Operation) ReadOnly() bool {
	return o == OpRead
}

// OperationFromMethod сопоставляет HTTP-метод с операцией.
func OperationFromMethod(method string) Operation {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return OpRead
	case http.MethodPost:
		return OpCreate
	case http.MethodDelete:
		return OpDelete
	default:
		return OpUpdate
	}
}

// Caller — идентичность вызывающего. Нулевое значение означает анонимного клиента.
type Caller struct {
	ID       int64
	Username string
	IsVendor bool
	IsStaff  bool
}

// Anonymous возвращает неаутентифицированного вызывающего.
func Anonymous() Caller {
	return Caller{}
}

// FromUser строит Caller по учётной записи.
func FromUser(u domain.User) Caller {
	return Caller{ID: u.ID, Username: u.Username, IsVendor: u.IsVendor, IsStaff: u.IsStaff}
}

// Authenticated сообщает, что вызывающий сопоставлен с пользователем.
func (c Caller) Authenticated() bool {
	return c.ID != 0
}

// Owned реализуют сущности, у которых есть владелец.
type Owned interface {
	OwnerID() int64
}

// Predicate проверяет доступ caller к целевой сущности.
type Predicate[T any] func(caller Caller, op Operation, target T) bool

// Rule связывает предикат с именем для логов и сообщений об отказе.
type Rule[T any] struct {
	Name  string
	Check Predicate[T]
}

// DeniedError сообщает имя правила, отклонившего операцию.
type DeniedError struct {
	Rule string
}

func (e *DeniedError) Error() string {
	return fmt.Sprintf("%s: %s", domain.ErrAccessDenied, e.Rule)
}

func (e *DeniedError) Unwrap() error {
	return domain.ErrAccessDenied
}

// Evaluate выполняет правила по порядку. Первый отказ прерывает проверку
// и возвращает *DeniedError, оборачивающую domain.ErrAccessDenied.
func Evaluate[T any](caller Caller, op Operation, target T, rules ...Rule[T]) error {
	for _, rule := range rules {
		if !rule.Check(caller, op, target) {
			return &DeniedError{Rule: rule.Name}
		}
	}
	return nil
}

// IsVendor пропускает только аутентифицированных продавцов.
func IsVendor[T any](caller Caller, _ Operation, _ T) bool {
	return caller.Authenticated() && caller.IsVendor
}

// IsOwnerOrReadOnly пропускает операции чтения и изменения собственных сущностей.
func IsOwnerOrReadOnly[T Owned](caller Caller, op Operation, target T) bool {
	if op.ReadOnly() {
		return true
	}
	return caller.Authenticated() && target.OwnerID() == caller.ID
}

type callerKey struct{}

// WithCaller кладёт вызывающего в контекст запроса.
func WithCaller(ctx context.Context, caller Caller) context.Context {
	return context.WithValue(ctx, callerKey{}, caller)
}

// CallerFrom достаёт вызывающего из контекста; при отсутствии возвращает анонимного.
func CallerFrom(ctx context.Context) Caller {
	if caller, ok := ctx.Value(callerKey{}).(Caller); ok {
		return caller
	}
	return Anonymous()
}
