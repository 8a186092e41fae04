package result

import "fmt"

// Стандартные виды ошибок, которые порождает сам пакет.
const (
	// KindTypeMismatch означает, что значение внутри Result[any] не приводится к ожидаемому типу.
	KindTypeMismatch = "result_type_mismatch"
	// KindUnknown используется для ошибок, пришедших без собственного вида.
	KindUnknown = "unknown"
)

// Error описывает причину неуспешного исхода: вид ошибки и человекочитаемое сообщение.
// Вид предназначен для программного ветвления, сообщение - для людей.
type Error struct {
	Kind    string
	Message string
	Cause   error
}

// NewError создает описание ошибки заданного вида.
func NewError(kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Errorf создает описание ошибки, форматируя сообщение.
func Errorf(kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WrapError оборачивает произвольную ошибку, сохраняя ее как причину.
func WrapError(kind string, cause error) *Error {
	if cause == nil {
		return &Error{Kind: kind, Message: kind}
	}
	return &Error{Kind: kind, Message: cause.Error(), Cause: cause}
}

// Error возвращает сообщение без вида, чтобы текст ошибки совпадал с тем,
// что передал ее автор.
func (e *Error) Error() string {
	return e.Message
}

// Unwrap возвращает исходную причину, если она есть.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is сопоставляет ошибки по виду. Цель без сообщения совпадает с любой ошибкой
// того же вида, что позволяет объявлять sentinel-значения.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || t == nil || t.Kind == "" {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.Message == "" || t.Message == e.Message
}
