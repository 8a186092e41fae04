// Package result реализует неизменяемую обертку исхода операции: успех с
// необязательным значением или неудачу с единственным описанием ошибки.
// Ожидаемые ошибки передаются значениями, а не паникой.
package result

import (
	"github.com/goccy/go-reflect"
)

// Void - пустое значение для исходов, которые не несут данных (например, команды).
type Void struct{}

// Result представляет исход операции. Экземпляр всегда является либо успехом,
// либо неудачей и не изменяется после создания.
type Result[T any] struct {
	value   T
	present bool
	err     error
}

// Success создает успешный исход, содержащий значение.
func Success[T any](value T) Result[T] {
	return Result[T]{value: value, present: true}
}

// Empty создает успешный исход без значения.
func Empty[T any]() Result[T] {
	return Result[T]{}
}

// Done создает успешный исход команды.
func Done() Result[Void] {
	return Empty[Void]()
}

// Failure создает неудачный исход. Передача nil является ошибкой вызывающей
// стороны и приводит к панике.
func Failure[T any](err error) Result[T] {
	if err == nil {
		panic("result: Failure вызван с nil ошибкой")
	}
	return Result[T]{err: err}
}

// FromPair превращает привычную для Go пару (значение, ошибка) в Result.
func FromPair[T any](value T, err error) Result[T] {
	if err != nil {
		return Failure[T](err)
	}
	return Success(value)
}

// IsSuccess сообщает, является ли исход успешным.
func (r Result[T]) IsSuccess() bool {
	return r.err == nil
}

// IsFailure сообщает, является ли исход неудачным.
func (r Result[T]) IsFailure() bool {
	return r.err != nil
}

// Value возвращает значение и true, если исход успешен и значение присутствует.
// В остальных случаях возвращает нулевое значение и false. Никогда не паникует.
func (r Result[T]) Value() (T, bool) {
	if r.err != nil || !r.present {
		var zero T
		return zero, false
	}
	return r.value, true
}

// Err возвращает сохраненную ошибку или nil для успешного исхода.
func (r Result[T]) Err() error {
	return r.err
}

// Unwrap возвращает значение успешного исхода. Для неудачи паникует
// с сохраненной ошибкой.
func (r Result[T]) Unwrap() T {
	if r.err != nil {
		panic(r.err)
	}
	return r.value
}

// Unpack раскладывает исход обратно в пару (значение, ошибка).
func (r Result[T]) Unpack() (T, error) {
	return r.value, r.err
}

// Map применяет fn к значению успешного исхода, не меняя его тип.
// См. пакетную функцию Map для смены типа.
func (r Result[T]) Map(fn func(T) T) Result[T] {
	return Map(r, fn)
}

// Map применяет fn к значению успешного исхода и возвращает новый успех.
// Для неудачи fn не вызывается, а новый исход несет ту же самую ошибку.
// Отсутствующее значение передается в fn как нулевое.
func Map[T, U any](r Result[T], fn func(T) U) Result[U] {
	if r.err != nil {
		return Result[U]{err: r.err}
	}
	return Success(fn(r.value))
}

// FlatMap продолжает цепочку функцией, которая сама возвращает Result.
func FlatMap[T, U any](r Result[T], fn func(T) Result[U]) Result[U] {
	if r.err != nil {
		return Result[U]{err: r.err}
	}
	return fn(r.value)
}

// Erase стирает тип значения, сохраняя наличие значения и ошибку.
func Erase[T any](r Result[T]) Result[any] {
	if r.err != nil {
		return Result[any]{err: r.err}
	}
	if !r.present {
		return Result[any]{}
	}
	return Result[any]{value: r.value, present: true}
}

// Narrow восстанавливает тип значения после Erase. Если значение не приводится
// к T, возвращается неудача вида KindTypeMismatch.
func Narrow[T any](r Result[any]) Result[T] {
	if r.err != nil {
		return Result[T]{err: r.err}
	}
	if !r.present {
		return Result[T]{}
	}
	if r.value == nil {
		var zero T
		return Success(zero)
	}
	v, ok := r.value.(T)
	if !ok {
		return Failure[T](Errorf(KindTypeMismatch,
			"result type mismatch: expected %s, got %s", typeName[T](), reflect.TypeOf(r.value).String()))
	}
	return Success(v)
}

func typeName[T any]() string {
	return reflect.TypeOf((*T)(nil)).Elem().String()
}
