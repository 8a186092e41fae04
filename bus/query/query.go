// Package query определяет запросы на чтение данных и контракт их обработчиков.
// Тип результата запроса фиксируется параметром R только на этапе компиляции.
package query

import (
	"time"

	"github.com/google/uuid"

	"github.com/x-research-team/dtx-mediator/bus/message"
)

// Query представляет собой запрос с параметрами P, возвращающий результат типа R.
// Дискриминатор всегда равен message.KindQuery.
type Query[P any, R any] struct {
	header message.Header
	params P
	// Маркер типа результата нулевого размера: нужен для вывода типов в
	// mediator.Ask и не имеет значения во время выполнения.
	_ [0]R
}

// New создает запрос с указанным тегом типа. Тип результата задается явно,
// тип параметров выводится:
//
//	q := query.New[User]("GetUserQuery", GetUserParams{UserID: "123"})
func New[R any, P any](typeName string, params P, opts ...message.Option) Query[P, R] {
	return Query[P, R]{
		header: message.NewHeader(message.KindQuery, typeName, opts...),
		params: params,
	}
}

// Kind возвращает message.KindQuery.
func (q Query[P, R]) Kind() message.Kind { return q.header.Kind() }

// Type возвращает тег типа запроса.
func (q Query[P, R]) Type() string { return q.header.Type() }

// ID возвращает идентификатор корреляции.
func (q Query[P, R]) ID() uuid.UUID { return q.header.ID() }

// CreatedAt возвращает время создания запроса.
func (q Query[P, R]) CreatedAt() time.Time { return q.header.CreatedAt() }

// Metadata возвращает метаданные запроса.
func (q Query[P, R]) Metadata() map[string]string { return q.header.Metadata() }

// Params возвращает параметры запроса.
func (q Query[P, R]) Params() P {
	return q.params
}
