package query

import (
	"context"

	"github.com/goccy/go-reflect"

	"github.com/x-research-team/dtx-mediator/bus/message"
	"github.com/x-research-team/dtx-mediator/bus/result"
)

// KindPayloadMismatch означает, что обработчику передан запрос с другими параметрами или типом результата.
const KindPayloadMismatch = "payload_type_mismatch"

// Handler - обработчик запроса с обобщенной сигнатурой, в которой хранятся
// обработчики в реестре медиатора.
type Handler interface {
	Handle(ctx context.Context, q message.Message) result.Result[any]
}

// HandlerFunc определяет строго типизированную функцию-обработчик для запроса Q,
// которая возвращает результат типа R.
type HandlerFunc[P any, R any] func(ctx context.Context, q Query[P, R]) result.Result[R]

// Handle реализует Handler. Ошибка исхода передается дальше без изменений.
func (f HandlerFunc[P, R]) Handle(ctx context.Context, msg message.Message) result.Result[any] {
	q, ok := msg.(Query[P, R])
	if !ok {
		var want Query[P, R]
		return result.Failure[any](result.Errorf(KindPayloadMismatch,
			"query handler expects %s, got %s", reflect.TypeOf(want), reflect.TypeOf(msg)))
	}
	return result.Erase(f(ctx, q))
}
