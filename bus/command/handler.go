package command

import (
	"context"

	"github.com/goccy/go-reflect"

	"github.com/x-research-team/dtx-mediator/bus/message"
	"github.com/x-research-team/dtx-mediator/bus/result"
)

// KindPayloadMismatch означает, что обработчику передана команда с другой формой полезной нагрузки.
const KindPayloadMismatch = "payload_type_mismatch"

// Handler - обработчик команды с обобщенной сигнатурой, в которой хранятся
// обработчики в реестре медиатора.
type Handler interface {
	Handle(ctx context.Context, cmd message.Message) result.Result[result.Void]
}

// HandlerFunc определяет строго типизированную функцию-обработчик для команды
// с полезной нагрузкой P.
type HandlerFunc[P any] func(ctx context.Context, cmd Command[P]) result.Result[result.Void]

// Handle реализует Handler. Сообщение другой формы не приводит к панике,
// а возвращается как неудача.
func (f HandlerFunc[P]) Handle(ctx context.Context, msg message.Message) result.Result[result.Void] {
	cmd, ok := msg.(Command[P])
	if !ok {
		var want Command[P]
		return result.Failure[result.Void](result.Errorf(KindPayloadMismatch,
			"command handler expects %s, got %s", reflect.TypeOf(want), reflect.TypeOf(msg)))
	}
	return f(ctx, cmd)
}
