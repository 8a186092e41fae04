package mediator

import (
	"context"

	"github.com/goccy/go-reflect"

	"github.com/x-research-team/dtx-mediator/bus/command"
	"github.com/x-research-team/dtx-mediator/bus/message"
	"github.com/x-research-team/dtx-mediator/bus/query"
	"github.com/x-research-team/dtx-mediator/bus/result"
)

// Provider определяет контракт звена цепочки диспетчеризации. Базовое звено
// выполняет поиск обработчика, остальные звенья - это middleware.
type Provider interface {
	// Dispatch передает сообщение следующему звену и возвращает его исход.
	Dispatch(ctx context.Context, msg message.Message) result.Result[any]
}

// localProvider - это локальная, внутрипроцессная реализация диспетчеризации
// по двум реестрам.
type localProvider struct {
	commands *registry[command.Handler]
	queries  *registry[query.Handler]
}

// newLocalProvider создает базовое звено поверх реестров.
func newLocalProvider(commands *registry[command.Handler], queries *registry[query.Handler]) *localProvider {
	return &localProvider{
		commands: commands,
		queries:  queries,
	}
}

// Dispatch различает сообщение по дискриминатору, находит обработчик по тегу
// типа и возвращает его исход без изменений. Сам метод никогда не паникует;
// паника внутри обработчика передается вызывающей стороне.
func (p *localProvider) Dispatch(ctx context.Context, msg message.Message) result.Result[any] {
	if isNil(msg) {
		return result.Failure[any](errInvalidMessageType())
	}

	switch msg.Kind() {
	case message.KindCommand:
		handler, ok := p.commands.get(msg.Type())
		if !ok {
			return result.Failure[any](errNoHandlerForCommand(msg.Type()))
		}
		return result.Erase(handler.Handle(ctx, msg))

	case message.KindQuery:
		handler, ok := p.queries.get(msg.Type())
		if !ok {
			return result.Failure[any](errNoHandlerForQuery(msg.Type()))
		}
		return handler.Handle(ctx, msg)

	default:
		return result.Failure[any](errInvalidMessageType())
	}
}

// isNil сообщает, является ли значение nil, в том числе nil-указателем,
// завернутым в интерфейс.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
