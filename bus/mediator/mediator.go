// Package mediator реализует внутрипроцессный медиатор CQRS: два реестра
// обработчиков (команд и запросов), ключом в которых служит явный тег типа,
// и единая точка входа Dispatch, возвращающая исход без паники.
//
// Регистрация выполняется на этапе инициализации приложения:
//
//	m := mediator.New(mediator.WithLogger(logger))
//	mediator.HandleCommand(m, "CreateUserCommand", createUser)
//	mediator.HandleQuery(m, "GetUserQuery", getUser)
//
// После этого Dispatch, Send и Ask можно вызывать из любого числа горутин.
package mediator

import (
	"context"
	"log/slog"

	"github.com/x-research-team/dtx-mediator/bus/command"
	"github.com/x-research-team/dtx-mediator/bus/message"
	"github.com/x-research-team/dtx-mediator/bus/query"
	"github.com/x-research-team/dtx-mediator/bus/result"
)

// Dispatcher определяет точку входа, через которую вызывающая сторона
// отправляет команды и запросы.
type Dispatcher interface {
	Dispatch(ctx context.Context, msg message.Message) result.Result[any]
}

// Mediator направляет каждое сообщение зарегистрированному обработчику.
// Нулевое значение не готово к использованию; экземпляр создается через New.
type Mediator struct {
	commands *registry[command.Handler]
	queries  *registry[query.Handler]
	provider Provider
	cfg      *config
}

// New создает новый, готовый к использованию экземпляр медиатора.
func New(opts ...Option) *Mediator {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}

	m := &Mediator{
		commands: newRegistry[command.Handler](),
		queries:  newRegistry[query.Handler](),
		cfg:      cfg,
	}

	allMiddlewares := []Middleware{
		NewLoggingMiddleware(cfg.logger),
		NewMetricsMiddleware(cfg.meterProvider),
		NewTracingMiddleware(cfg.tracerProvider, cfg.propagator),
	}
	allMiddlewares = append(allMiddlewares, cfg.middlewares...)
	m.provider = applyMiddlewares(newLocalProvider(m.commands, m.queries), allMiddlewares...)

	return m
}

// RegisterCommandHandler регистрирует обработчик команды под тегом typeName.
// Прежний обработчик с тем же тегом молча заменяется; nil (в том числе
// nil-указатель) удаляет регистрацию.
func (m *Mediator) RegisterCommandHandler(typeName string, handler command.Handler) {
	if isNil(handler) {
		m.commands.remove(typeName)
		return
	}
	m.logRegistration("регистрация обработчика команды", typeName, handler)
	m.commands.set(typeName, handler)
}

// RegisterQueryHandler регистрирует обработчик запроса под тегом typeName.
// Прежний обработчик с тем же тегом молча заменяется; nil (в том числе
// nil-указатель) удаляет регистрацию.
func (m *Mediator) RegisterQueryHandler(typeName string, handler query.Handler) {
	if isNil(handler) {
		m.queries.remove(typeName)
		return
	}
	m.logRegistration("регистрация обработчика запроса", typeName, handler)
	m.queries.set(typeName, handler)
}

// HasCommandHandler сообщает, зарегистрирован ли обработчик команды.
func (m *Mediator) HasCommandHandler(typeName string) bool {
	_, ok := m.commands.get(typeName)
	return ok
}

// HasQueryHandler сообщает, зарегистрирован ли обработчик запроса.
func (m *Mediator) HasQueryHandler(typeName string) bool {
	_, ok := m.queries.get(typeName)
	return ok
}

// CommandTypes возвращает отсортированные теги зарегистрированных команд.
func (m *Mediator) CommandTypes() []string {
	return m.commands.names()
}

// QueryTypes возвращает отсортированные теги зарегистрированных запросов.
func (m *Mediator) QueryTypes() []string {
	return m.queries.names()
}

// Dispatch находит и выполняет обработчик для сообщения.
//
// Отсутствие обработчика и сообщение неизвестного вида возвращаются как
// неудача; исход обработчика возвращается без изменений.
func (m *Mediator) Dispatch(ctx context.Context, msg message.Message) result.Result[any] {
	// nil-указатель в интерфейсе приводится к nil до того, как его увидят middleware.
	if isNil(msg) {
		msg = nil
	}
	return m.provider.Dispatch(ctx, msg)
}

func (m *Mediator) logRegistration(msg, typeName string, handler any) {
	if m.cfg.logger == nil {
		return
	}
	m.cfg.logger.Info(msg,
		slog.String("message_type", typeName),
		slog.String("handler_name", getHandlerName(handler)),
	)
}

// HandleCommand регистрирует строго типизированную функцию-обработчик команды.
func HandleCommand[P any](m *Mediator, typeName string, handler command.HandlerFunc[P]) {
	if handler == nil {
		m.RegisterCommandHandler(typeName, nil)
		return
	}
	m.RegisterCommandHandler(typeName, handler)
}

// HandleQuery регистрирует строго типизированную функцию-обработчик запроса.
func HandleQuery[P any, R any](m *Mediator, typeName string, handler query.HandlerFunc[P, R]) {
	if handler == nil {
		m.RegisterQueryHandler(typeName, nil)
		return
	}
	m.RegisterQueryHandler(typeName, handler)
}

// Send отправляет команду и возвращает ее исход без значения.
func Send[P any](ctx context.Context, d Dispatcher, cmd command.Command[P]) result.Result[result.Void] {
	return result.Narrow[result.Void](d.Dispatch(ctx, cmd))
}

// Ask отправляет запрос и возвращает исход с типом результата, выведенным из запроса.
func Ask[P any, R any](ctx context.Context, d Dispatcher, q query.Query[P, R]) result.Result[R] {
	return result.Narrow[R](d.Dispatch(ctx, q))
}
