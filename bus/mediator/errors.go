package mediator

import "github.com/x-research-team/dtx-mediator/bus/result"

// Виды ошибок, которые порождает сам медиатор. Ошибки обработчиков
// передаются как есть и имеют собственные виды.
const (
	KindNoHandlerForCommand = "no_handler_for_command"
	KindNoHandlerForQuery   = "no_handler_for_query"
	KindInvalidMessageType  = "invalid_message_type"
)

const invalidMessageTypeMessage = "Invalid message type: neither Command nor Query"

// Sentinel-значения для сопоставления через errors.Is.
var (
	ErrNoHandlerForCommand = &result.Error{Kind: KindNoHandlerForCommand}
	ErrNoHandlerForQuery   = &result.Error{Kind: KindNoHandlerForQuery}
	ErrInvalidMessageType  = &result.Error{Kind: KindInvalidMessageType}
)

func errNoHandlerForCommand(typeName string) *result.Error {
	return result.Errorf(KindNoHandlerForCommand, "No handler for command: %s", typeName)
}

func errNoHandlerForQuery(typeName string) *result.Error {
	return result.Errorf(KindNoHandlerForQuery, "No handler for query: %s", typeName)
}

func errInvalidMessageType() *result.Error {
	return result.NewError(KindInvalidMessageType, invalidMessageTypeMessage)
}
