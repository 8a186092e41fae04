// Package command определяет команды - запросы на изменение состояния,
// которые не возвращают значения, - и контракт их обработчиков.
package command

import (
	"time"

	"github.com/google/uuid"

	"github.com/x-research-team/dtx-mediator/bus/message"
)

// Command представляет собой команду с полезной нагрузкой произвольной формы P.
// Дискриминатор всегда равен message.KindCommand, заголовок задается один раз в New.
type Command[P any] struct {
	header  message.Header
	payload P
}

// New создает команду с указанным тегом типа. Тег должен совпадать с именем,
// под которым зарегистрирован обработчик.
func New[P any](typeName string, payload P, opts ...message.Option) Command[P] {
	return Command[P]{
		header:  message.NewHeader(message.KindCommand, typeName, opts...),
		payload: payload,
	}
}

// Kind возвращает message.KindCommand.
func (c Command[P]) Kind() message.Kind { return c.header.Kind() }

// Type возвращает тег типа команды.
func (c Command[P]) Type() string { return c.header.Type() }

// ID возвращает идентификатор корреляции.
func (c Command[P]) ID() uuid.UUID { return c.header.ID() }

// CreatedAt возвращает время создания команды.
func (c Command[P]) CreatedAt() time.Time { return c.header.CreatedAt() }

// Metadata возвращает метаданные команды.
func (c Command[P]) Metadata() map[string]string { return c.header.Metadata() }

// Payload возвращает полезную нагрузку команды.
func (c Command[P]) Payload() P {
	return c.payload
}
