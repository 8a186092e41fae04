// Package message определяет общий заголовок запросов, проходящих через
// медиатор: дискриминатор вида, явный тег типа, идентификатор корреляции,
// время создания и метаданные для распространения контекста трассировки.
package message

import (
	"time"

	"github.com/google/uuid"
)

// Kind - дискриминатор, по которому медиатор отличает команды от запросов.
type Kind string

const (
	// KindCommand помечает намерение изменить состояние.
	KindCommand Kind = "command"
	// KindQuery помечает намерение прочитать данные без побочных эффектов.
	KindQuery Kind = "query"
)

// Message - минимальный контракт любого запроса, который принимает медиатор.
type Message interface {
	// Kind возвращает дискриминатор сообщения.
	Kind() Kind
	// Type возвращает тег типа, по которому ищется обработчик.
	Type() string
	// ID возвращает идентификатор корреляции.
	ID() uuid.UUID
	// CreatedAt возвращает момент создания сообщения.
	CreatedAt() time.Time
	// Metadata возвращает метаданные, используемые как носитель контекста трассировки.
	Metadata() map[string]string
}

// Metadatable определяет интерфейс для объектов, которые могут нести метаданные.
type Metadatable interface {
	Metadata() map[string]string
}

// Header реализует Message. Все поля задаются один раз в NewHeader и
// далее не изменяются; исключение - содержимое карты метаданных.
type Header struct {
	kind      Kind
	typ       string
	id        uuid.UUID
	createdAt time.Time
	metadata  map[string]string
}

// NewHeader создает заголовок с новым идентификатором и текущим временем.
func NewHeader(kind Kind, typeName string, opts ...Option) Header {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}

	h := Header{
		kind:      kind,
		typ:       typeName,
		id:        cfg.id,
		createdAt: cfg.createdAt,
		metadata:  make(map[string]string, len(cfg.metadata)),
	}
	if h.id == uuid.Nil {
		h.id = uuid.New()
	}
	if h.createdAt.IsZero() {
		h.createdAt = time.Now().UTC()
	}
	for k, v := range cfg.metadata {
		h.metadata[k] = v
	}

	return h
}

// Kind возвращает дискриминатор.
func (h Header) Kind() Kind { return h.kind }

// Type возвращает тег типа.
func (h Header) Type() string { return h.typ }

// ID возвращает идентификатор корреляции.
func (h Header) ID() uuid.UUID { return h.id }

// CreatedAt возвращает время создания.
func (h Header) CreatedAt() time.Time { return h.createdAt }

// Metadata возвращает метаданные сообщения.
func (h Header) Metadata() map[string]string { return h.metadata }
