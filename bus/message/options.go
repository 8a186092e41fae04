package message

import (
	"time"

	"github.com/google/uuid"
)

// config содержит неэкспортируемые параметры построения заголовка.
type config struct {
	id        uuid.UUID
	createdAt time.Time
	metadata  map[string]string
}

// Option определяет тип для функциональных опций, которые изменяют заголовок при создании.
type Option func(*config)

// WithID задает идентификатор корреляции вместо случайного.
func WithID(id uuid.UUID) Option {
	return func(c *config) {
		c.id = id
	}
}

// WithCreatedAt задает время создания вместо текущего.
func WithCreatedAt(t time.Time) Option {
	return func(c *config) {
		c.createdAt = t
	}
}

// WithMetadata добавляет метаданные. Карта копируется.
func WithMetadata(md map[string]string) Option {
	return func(c *config) {
		if c.metadata == nil {
			c.metadata = make(map[string]string, len(md))
		}
		for k, v := range md {
			c.metadata[k] = v
		}
	}
}
