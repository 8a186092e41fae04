package mediator

import (
	"sort"
	"sync"
)

// registry - потокобезопасное отображение тега типа на обработчик.
// Повторная регистрация под тем же именем молча заменяет прежний обработчик.
type registry[H any] struct {
	handlers map[string]H
	mu       sync.RWMutex
}

// newRegistry создает пустой реестр обработчиков.
func newRegistry[H any]() *registry[H] {
	return &registry[H]{
		handlers: make(map[string]H),
	}
}

// set вставляет или заменяет обработчик.
func (r *registry[H]) set(typeName string, handler H) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.handlers[typeName] = handler
}

// remove удаляет обработчик, если он был.
func (r *registry[H]) remove(typeName string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.handlers, typeName)
}

// get возвращает обработчик для тега типа.
func (r *registry[H]) get(typeName string) (H, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	h, ok := r.handlers[typeName]
	return h, ok
}

// names возвращает отсортированный список зарегистрированных тегов.
func (r *registry[H]) names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
