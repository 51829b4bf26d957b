package events

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/gig-backend/internal/goroutine"
)

// Handler обрабатывает одно доменное событие.
type Handler func(event string, payload any)

// Bus рассылает доменные события подписчикам. Доставка асинхронная:
// публикация никогда не блокирует команду жизненного цикла.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	all      []Handler
}

func NewBus() *Bus {
	return &Bus{handlers: make(map[string][]Handler)}
}

// Subscribe подписывает обработчик на конкретное событие.
func (b *Bus) Subscribe(event string, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[event] = append(b.handlers[event], h)
}

// SubscribeAll подписывает обработчик на все события.
func (b *Bus) SubscribeAll(h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.all = append(b.all, h)
}

// Publish доставляет событие всем подписчикам в отдельных горутинах.
func (b *Bus) Publish(event string, payload any) {
	b.mu.RLock()
	subscribers := make([]Handler, 0, len(b.handlers[event])+len(b.all))
	subscribers = append(subscribers, b.handlers[event]...)
	subscribers = append(subscribers, b.all...)
	b.mu.RUnlock()

	logrus.WithField("event", event).Debug("Публикация доменного события")

	for _, h := range subscribers {
		h := h
		goroutine.SafeGo(func() {
			h(event, payload)
		})
	}
}
