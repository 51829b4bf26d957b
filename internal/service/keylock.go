package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// keyedLock сериализует команды по конкретному гигу. Конкурирующие команды
// по разным гигам не блокируют друг друга.
type keyedLock struct {
	mu      sync.Mutex
	locks   map[uuid.UUID]chan struct{}
	timeout time.Duration
}

func newKeyedLock(timeout time.Duration) *keyedLock {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &keyedLock{
		locks:   make(map[uuid.UUID]chan struct{}),
		timeout: timeout,
	}
}

// acquire захватывает блокировку гига. Возвращает false, если блокировка
// не получена за отведённый таймаут или контекст отменён.
func (l *keyedLock) acquire(ctx context.Context, gigID uuid.UUID) bool {
	timer := time.NewTimer(l.timeout)
	defer timer.Stop()

	for {
		l.mu.Lock()
		holder, busy := l.locks[gigID]
		if !busy {
			l.locks[gigID] = make(chan struct{})
			l.mu.Unlock()
			return true
		}
		l.mu.Unlock()

		select {
		case <-holder:
		case <-timer.C:
			return false
		case <-ctx.Done():
			return false
		}
	}
}

// release освобождает блокировку гига.
func (l *keyedLock) release(gigID uuid.UUID) {
	l.mu.Lock()
	holder, ok := l.locks[gigID]
	if ok {
		delete(l.locks, gigID)
	}
	l.mu.Unlock()
	if ok {
		close(holder)
	}
}
