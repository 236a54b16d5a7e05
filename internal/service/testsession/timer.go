package testsession

import (
	"sync"
	"time"
)

// Timer - посекундный отсчет для одной сессии. Источник тиков
// абстрагирован через Clock, поэтому в тестах время продвигается
// вручную. Таймер не умеет паузу: он останавливается только
// вместе с сессией.
type Timer struct {
	clock    Clock
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewTimer создает таймер поверх переданных часов
func NewTimer(clock Clock) *Timer {
	return &Timer{
		clock:  clock,
		stopCh: make(chan struct{}),
	}
}

// Start запускает горутину отсчета. Раз в секунду вызывается tick;
// когда tick возвращает false, отсчет завершается.
func (t *Timer) Start(tick func() bool) {
	go func() {
		ticker := t.clock.NewTicker(time.Second)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C():
				if !tick() {
					return
				}
			case <-t.stopCh:
				return
			}
		}
	}()
}

// Stop останавливает отсчет. Повторные вызовы безопасны.
func (t *Timer) Stop() {
	t.stopOnce.Do(func() {
		close(t.stopCh)
	})
}
