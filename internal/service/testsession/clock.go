package testsession

import (
	"sync"
	"time"
)

// Clock абстрагирует источник времени, чтобы сессию можно было
// детерминированно тестировать без реального ожидания секунд.
type Clock interface {
	Now() time.Time
	NewTicker(d time.Duration) Ticker
}

// Ticker абстрагирует периодические пробуждения таймера
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// realClock - реализация Clock поверх пакета time
type realClock struct{}

// NewRealClock возвращает Clock на основе системных часов
func NewRealClock() Clock {
	return realClock{}
}

func (realClock) Now() time.Time {
	return time.Now()
}

func (realClock) NewTicker(d time.Duration) Ticker {
	return &realTicker{ticker: time.NewTicker(d)}
}

type realTicker struct {
	ticker *time.Ticker
}

func (t *realTicker) C() <-chan time.Time {
	return t.ticker.C
}

func (t *realTicker) Stop() {
	t.ticker.Stop()
}

// ManualClock - управляемые вручную часы для тестов.
// Каждый вызов Advance доставляет по одному тику всем активным тикерам.
type ManualClock struct {
	mu      sync.Mutex
	now     time.Time
	tickers []*manualTicker
}

// NewManualClock создает ManualClock с заданным начальным временем
func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *ManualClock) NewTicker(d time.Duration) Ticker {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &manualTicker{ch: make(chan time.Time, 64)}
	c.tickers = append(c.tickers, t)
	return t
}

// Advance сдвигает время на d и доставляет по тику за каждую полную секунду
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	ticks := int(d / time.Second)
	c.now = c.now.Add(d)
	now := c.now
	tickers := make([]*manualTicker, len(c.tickers))
	copy(tickers, c.tickers)
	c.mu.Unlock()

	for i := 0; i < ticks; i++ {
		for _, t := range tickers {
			t.deliver(now)
		}
	}
}

type manualTicker struct {
	mu      sync.Mutex
	ch      chan time.Time
	stopped bool
}

func (t *manualTicker) C() <-chan time.Time {
	return t.ch
}

func (t *manualTicker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopped = true
}

func (t *manualTicker) deliver(now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped {
		return
	}
	select {
	case t.ch <- now:
	default:
		// Тикер никто не читает, тик теряется так же, как у time.Ticker
	}
}
