package descent

import (
	"sync"
	"time"
)

// Task is a running periodic task.
type Task interface {
	// Stop cancels the task. It does not wait for an in-flight call to
	// return, so it is safe to call from inside the task's own function.
	Stop()
}

// Scheduler starts periodic tasks. Implementations must never run two calls
// of the same task's function concurrently.
type Scheduler interface {
	Every(interval time.Duration, fn func()) Task
}

// TickerScheduler runs each task on its own goroutine driven by a time.Ticker.
type TickerScheduler struct{}

// Every calls fn once per interval until the returned Task is stopped.
func (TickerScheduler) Every(interval time.Duration, fn func()) Task {
	t := &tickerTask{
		ticker: time.NewTicker(interval),
		stop:   make(chan struct{}),
	}
	go t.loop(fn)
	return t
}

type tickerTask struct {
	ticker *time.Ticker
	stop   chan struct{}
	once   sync.Once
}

func (t *tickerTask) loop(fn func()) {
	defer t.ticker.Stop()
	for {
		select {
		case <-t.stop:
			return
		case <-t.ticker.C:
			fn()
		}
	}
}

func (t *tickerTask) Stop() {
	t.once.Do(func() { close(t.stop) })
}
