package session

import (
	"sync"
	"time"
)

// Scheduler runs fn every d until the returned stop func is called.
// Stop must not block: engines call it while holding their lock, and the
// callback itself may be waiting on that lock.
type Scheduler interface {
	Every(d time.Duration, fn func()) (stop func())
}

// TickerScheduler runs each repeater on its own goroutine driven by a
// time.Ticker.
type TickerScheduler struct{}

// Every implements Scheduler.
func (TickerScheduler) Every(d time.Duration, fn func()) func() {
	t := time.NewTicker(d)
	done := make(chan struct{})

	go func() {
		defer t.Stop()
		for {
			select {
			case <-done:
				return
			case <-t.C:
				select {
				case <-done:
					return
				default:
				}
				fn()
			}
		}
	}()

	var once sync.Once
	return func() { once.Do(func() { close(done) }) }
}
