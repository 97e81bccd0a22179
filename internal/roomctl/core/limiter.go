package core

import "sync"

// Limiter caps the number of API calls a flow has in flight.
type Limiter struct {
	slots chan struct{}
	wg    sync.WaitGroup
}

func NewLimiter(maxConcurrent int) *Limiter {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &Limiter{slots: make(chan struct{}, maxConcurrent)}
}

// Go runs fn on its own goroutine once a slot is free.
func (l *Limiter) Go(fn func()) {
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		l.slots <- struct{}{}
		defer func() { <-l.slots }()
		fn()
	}()
}

func (l *Limiter) Wait() {
	l.wg.Wait()
}
