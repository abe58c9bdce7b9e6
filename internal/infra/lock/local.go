package lock

import (
	"context"
	"sync"

	"bistro/internal/domain/reservation"
	"bistro/internal/usecase/shared"
)

// Local is an in-process per-date mutex. Entries are reference counted and dropped when the
// last holder or waiter leaves, so the map does not grow with the calendar.
type Local struct {
	mu      sync.Mutex
	entries map[reservation.Date]*entry
}

type entry struct {
	ch   chan struct{} // buffered(1): a token in the channel means the date is locked
	refs int
}

var _ shared.DateLocker = (*Local)(nil)

func NewLocal() *Local {
	return &Local{entries: map[reservation.Date]*entry{}}
}

// Lock blocks until the date is free or ctx is done.
func (l *Local) Lock(ctx context.Context, date reservation.Date) (func(), error) {
	e := l.acquire(date)

	select {
	case e.ch <- struct{}{}:
	case <-ctx.Done():
		l.release(date)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-e.ch
			l.release(date)
		})
	}, nil
}

func (l *Local) acquire(date reservation.Date) *entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[date]
	if !ok {
		e = &entry{ch: make(chan struct{}, 1)}
		l.entries[date] = e
	}
	e.refs++
	return e
}

func (l *Local) release(date reservation.Date) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e := l.entries[date]
	e.refs--
	if e.refs == 0 {
		delete(l.entries, date)
	}
}

// held reports the number of dates with holders or waiters.
func (l *Local) held() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
