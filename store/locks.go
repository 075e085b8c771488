package store

import "sync"

// entityLocks hands out one mutex per table id and drops it once nobody
// holds or waits on it.
type entityLocks struct {
	mu    sync.Mutex
	locks map[uint]*entityLock
}

type entityLock struct {
	sync.Mutex
	refs int
}

func newEntityLocks() *entityLocks {
	return &entityLocks{locks: make(map[uint]*entityLock)}
}

func (l *entityLocks) lock(id uint) (unlock func()) {
	l.mu.Lock()
	el, ok := l.locks[id]
	if !ok {
		el = &entityLock{}
		l.locks[id] = el
	}
	el.refs++
	l.mu.Unlock()

	el.Lock()
	return func() {
		el.Unlock()
		l.mu.Lock()
		el.refs--
		if el.refs == 0 {
			delete(l.locks, id)
		}
		l.mu.Unlock()
	}
}
