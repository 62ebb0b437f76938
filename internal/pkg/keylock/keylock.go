package keylock

import "sync"

// KeyLock provides a mutex per key. The collaboration service locks the
// attachment id around "read last version number, insert version row" so two
// concurrent snapshots never claim the same number. Locks are never held
// across outbound network calls.
type KeyLock struct {
	mu    sync.Mutex
	locks map[int64]*entry
}

type entry struct {
	mu   sync.Mutex
	refs int
}

func New() *KeyLock {
	return &KeyLock{locks: make(map[int64]*entry)}
}

func (l *KeyLock) Lock(key int64) {
	l.mu.Lock()
	e, ok := l.locks[key]
	if !ok {
		e = &entry{}
		l.locks[key] = e
	}
	e.refs++
	l.mu.Unlock()
	e.mu.Lock()
}

func (l *KeyLock) Unlock(key int64) {
	l.mu.Lock()
	e, ok := l.locks[key]
	if !ok {
		l.mu.Unlock()
		return
	}
	e.refs--
	if e.refs == 0 {
		delete(l.locks, key)
	}
	l.mu.Unlock()
	e.mu.Unlock()
}
