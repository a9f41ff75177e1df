package reconcile

import "sync"

// employeeLocks serializes reconciliation per employee login. Two
// concurrent passes over overlapping entry sets for the same employee
// would double-count; unrelated employees proceed in parallel.
type employeeLocks struct {
	mu    sync.Mutex
	locks map[string]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func newEmployeeLocks() *employeeLocks {
	return &employeeLocks{locks: make(map[string]*lockEntry)}
}

// Lock acquires the lock for login and returns the matching unlock.
func (l *employeeLocks) Lock(login string) func() {
	l.mu.Lock()
	entry, found := l.locks[login]
	if !found {
		entry = &lockEntry{}
		l.locks[login] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()
	return func() {
		entry.mu.Unlock()
		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.locks, login)
		}
		l.mu.Unlock()
	}
}
