package server

import "sync"

// locker hands out one mutex per project so that load, mutate and save of a
// ledger never interleave with another request for the same project.
// Entries are dropped once no request holds or waits for them.
type locker struct {
	mu    sync.Mutex
	locks map[string]*projectLock
}

type projectLock struct {
	sync.Mutex
	refs int
}

func newLocker() *locker {
	return &locker{locks: map[string]*projectLock{}}
}

// lock blocks until the project's mutex is held and returns its unlock func.
func (l *locker) lock(project string) func() {
	l.mu.Lock()
	m, ok := l.locks[project]
	if !ok {
		m = &projectLock{}
		l.locks[project] = m
	}
	m.refs++
	l.mu.Unlock()

	m.Lock()
	return func() {
		m.Unlock()
		l.mu.Lock()
		m.refs--
		if m.refs == 0 {
			delete(l.locks, project)
		}
		l.mu.Unlock()
	}
}

func (l *locker) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
