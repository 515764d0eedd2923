package usecase

import "sync"

// entityLocks serializes mutations per aggregate id within this
// process. Cross-process safety still relies on the repositories'
// status-guarded conditional updates; the in-process lock just keeps
// a single instance from racing itself on read-modify-write sequences.
type entityLocks struct {
	locks sync.Map // id -> *sync.Mutex
}

func newEntityLocks() *entityLocks {
	return &entityLocks{}
}

// acquire locks the mutex for id and returns its unlock function
func (l *entityLocks) acquire(id string) func() {
	mu, _ := l.locks.LoadOrStore(id, &sync.Mutex{})
	m := mu.(*sync.Mutex)
	m.Lock()
	return m.Unlock
}
