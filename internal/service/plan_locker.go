package service

import "sync"

// PlanLocker serialises work on one student's plan while letting different
// students proceed in parallel. Entries are reference counted and dropped
// once no caller holds or waits on them.
type PlanLocker struct {
	mu    sync.Mutex
	locks map[string]*planLock
}

type planLock struct {
	mu   sync.Mutex
	refs int
}

// NewPlanLocker creates an empty locker.
func NewPlanLocker() *PlanLocker {
	return &PlanLocker{locks: make(map[string]*planLock)}
}

// Lock blocks until the student's plan is free and returns the unlock func.
func (l *PlanLocker) Lock(studentID string) func() {
	l.mu.Lock()
	entry, ok := l.locks[studentID]
	if !ok {
		entry = &planLock{}
		l.locks[studentID] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()
	return func() {
		entry.mu.Unlock()
		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.locks, studentID)
		}
		l.mu.Unlock()
	}
}

func (l *PlanLocker) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
