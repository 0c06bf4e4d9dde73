package session

import "sync"

// Locker serializes turns per conversation id while letting different
// conversations proceed in parallel. Locks live in process memory: with the
// redis store shared by several replicas, turns for one id are only
// serialized within a replica, so route a conversation to a single replica.
type Locker struct {
	mu    sync.Mutex
	locks map[string]*keyLock
}

type keyLock struct {
	mu   sync.Mutex
	refs int
}

func NewLocker() *Locker {
	return &Locker{locks: make(map[string]*keyLock)}
}

// Lock blocks until cid is free and returns the matching unlock func.
func (l *Locker) Lock(cid string) (unlock func()) {
	l.mu.Lock()
	k, ok := l.locks[cid]
	if !ok {
		k = &keyLock{}
		l.locks[cid] = k
	}
	k.refs++
	l.mu.Unlock()

	k.mu.Lock()
	return func() {
		k.mu.Unlock()
		l.mu.Lock()
		k.refs--
		if k.refs == 0 {
			delete(l.locks, cid)
		}
		l.mu.Unlock()
	}
}

func (l *Locker) held() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
