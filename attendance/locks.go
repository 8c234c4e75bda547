package attendance

import "sync"

// keyedMutex serialises attendance transitions per employee while letting
// distinct employees proceed in parallel. Entries are reference-counted and
// removed once the last holder releases, so the map does not grow with the
// total employee population.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*lockEntry
}

type lockEntry struct {
	sync.Mutex
	refs int // guarded by keyedMutex.mu
}

// lock blocks until the per-key mutex is held and returns the release
// function. Callers must release on every exit path.
func (k *keyedMutex) lock(key string) func() {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*lockEntry)
	}
	e, ok := k.locks[key]
	if !ok {
		e = &lockEntry{}
		k.locks[key] = e
	}
	e.refs++
	k.mu.Unlock()

	e.Lock()
	return func() {
		e.Unlock()
		k.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
