package commands

import (
	"sort"
	"sync"
)

// AdmissionGate serializes submissions that share a song name or a
// submitter, so the admission checks and the insert for one of them finish
// before the next one starts counting. It covers a single process.
type AdmissionGate struct {
	mu    sync.Mutex
	locks map[string]*gateLock
}

type gateLock struct {
	mu   sync.Mutex
	refs int
}

func NewAdmissionGate() *AdmissionGate {
	return &AdmissionGate{locks: make(map[string]*gateLock)}
}

// Enter blocks until every key is held and returns the release func. Keys
// are taken in sorted order. A nil gate holds nothing.
func (g *AdmissionGate) Enter(keys ...string) func() {
	if g == nil {
		return func() {}
	}
	sorted := append([]string(nil), keys...)
	sort.Strings(sorted)

	held := make([]string, 0, len(sorted))
	for i, key := range sorted {
		if i > 0 && key == sorted[i-1] {
			continue
		}
		g.acquire(key).Lock()
		held = append(held, key)
	}
	return func() {
		for i := len(held) - 1; i >= 0; i-- {
			g.release(held[i])
		}
	}
}

func (g *AdmissionGate) acquire(key string) *sync.Mutex {
	g.mu.Lock()
	defer g.mu.Unlock()
	lock, ok := g.locks[key]
	if !ok {
		lock = &gateLock{}
		g.locks[key] = lock
	}
	lock.refs++
	return &lock.mu
}

func (g *AdmissionGate) release(key string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	lock := g.locks[key]
	lock.mu.Unlock()
	lock.refs--
	if lock.refs == 0 {
		delete(g.locks, key)
	}
}
