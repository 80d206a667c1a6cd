package syncctl

import (
	"sync"

	"activities-cli/internal/dispatch"
)

// Key identifies one logical mutation.
type Key struct {
	Op          dispatch.Op
	Activity    string
	Participant string
}

// Guard rejects a mutation while an identical one is still in flight. It is
// safe for concurrent use.
type Guard struct {
	mu       sync.Mutex
	inflight map[Key]struct{}
}

// Acquire returns ok=false if k is already in flight. Otherwise the caller
// must call release when the request completes.
func (g *Guard) Acquire(k Key) (release func(), ok bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.inflight == nil {
		g.inflight = map[Key]struct{}{}
	}
	if _, busy := g.inflight[k]; busy {
		return func() {}, false
	}
	g.inflight[k] = struct{}{}
	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.inflight, k)
			g.mu.Unlock()
		})
	}, true
}

func (g *Guard) InFlight() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.inflight)
}
