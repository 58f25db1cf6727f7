package service

import "sync"

// entityGuard serializes transitions per entity id. UI-level double-submit
// protection is not enough once the engine has multiple callers; a second
// transition on the same id while one is in flight must be rejected, never
// silently executed twice.
type entityGuard struct {
	mu       sync.Mutex
	inflight map[string]struct{}
}

func newEntityGuard() *entityGuard {
	return &entityGuard{inflight: make(map[string]struct{})}
}

// acquire claims the id for one transition. Returns false when another
// transition already holds it.
func (g *entityGuard) acquire(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, busy := g.inflight[key]; busy {
		return false
	}
	g.inflight[key] = struct{}{}
	return true
}

func (g *entityGuard) release(key string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.inflight, key)
}
