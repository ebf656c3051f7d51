package timer

import "sync"

var (
	bindMu sync.Mutex
	bound  = Real()
)

// Current returns the provider bundle in effect.
func Current() Providers {
	bindMu.Lock()
	defer bindMu.Unlock()
	return bound
}

// Bind installs p as the current bundle. Nil members of p keep the provider
// that was bound before. The returned release restores the previous bundle;
// it is idempotent and must run even when the caller panics, so defer it.
func Bind(p Providers) (release func()) {
	bindMu.Lock()
	previous := bound
	bound = p.merge(previous)
	bindMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			bindMu.Lock()
			bound = previous
			bindMu.Unlock()
		})
	}
}
