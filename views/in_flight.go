package views

import (
	"sync"

	"tripmate/utils/errors"
)

// InFlight rejects a second submission of the same action while the first is
// still pending. The zero value is ready to use.
type InFlight struct {
	mu      sync.Mutex
	pending map[string]struct{}
}

// Begin marks key as pending. It returns errors.ErrInFlight if it already
// was; otherwise the caller must call done when the request finishes.
func (f *InFlight) Begin(key string) (done func(), err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pending == nil {
		f.pending = make(map[string]struct{})
	}
	if _, busy := f.pending[key]; busy {
		return nil, errors.ErrInFlight
	}
	f.pending[key] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.pending, key)
			f.mu.Unlock()
		})
	}, nil
}

func (f *InFlight) Pending(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, busy := f.pending[key]
	return busy
}
