package state

import (
	"sync"

	"github.com/ortrace/ortrace-go/internal/repository"
	"github.com/ortrace/ortrace-go/internal/storage"
)

// AppState bundles everything handlers need once initialization finishes.
type AppState struct {
	Repos   *repository.Repos
	Storage storage.Backend
}

// Ready publishes the app state exactly once. The HTTP listener binds
// before initialization runs, so handlers check Get on every request and
// answer 503 until Set has been called. Once set it is never unset.
type Ready struct {
	mu    sync.RWMutex
	state *AppState
}

func NewReady() *Ready {
	return &Ready{}
}

// Get returns the state, or nil while initialization is still running.
func (r *Ready) Get() *AppState {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state
}

func (r *Ready) Set(s *AppState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state = s
}
