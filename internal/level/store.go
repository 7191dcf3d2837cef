package level

import (
	"fmt"
	"sync"

	"github.com/koreawook/ClockApp/internal/state"
)

// State is the persisted rest level, stored in rest_level_data.json.
type State struct {
	Level        int   `json:"level"`
	TotalSeconds int64 `json:"total_seconds"`
}

// NewState derives the level from total.
func NewState(total int64) State {
	if total < 0 {
		total = 0
	}
	lvl, _ := Calculate(total)
	return State{Level: lvl, TotalSeconds: total}
}

// Store reads and writes the level file. The stored level is never
// trusted: it is re-derived from total_seconds on every load.
type Store struct {
	mu   sync.Mutex
	path string
}

// NewStore creates a store for path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the level file path.
func (s *Store) Path() string {
	return s.path
}

// Load returns the stored state, or level 1 with zero seconds when the file
// is missing or unusable.
func (s *Store) Load() (State, state.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *Store) load() (State, state.Result) {
	var raw State
	res := state.ReadJSON(s.path, &raw)
	if res.Outcome != state.Loaded {
		return NewState(0), res
	}
	if raw.TotalSeconds < 0 {
		return NewState(0), state.CorruptResult(fmt.Errorf("negative total_seconds %d", raw.TotalSeconds))
	}
	return NewState(raw.TotalSeconds), res
}

// Save writes st with its level re-derived from TotalSeconds.
func (s *Store) Save(st State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return state.WriteJSON(s.path, NewState(st.TotalSeconds), "  ")
}

// Add credits seconds of rest and returns the states before and after.
func (s *Store) Add(seconds int64) (before, after State, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	before, _ = s.load()
	if seconds <= 0 {
		return before, before, nil
	}
	after = NewState(before.TotalSeconds + seconds)
	if err := state.WriteJSON(s.path, after, "  "); err != nil {
		return before, before, err
	}
	return before, after, nil
}
