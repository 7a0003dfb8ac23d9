package file

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/sports-ticker/internal/domain/match"
)

// StateStore keeps every match state in one JSON document keyed by match id.
// Each Put rewrites the document through a temp file and rename, so a failed
// write never leaves a torn file and the previous content stays readable.
type StateStore struct {
	mu     sync.Mutex
	path   string
	states map[string]match.State
	loaded bool
}

func NewStateStore(path string) *StateStore {
	return &StateStore{path: strings.TrimSpace(path)}
}

func (s *StateStore) Path() string {
	return s.path
}

func (s *StateStore) Get(_ context.Context, matchID string) (match.State, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadLocked(); err != nil {
		return match.State{}, false, err
	}
	state, ok := s.states[strings.TrimSpace(matchID)]
	if !ok {
		return match.State{}, false, nil
	}
	return state.Clone(), true, nil
}

func (s *StateStore) Put(_ context.Context, state match.State) error {
	matchID := strings.TrimSpace(state.MatchID)
	if matchID == "" {
		return crerr.New("match id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadLocked(); err != nil {
		return err
	}

	previous, existed := s.states[matchID]
	s.states[matchID] = state.Clone()
	if err := s.writeLocked(); err != nil {
		if existed {
			s.states[matchID] = previous
		} else {
			delete(s.states, matchID)
		}
		return err
	}
	return nil
}

// List returns every stored state ordered by match id.
func (s *StateStore) List(_ context.Context) ([]match.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadLocked(); err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(s.states))
	for matchID := range s.states {
		ids = append(ids, matchID)
	}
	sort.Strings(ids)

	out := make([]match.State, 0, len(ids))
	for _, matchID := range ids {
		out = append(out, s.states[matchID].Clone())
	}
	return out, nil
}

func (s *StateStore) loadLocked() error {
	if s.loaded {
		return nil
	}
	if s.path == "" {
		return crerr.New("state file path is required")
	}

	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.states = make(map[string]match.State)
			s.loaded = true
			return nil
		}
		return crerr.Wrapf(err, "read state file %s", s.path)
	}

	states := make(map[string]match.State)
	if len(strings.TrimSpace(string(raw))) > 0 {
		if err := sonic.Unmarshal(raw, &states); err != nil {
			return crerr.Wrapf(err, "decode state file %s", s.path)
		}
	}
	for matchID, state := range states {
		if state.MatchID == "" {
			state.MatchID = matchID
		}
		states[matchID] = state.Clone()
	}

	s.states = states
	s.loaded = true
	return nil
}

func (s *StateStore) writeLocked() error {
	raw, err := encodeStates(s.states)
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return crerr.Wrapf(err, "create state dir %s", dir)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return crerr.Wrap(err, "create temp state file")
	}
	tmpName := tmp.Name()
	cleanup := func() {
		_ = os.Remove(tmpName)
	}

	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		cleanup()
		return crerr.Wrap(err, "write temp state file")
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return crerr.Wrap(err, "sync temp state file")
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return crerr.Wrap(err, "close temp state file")
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		cleanup()
		return crerr.Wrapf(err, "replace state file %s", s.path)
	}
	return nil
}

// encodeStates writes keys in sorted order so equal state maps produce
// identical bytes.
func encodeStates(states map[string]match.State) ([]byte, error) {
	ids := make([]string, 0, len(states))
	for matchID := range states {
		ids = append(ids, matchID)
	}
	sort.Strings(ids)

	var b strings.Builder
	b.WriteString("{\n")
	for i, matchID := range ids {
		key, err := sonic.Marshal(matchID)
		if err != nil {
			return nil, crerr.Wrapf(err, "encode match id %s", matchID)
		}
		value, err := sonic.ConfigStd.MarshalIndent(states[matchID], "  ", "  ")
		if err != nil {
			return nil, crerr.Wrapf(err, "encode state for match %s", matchID)
		}
		b.WriteString("  ")
		b.Write(key)
		b.WriteString(": ")
		b.Write(value)
		if i < len(ids)-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	b.WriteString("}\n")
	return []byte(b.String()), nil
}
