// Package state persists the last known input device and its volume so an
// unmute after restart can restore the volume a mute zeroed.
package state

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/adrg/xdg"
)

// State is the persisted snapshot.
type State struct {
	LastInputDevice uint32  `toml:"last_input_device"`
	LastVolume      float32 `toml:"last_volume"`
}

// Store reads and writes State as TOML.
type Store struct {
	path string
}

// NewStore creates a Store at $XDG_STATE_HOME/micmute/state.toml.
func NewStore() (*Store, error) {
	path, err := xdg.StateFile("micmute/state.toml")
	if err != nil {
		return nil, fmt.Errorf("state file path: %w", err)
	}
	return &Store{path: path}, nil
}

// NewStoreAt creates a Store at an explicit path.
func NewStoreAt(path string) *Store {
	return &Store{path: path}
}

// Path returns the backing file.
func (s *Store) Path() string {
	return s.path
}

// Load returns the saved state. ok is false when nothing was saved yet.
func (s *Store) Load() (st State, ok bool, err error) {
	_, err = toml.DecodeFile(s.path, &st)
	if errors.Is(err, os.ErrNotExist) {
		return State{}, false, nil
	}
	if err != nil {
		return State{}, false, fmt.Errorf("read state %s: %w", s.path, err)
	}
	return st, true, nil
}

// Save writes st atomically.
func (s *Store) Save(st State) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".micmute-state-*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	if err := toml.NewEncoder(tmp).Encode(st); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return os.Rename(tmpPath, s.path)
}
