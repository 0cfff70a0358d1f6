// Package store persists the small amount of per-user state phenhance
// keeps between runs: the anonymous analytics identity.
package store

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// DataDir returns the path to the phenhance data directory.
// Uses XDG_DATA_HOME or defaults to ~/.local/share/phenhance.
func DataDir() (string, error) {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "phenhance"), nil
}

// StateFilePath returns the path to the state file.
func StateFilePath() (string, error) {
	dataDir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dataDir, "state.json"), nil
}

const (
	// CurrentSchemaVersion is the current version of the state schema.
	CurrentSchemaVersion = 1
)

// State is persisted to ~/.local/share/phenhance/state.json
type State struct {
	DistinctID  string `json:"distinct_id"`
	FirstSeenAt int64  `json:"first_seen_at"`
	LastRunAt   int64  `json:"last_run_at,omitempty"`

	SchemaVersion int `json:"schema_version"`
}

// ErrCorruptState is returned when the state file cannot be decoded.
var ErrCorruptState = errors.New("corrupt state file")

// stateFileMutex protects concurrent access to the state file.
var stateFileMutex sync.RWMutex

// NewState returns a state with a fresh distinct id.
func NewState() (*State, error) {
	now := time.Now()
	id, err := ulid.New(ulid.Timestamp(now), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to generate distinct id: %w", err)
	}
	return &State{
		DistinctID:    id.String(),
		FirstSeenAt:   now.Unix(),
		SchemaVersion: CurrentSchemaVersion,
	}, nil
}

// LoadState reads the state file. Returns os.ErrNotExist if it is missing.
func LoadState(path string) (*State, error) {
	stateFileMutex.RLock()
	defer stateFileMutex.RUnlock()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptState, err)
	}
	if state.DistinctID == "" {
		return nil, fmt.Errorf("%w: no distinct id", ErrCorruptState)
	}

	// Ensure schema version is set
	if state.SchemaVersion == 0 {
		state.SchemaVersion = CurrentSchemaVersion
	}

	return &state, nil
}

// SaveState writes the state file atomically.
func SaveState(path string, state *State) error {
	stateFileMutex.Lock()
	defer stateFileMutex.Unlock()

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	if state.SchemaVersion == 0 {
		state.SchemaVersion = CurrentSchemaVersion
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}

	// Write atomically via temp file
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return err
	}

	return os.Rename(tmpPath, path)
}

// LoadOrCreateState loads the state file, creating it with a new distinct id
// when it is missing or unreadable. The second return value reports creation.
func LoadOrCreateState(path string) (*State, bool, error) {
	state, err := LoadState(path)
	if err == nil {
		return state, false, nil
	}
	// A corrupted file gets a new identity rather than blocking startup
	if !errors.Is(err, os.ErrNotExist) && !errors.Is(err, ErrCorruptState) {
		return nil, false, err
	}

	state, err = NewState()
	if err != nil {
		return nil, false, err
	}
	if err := SaveState(path, state); err != nil {
		return nil, false, fmt.Errorf("failed to save state: %w", err)
	}
	return state, true, nil
}

// Touch records a run and saves the state.
func (s *State) Touch(path string) error {
	s.LastRunAt = time.Now().Unix()
	return SaveState(path, s)
}
