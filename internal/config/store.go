package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rmaran/assetflow/internal/logger"
)

var log = logger.ForComponent("config")

// Store reads and writes the automation policy document.
type Store struct {
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

func (s *Store) Path() string {
	return s.path
}

// DefaultPath returns the per-user policy location (~/.assetflow/config.json).
func DefaultPath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".assetflow", "config.json")
}

// StateDir returns the directory holding the policy, history database and
// control socket.
func StateDir() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".assetflow")
}

func EnsureStateDir() error {
	return os.MkdirAll(StateDir(), 0700)
}

// Load reads the policy document. A missing or unparseable file is replaced
// with the default policy, which is persisted immediately so the next load
// sees a valid document. Keys absent from the file keep their defaults
// individually; the document is never rejected wholesale.
func (s *Store) Load() (*Policy, error) {
	policy := DefaultPolicy()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Info("no policy found, writing defaults", "path", s.path)
		} else {
			log.Error("policy unreadable, writing defaults", "path", s.path, "error", err)
		}
		if saveErr := s.Save(policy); saveErr != nil {
			return policy, saveErr
		}
		return policy, nil
	}

	// Collections present in the document replace the defaults outright;
	// only absent keys fall back. Scalars keep defaults per key by
	// decoding over the pre-filled struct.
	policy.ImportRules = nil
	policy.WatchFolders = nil

	if err := json.Unmarshal(data, policy); err != nil {
		log.Error("policy malformed, writing defaults", "path", s.path, "error", err)
		fresh := DefaultPolicy()
		if saveErr := s.Save(fresh); saveErr != nil {
			return fresh, saveErr
		}
		return fresh, nil
	}

	if policy.ImportRules == nil {
		policy.ImportRules = DefaultPolicy().ImportRules
	}
	if policy.WatchFolders == nil {
		policy.WatchFolders = []WatchEntry{}
	}

	return policy, nil
}

// Save persists the full policy atomically: marshal to a temp file in the
// same directory, then rename over the target. A concurrent Load never sees
// a partial write.
func (s *Store) Save(policy *Policy) error {
	data, err := json.MarshalIndent(policy, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal policy: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".config-*.json")
	if err != nil {
		return fmt.Errorf("create temp policy: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write policy: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close policy: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replace policy: %w", err)
	}

	return nil
}
