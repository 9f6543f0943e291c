// Package license implements the activation gate: a single persisted flag set
// by entering the product key. It is independent of sessions and data.
package license

import (
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/BuzzLyutic/taskpad/internal/statefile"
)

const (
	DefaultKey = "DENTYUSS"
	MaxKeyLen  = 32
)

var (
	ErrEmptyKey   = errors.New("license key is empty")
	ErrInvalidKey = errors.New("invalid license key")
)

// Store persists the activation flag.
type Store interface {
	Load() (bool, error)
	Save(activated bool) error
}

// FileStore keeps the flag in a YAML file. Deactivating removes the file.
type FileStore struct {
	path string
}

type fileState struct {
	Activated bool `yaml:"activated"`
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Load() (bool, error) {
	var st fileState
	if _, err := statefile.Load(s.path, &st); err != nil {
		return false, err
	}
	return st.Activated, nil
}

func (s *FileStore) Save(activated bool) error {
	if !activated {
		return statefile.Remove(s.path)
	}
	return statefile.Save(s.path, fileState{Activated: true})
}

// Gate reads the flag once on construction; later changes go through
// Activate and Deactivate.
type Gate struct {
	key    string
	store  Store
	logger *zap.Logger

	mu        sync.RWMutex
	activated bool
}

func NewGate(key string, store Store, logger *zap.Logger) *Gate {
	if key == "" {
		key = DefaultKey
	}
	g := &Gate{key: normalize(key), store: store, logger: logger}

	activated, err := store.Load()
	if err != nil {
		logger.Warn("license state unreadable, treating as inactive", zap.Error(err))
		activated = false
	}
	g.activated = activated
	return g
}

func (g *Gate) Activated() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.activated
}

// Activate compares input against the key, ignoring surrounding spaces and case.
func (g *Gate) Activate(input string) error {
	in := normalize(input)
	switch {
	case in == "":
		return ErrEmptyKey
	case len(in) > MaxKeyLen || in != g.key:
		g.logger.Info("license activation rejected")
		return ErrInvalidKey
	}

	if err := g.store.Save(true); err != nil {
		return err
	}
	g.mu.Lock()
	g.activated = true
	g.mu.Unlock()
	g.logger.Info("license activated")
	return nil
}

func (g *Gate) Deactivate() error {
	if err := g.store.Save(false); err != nil {
		return err
	}
	g.mu.Lock()
	g.activated = false
	g.mu.Unlock()
	g.logger.Info("license deactivated")
	return nil
}

func normalize(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
