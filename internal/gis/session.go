package gis

import (
	"os"
	"os/exec"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Session is the process-wide handle on the external geoprocessing toolkit.
// It is acquired once at startup and must be released exactly once on every
// exit path, including error paths, so native resources are never leaked.
type Session struct {
	binPath  string
	log      zerolog.Logger
	mu       sync.Mutex
	released bool
}

// NewSession acquires the engine session by resolving the toolkit binary.
// A bare command name is looked up on PATH; anything containing a path
// separator is checked on disk directly.
func NewSession(binary string, log zerolog.Logger) (*Session, error) {
	if binary == "" {
		return nil, errors.New("engine binary must be set")
	}

	resolved := binary
	if strings.ContainsRune(binary, os.PathSeparator) {
		if _, err := os.Stat(binary); err != nil {
			return nil, errors.Wrapf(err, "engine binary %s", binary)
		}
	} else {
		path, err := exec.LookPath(binary)
		if err != nil {
			return nil, errors.Wrapf(err, "engine binary %s", binary)
		}
		resolved = path
	}

	log.Info().Str("binary", resolved).Msg("engine session acquired")

	return &Session{
		binPath: resolved,
		log:     log,
	}, nil
}

// BinPath returns the resolved toolkit binary path
func (s *Session) BinPath() string {
	return s.binPath
}

// Active reports whether the session has not yet been released
func (s *Session) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.released
}

// Release tears down the engine session. It is safe to call more than once;
// only the first call has an effect.
func (s *Session) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.released {
		return
	}
	s.released = true
	s.log.Info().Msg("engine session released")
}
