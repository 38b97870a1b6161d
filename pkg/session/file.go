package session

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/matzehuels/flowboard/pkg/errors"
)

// stateExt is the suffix of checkpoint files.
const stateExt = ".json"

// FileStore keeps one JSON checkpoint per project in a directory. It is the
// CLI default; writes go through a temp file and a rename.
type FileStore struct {
	dir string

	// guards whole-file reads against concurrent renames in-process
	mu sync.RWMutex
}

// NewFileStore opens dir, creating it with owner-only permissions. An empty
// dir means flowboard/boards under the user config directory.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("locate config dir: %w", err)
		}
		dir = filepath.Join(base, "flowboard", "boards")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create board state dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Path returns the checkpoint directory.
func (s *FileStore) Path() string { return s.dir }

func (s *FileStore) file(project string) (string, error) {
	if err := errors.ValidateProjectName(project); err != nil {
		return "", err
	}
	return filepath.Join(s.dir, project+stateExt), nil
}

func (s *FileStore) Load(ctx context.Context, project string) (*State, error) {
	path, err := s.file(project)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	data, err := os.ReadFile(path)
	s.mu.RUnlock()
	switch {
	case os.IsNotExist(err):
		return nil, nil
	case err != nil:
		return nil, errors.Wrap(errors.ErrCodeStore, err, "read %s", filepath.Base(path))
	}
	return UnmarshalState(data)
}

func (s *FileStore) Save(ctx context.Context, project string, st *State) error {
	path, err := s.file(project)
	if err != nil {
		return err
	}
	data, err := MarshalState(st)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp, err := os.CreateTemp(s.dir, project+".*.tmp")
	if err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "save %s", project)
	}
	_, werr := tmp.Write(data)
	cerr := tmp.Close()
	if werr == nil {
		werr = cerr
	}
	if werr == nil {
		werr = os.Rename(tmp.Name(), path)
	}
	if werr != nil {
		os.Remove(tmp.Name())
		return errors.Wrap(errors.ErrCodeStore, werr, "save %s", project)
	}
	return nil
}

func (s *FileStore) Delete(ctx context.Context, project string) error {
	path, err := s.file(project)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(errors.ErrCodeStore, err, "delete %s", project)
	}
	return nil
}

// Projects lists the projects with a checkpoint, sorted by name.
func (s *FileStore) Projects() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "list %s", s.dir)
	}
	var names []string
	for _, e := range entries {
		if name, ok := strings.CutSuffix(e.Name(), stateExt); ok && !e.IsDir() {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names, nil
}

func (s *FileStore) Close() error { return nil }

var _ Store = (*FileStore)(nil)
