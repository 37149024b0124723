package session

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
)

const credentialsFile = "credentials.json"

// FileStore keeps the pair in <dir>/credentials.json, readable only by the owner.
// Writes go to a temp file in the same directory and are renamed into place.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

func (s *FileStore) Path() string {
	return filepath.Join(s.dir, credentialsFile)
}

func (s *FileStore) Save(ctx context.Context, p Pair) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("session: create dir: %w", err)
	}

	b, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("session: encode credentials: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, credentialsFile+".*.tmp")
	if err != nil {
		return fmt.Errorf("session: create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		// no-op after a successful rename
		_ = os.Remove(tmpName)
	}()

	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("session: chmod credentials: %w", err)
	}
	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("session: write credentials: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("session: sync credentials: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("session: close credentials: %w", err)
	}
	if err := os.Rename(tmpName, s.Path()); err != nil {
		return fmt.Errorf("session: replace credentials: %w", err)
	}
	return nil
}

func (s *FileStore) Load(ctx context.Context) (Pair, bool, error) {
	if err := ctx.Err(); err != nil {
		return Pair{}, false, err
	}
	b, err := os.ReadFile(s.Path())
	if errors.Is(err, fs.ErrNotExist) {
		return Pair{}, false, nil
	}
	if err != nil {
		return Pair{}, false, fmt.Errorf("session: read credentials: %w", err)
	}

	var p Pair
	if err := json.Unmarshal(b, &p); err != nil {
		return Pair{}, false, fmt.Errorf("session: decode credentials: %w", err)
	}
	if !p.complete() {
		return Pair{}, false, nil
	}
	return p, true, nil
}

func (s *FileStore) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := os.Remove(s.Path())
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("session: remove credentials: %w", err)
	}
	return nil
}
