// Package filestore implements [contentcache.Store] on a directory.
//
// Keys are file names relative to the directory.
// Content for a key is read from the file of the same name,
// retrieved content is written next to it as "<stem>_output<ext>",
// and evicting a key removes its file.
package filestore

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strings"

	contentcache "github.com/djdv/go-contentcache"
)

type constError string

const (
	// ErrNotFound is returned when a key has no file.
	ErrNotFound = constError("not found")
	// ErrInvalidKey is returned for keys that are not
	// local, slash separated paths.
	ErrInvalidKey = constError("invalid key")
)

func (errStr constError) Error() string { return string(errStr) }

// OutputSuffix is inserted before the extension of emitted files.
const OutputSuffix = "_output"

// Store reads, writes, and removes files beneath a root directory.
// Paths may not escape the root.
type Store struct {
	root *os.Root
	perm fs.FileMode
}

// New opens dir as the root of a [Store].
// The Store must be closed when no longer needed.
func New(dir string) (*Store, error) {
	root, err := os.OpenRoot(dir)
	if err != nil {
		return nil, fmt.Errorf("open content root: %w", err)
	}
	const defaultPerm = 0o666
	return &Store{root: root, perm: defaultPerm}, nil
}

// Close releases the root directory.
func (s *Store) Close() error { return s.root.Close() }

// Read returns the content of the file named by key.
func (s *Store) Read(key string) ([]byte, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}
	content, err := s.root.ReadFile(key)
	if err != nil {
		return nil, wrapPathError("read", key, err)
	}
	return content, nil
}

// DeleteContent removes the file named by key.
func (s *Store) DeleteContent(key string) error {
	if err := checkKey(key); err != nil {
		return err
	}
	if err := s.root.Remove(key); err != nil {
		return wrapPathError("delete", key, err)
	}
	return nil
}

// EmitContent writes content to the output file for key,
// replacing any previous output.
func (s *Store) EmitContent(key string, content []byte) error {
	if err := checkKey(key); err != nil {
		return err
	}
	name := OutputName(key)
	if err := s.root.WriteFile(name, content, s.perm); err != nil {
		return wrapPathError("emit", name, err)
	}
	return nil
}

// OutputName returns the name EmitContent writes for key:
// the output suffix is inserted before the first '.' of the base name,
// or appended if there is none.
func OutputName(key string) string {
	var (
		dir, base = path.Split(key)
		stem, ext = base, ""
	)
	if i := strings.IndexByte(base, '.'); i > 0 {
		stem, ext = base[:i], base[i:]
	}
	return dir + stem + OutputSuffix + ext
}

func checkKey(key string) error {
	if !fs.ValidPath(key) || key == "." {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}

func wrapPathError(op, key string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%s %q: %w: %w", op, key, ErrNotFound, err)
	}
	return fmt.Errorf("%s %q: %w", op, key, err)
}

var _ contentcache.Store = (*Store)(nil)
