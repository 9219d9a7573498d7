package files

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Entry kinds reported by Aggregate.
const (
	KindFile      = "file"
	KindDirectory = "directory"
)

var (
	ErrInvalidPath = errors.New("invalid path")
	ErrNotFound    = errors.New("path not found")
	ErrPermission  = errors.New("permission denied")
	ErrRead        = errors.New("read failed")
)

// Record describes one filesystem entry selected for a query. Content is set
// only for regular files; directory entries carry an empty Content.
type Record struct {
	Name    string
	Path    string
	Kind    string
	Content string
}

// Store resolves caller-supplied paths against a fixed root directory and
// reads file content from beneath it. It also owns the upload area where
// callers can place new files.
type Store struct {
	root    string
	uploads string
	tmp     string
}

// NewStore anchors a store at root and ensures the upload area exists.
// uploadDir is taken relative to root unless absolute.
func NewStore(root, uploadDir string) (*Store, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root is not a directory: %s", abs)
	}

	uploads := uploadDir
	if !filepath.IsAbs(uploads) {
		uploads = filepath.Join(abs, uploads)
	}
	tmp := filepath.Join(uploads, tmpDirName)
	if err := os.MkdirAll(tmp, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Store{root: abs, uploads: uploads, tmp: tmp}, nil
}

// Root returns the absolute directory all query paths resolve under.
func (s *Store) Root() string { return s.root }

// UploadDir returns the absolute directory uploads are stored in.
func (s *Store) UploadDir() string { return s.uploads }

// Sanitize normalizes input and resolves it under the store root. Parent
// traversal segments left over after normalization are stripped, and rooted
// input is treated as root-relative, so the result never escapes the root.
// The path is not checked for existence.
func (s *Store) Sanitize(input string) (string, error) {
	if strings.TrimSpace(input) == "" {
		return "", fmt.Errorf("%w: empty path", ErrInvalidPath)
	}
	p := filepath.Clean(filepath.FromSlash(input))
	p = strings.TrimPrefix(p, filepath.VolumeName(p))

	// Clean pushes every surviving ".." to the front; drop them all.
	for strings.HasPrefix(p, ".."+string(filepath.Separator)) {
		p = p[3:]
	}
	if p == ".." {
		p = "."
	}
	p = strings.TrimPrefix(p, string(filepath.Separator))
	return filepath.Join(s.root, p), nil
}

// Aggregate reads the entry at path, which should have come from Sanitize.
// A directory yields one Record per immediate child, with Content set for
// regular files only; a file yields a single Record with Content set. File
// content is read in full; bounding the total is the caller's concern.
func (s *Store) Aggregate(ctx context.Context, path string) ([]Record, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, classify("stat", path, err)
	}
	if info.IsDir() {
		return s.aggregateDir(ctx, path)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, classify("read", path, err)
	}
	return []Record{{
		Name:    info.Name(),
		Path:    path,
		Kind:    KindFile,
		Content: string(content),
	}}, nil
}

func (s *Store) aggregateDir(ctx context.Context, dir string) ([]Record, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, classify("list", dir, err)
	}
	records := make([]Record, 0, len(entries))
	for _, entry := range entries {
		// Reads can pile up in a large directory; stop once the caller
		// has gone away.
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec := Record{
			Name: entry.Name(),
			Path: filepath.Join(dir, entry.Name()),
			Kind: KindFile,
		}
		if entry.IsDir() {
			rec.Kind = KindDirectory
			records = append(records, rec)
			continue
		}
		content, err := os.ReadFile(rec.Path)
		if err != nil {
			return nil, classify("read", rec.Path, err)
		}
		rec.Content = string(content)
		records = append(records, rec)
	}
	return records, nil
}

// classify maps a filesystem failure onto the store's error taxonomy so
// callers can pick a response status with errors.Is.
func classify(op, path string, err error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("%w: %s", ErrNotFound, path)
	case errors.Is(err, fs.ErrPermission):
		return fmt.Errorf("%w: %s", ErrPermission, path)
	default:
		return fmt.Errorf("%w: %s %s: %v", ErrRead, op, path, err)
	}
}
