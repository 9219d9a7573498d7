package files

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// tmpDirName is the hidden directory inside the upload area where Save
// stages content before the final rename.
const tmpDirName = ".tmp"

// UploadInfo describes one stored upload.
type UploadInfo struct {
	Name    string    `json:"name"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"modified_at"`
}

// Save stores r in the upload area under the base name of name. Directory
// components are discarded, so a caller cannot place files outside the
// upload area. The content lands in a uuid-named temp file first and is
// renamed into place, so concurrent saves of the same name cannot interleave.
func (s *Store) Save(name string, r io.Reader) (UploadInfo, error) {
	base, err := uploadName(name)
	if err != nil {
		return UploadInfo{}, err
	}
	if base == tmpDirName {
		return UploadInfo{}, fmt.Errorf("%w: reserved name %q", ErrInvalidPath, name)
	}

	// The temp dir can be swept away out of band; recreate it as needed.
	if err := os.MkdirAll(s.tmp, 0o755); err != nil {
		return UploadInfo{}, fmt.Errorf("create temp dir: %w", err)
	}
	tmp := filepath.Join(s.tmp, uuid.NewString())
	f, err := os.Create(tmp)
	if err != nil {
		return UploadInfo{}, fmt.Errorf("create temp file: %w", err)
	}
	size, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmp)
		return UploadInfo{}, fmt.Errorf("write %s: %w", base, err)
	}

	dst := filepath.Join(s.uploads, base)
	if err := os.Rename(tmp, dst); err != nil {
		os.Remove(tmp)
		return UploadInfo{}, fmt.Errorf("store %s: %w", base, err)
	}
	return UploadInfo{Name: base, Size: size, ModTime: time.Now()}, nil
}

// List returns the stored uploads, ordered by name.
func (s *Store) List() ([]UploadInfo, error) {
	entries, err := os.ReadDir(s.uploads)
	if err != nil {
		return nil, fmt.Errorf("list uploads: %w", err)
	}
	infos := make([]UploadInfo, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		fi, err := entry.Info()
		if err != nil {
			// Entry removed between list and stat.
			continue
		}
		infos = append(infos, UploadInfo{Name: entry.Name(), Size: fi.Size(), ModTime: fi.ModTime()})
	}
	return infos, nil
}

// Delete removes a stored upload by base name. Only regular files count as
// uploads: directories under the upload area, the temp dir included, report
// ErrNotFound just as List omits them.
func (s *Store) Delete(name string) error {
	base, err := uploadName(name)
	if err != nil {
		return err
	}
	path := filepath.Join(s.uploads, base)
	info, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("%w: %s", ErrNotFound, base)
	case errors.Is(err, fs.ErrPermission):
		return fmt.Errorf("%w: %s", ErrPermission, base)
	case err != nil:
		return fmt.Errorf("delete %s: %w", base, err)
	case info.IsDir():
		return fmt.Errorf("%w: %s", ErrNotFound, base)
	}
	if err := os.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNotFound, base)
		}
		return fmt.Errorf("delete %s: %w", base, err)
	}
	return nil
}

// uploadName reduces a caller-supplied file name to a usable base name.
func uploadName(name string) (string, error) {
	base := filepath.Base(filepath.Clean(filepath.FromSlash(name)))
	if base == "." || base == ".." || strings.ContainsRune(base, filepath.Separator) {
		return "", fmt.Errorf("%w: unusable file name %q", ErrInvalidPath, name)
	}
	return base, nil
}
