// Package upload validates and persists incoming leaf images. Files are
// accepted by extension allow-list only, renamed to a sanitized,
// uuid-prefixed name so concurrent uploads of the same filename never
// collide, and written under a single upload directory.
package upload

import (
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/user/pestguard-go/apperror"
)

// allowedExtensions is the fixed allow-list of upload file extensions.
// Extension matching is the only content check performed.
var allowedExtensions = map[string]bool{
	"png":  true,
	"jpg":  true,
	"jpeg": true,
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

// Store writes validated uploads to a local directory.
type Store struct {
	dir string
}

// NewStore creates the upload directory if needed and returns a Store
// rooted there.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, apperror.NewInternalError("failed to create upload directory", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the directory uploads are stored in.
func (s *Store) Dir() string {
	return s.dir
}

// Allowed reports whether filename carries an allow-listed extension.
// A name without a dot has no extension and is never allowed.
func Allowed(filename string) bool {
	idx := strings.LastIndex(filename, ".")
	if idx < 0 {
		return false
	}
	return allowedExtensions[strings.ToLower(filename[idx+1:])]
}

// SanitizeFilename reduces an untrusted client filename to a safe base name:
// any path components are stripped and characters outside [A-Za-z0-9_.-]
// are replaced with underscores.
func SanitizeFilename(filename string) string {
	// Normalize Windows separators before taking the base name.
	filename = strings.ReplaceAll(filename, "\\", "/")
	filename = filepath.Base(filename)
	filename = unsafeChars.ReplaceAllString(filename, "_")
	filename = strings.Trim(filename, "._")
	return filename
}

// Save validates the upload and writes it to the store under a generated
// name. It returns the stored filename (not the full path). Rejections are
// validation errors with the exact user-facing messages "No file selected"
// and "Invalid file type".
func (s *Store) Save(file multipart.File, header *multipart.FileHeader) (string, error) {
	if header == nil || header.Filename == "" {
		return "", apperror.NewValidationError("No file selected", nil)
	}
	if !Allowed(header.Filename) {
		return "", apperror.NewValidationError("Invalid file type", nil)
	}

	name := SanitizeFilename(header.Filename)
	if name == "" {
		return "", apperror.NewValidationError("Invalid file type", nil)
	}
	stored := uuid.NewString() + "_" + name

	dst, err := os.OpenFile(filepath.Join(s.dir, stored), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", apperror.NewInternalError("failed to store upload", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		os.Remove(dst.Name())
		return "", apperror.NewInternalError("failed to store upload", err)
	}
	return stored, nil
}

// Path returns the absolute-or-relative on-disk path of a stored filename.
func (s *Store) Path(stored string) string {
	return filepath.Join(s.dir, stored)
}
