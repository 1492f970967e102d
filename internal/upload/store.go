package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	// ErrInvalidFilename is returned when the sanitized original name is
	// empty, still points outside the upload directory, or would push the
	// stored name past the filesystem filename limit.
	ErrInvalidFilename = errors.New("invalid upload filename")
)

const (
	// tokenLength is the length of the random prefix (a canonical UUID).
	tokenLength = 36

	// maxStoredNameLength is the common filesystem limit for a single
	// filename. Stored names longer than this would fail at os.Create
	// with ENAMETOOLONG.
	maxStoredNameLength = 255
)

// filenameSanitizer strips the characters the stored name must never carry.
var filenameSanitizer = strings.NewReplacer(" ", "", ":", "", "\\", "")

// Store writes uploaded files into a single destination directory, naming
// each file with a random token prefix so concurrent uploads do not collide.
type Store struct {
	dir    string
	logger *zap.Logger
}

// NewStore creates a file store rooted at dir.
func NewStore(dir string, logger *zap.Logger) *Store {
	return &Store{dir: dir, logger: logger}
}

// Dir returns the destination directory.
func (s *Store) Dir() string {
	return s.dir
}

// SanitizeFilename removes spaces, colons and backslashes from the original
// filename and reduces it to its final path element. Names that collapse to
// nothing, traverse upward, or leave no room for the token prefix within the
// filename limit are rejected.
func SanitizeFilename(original string) (string, error) {
	cleaned := filenameSanitizer.Replace(original)
	cleaned = filepath.Base(cleaned)

	if cleaned == "" || cleaned == "." || cleaned == ".." || cleaned == string(filepath.Separator) {
		return "", ErrInvalidFilename
	}

	if tokenLength+len(cleaned) > maxStoredNameLength {
		return "", ErrInvalidFilename
	}

	return cleaned, nil
}

// Save streams the file into the upload directory and returns the stored
// filename: a freshly generated token concatenated with the sanitized
// original name. A failed downstream save leaves the file orphaned on disk;
// callers decide whether that matters.
func (s *Store) Save(ctx context.Context, file io.Reader, originalFilename string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	sanitized, err := SanitizeFilename(originalFilename)
	if err != nil {
		return "", err
	}

	storedName := uuid.New().String() + sanitized
	destination := filepath.Join(s.dir, storedName)

	out, err := os.Create(destination)
	if err != nil {
		return "", fmt.Errorf("failed to create upload file: %w", err)
	}

	if _, err := io.Copy(out, file); err != nil {
		out.Close()
		os.Remove(destination)
		return "", fmt.Errorf("failed to write upload file: %w", err)
	}

	if err := out.Close(); err != nil {
		return "", fmt.Errorf("failed to close upload file: %w", err)
	}

	s.logger.Debug("Stored uploaded file",
		zap.String("original", originalFilename),
		zap.String("stored", storedName),
	)

	return storedName, nil
}
