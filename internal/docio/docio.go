// Package docio reads and writes snapshot documents on a filesystem,
// picking the encoding from the file extension.
package docio

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"

	"github.com/agentic-research/gatetree/api"
	"github.com/agentic-research/gatetree/internal/snapshot"
)

// ErrNotFound is returned when the document file does not exist.
var ErrNotFound = errors.New("document not found")

// Format returns the encoding used for path.
func Format(path string) (snapshot.Format, error) {
	return snapshot.ParseFormat(strings.ToLower(filepath.Ext(path)))
}

// Read returns the raw bytes at path together with their format.
func Read(fs billy.Filesystem, path string) ([]byte, snapshot.Format, error) {
	f, err := Format(path)
	if err != nil {
		return nil, "", err
	}
	data, err := util.ReadFile(fs, path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, "", fmt.Errorf("%s: %w", path, ErrNotFound)
	}
	if err != nil {
		return nil, "", fmt.Errorf("read %s: %w", path, err)
	}
	return data, f, nil
}

// Load reads and decodes the document at path.
func Load(fs billy.Filesystem, path string) (*api.Document, error) {
	data, f, err := Read(fs, path)
	if err != nil {
		return nil, err
	}
	doc, err := f.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Save encodes doc and writes it to path, creating parent directories.
func Save(fs billy.Filesystem, path string, doc *api.Document) error {
	f, err := Format(path)
	if err != nil {
		return err
	}
	data, err := f.Marshal(doc)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." && dir != "/" {
		if err := fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	if err := util.WriteFile(fs, path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
