package upload

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// fallbackFilename is used when an upload's name sanitizes to nothing.
const fallbackFilename = "upload"

// Storage hands out isolated, per-upload directories under a root.
//
// Every upload gets its own slot, so concurrent uploads never see or remove
// each other's files.
type Storage struct {
	root string
}

// NewStorage creates the root directory if needed.
func NewStorage(root string) (*Storage, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create upload root %s: %w", root, err)
	}
	return &Storage{root: root}, nil
}

// Root returns the directory slots are created in.
func (s *Storage) Root() string {
	return s.root
}

// Slot is one upload's private directory.
type Slot struct {
	dir string
}

// NewSlot allocates a fresh, uniquely named slot.
func (s *Storage) NewSlot() (*Slot, error) {
	dir := filepath.Join(s.root, uuid.New().String())
	if err := os.Mkdir(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create upload slot: %w", err)
	}
	return &Slot{dir: dir}, nil
}

// Dir returns the slot's directory.
func (sl *Slot) Dir() string {
	return sl.dir
}

// Save writes r into the slot under a sanitized version of filename and
// returns the file's path.
func (sl *Slot) Save(filename string, r io.Reader) (string, error) {
	path := filepath.Join(sl.dir, sanitizeFilename(filename))

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", path, err)
	}
	return path, nil
}

// Remove deletes the slot and everything in it.
func (sl *Slot) Remove() error {
	return os.RemoveAll(sl.dir)
}

// sanitizeFilename makes an uploaded file name safe to use inside a slot.
func sanitizeFilename(name string) string {
	// Replace common unsafe characters
	replacer := strings.NewReplacer(
		"/", "-", "\\", "-", ":", "-", "*", "-",
		"?", "-", "\"", "-", "<", "-", ">", "-",
		"|", "-", "\n", " ", "\r", "", "\x00", "",
	)
	name = replacer.Replace(name)

	// Collapse multiple hyphens/spaces
	for strings.Contains(name, "  ") {
		name = strings.ReplaceAll(name, "  ", " ")
	}
	for strings.Contains(name, "--") {
		name = strings.ReplaceAll(name, "--", "-")
	}

	name = strings.TrimSpace(name)

	// Limit length, keeping the extension
	if len(name) > 100 {
		ext := filepath.Ext(name)
		if len(ext) > 10 {
			ext = ""
		}
		name = name[:100-len(ext)] + ext
	}

	if name == "" || name == "." || name == ".." {
		return fallbackFilename
	}
	return name
}
