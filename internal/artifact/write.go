package artifact

import (
	"fmt"
	"os"
	"path/filepath"
)

// pendingWrite is a temp file in the target's directory. commit renames it
// over the target, making the replacement atomic on POSIX filesystems.
type pendingWrite struct {
	file *os.File
	path string
	done bool
}

func tempSibling(path string) (*pendingWrite, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	f, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	return &pendingWrite{file: f, path: path}, nil
}

func (p *pendingWrite) commit() error {
	if err := p.file.Chmod(0o644); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := p.file.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(p.file.Name(), p.path); err != nil {
		return fmt.Errorf("replace %s: %w", p.path, err)
	}
	p.done = true
	return nil
}

// cleanup removes the temp file if commit never ran. Safe to defer.
func (p *pendingWrite) cleanup() {
	if p.done {
		return
	}
	p.file.Close()
	os.Remove(p.file.Name())
}
