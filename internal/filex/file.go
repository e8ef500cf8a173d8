// Package filex holds small filesystem helpers for files that carry secrets.
package filex

import (
	"fmt"
	"os"
	"path/filepath"
)

// EnsurePrivateFile makes sure path exists and is readable by the owner
// only. Missing parent directories are created with mode 0700. The content
// of an existing file is left untouched.
func EnsurePrivateFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}

	f, err := os.OpenFile(path, os.O_RDONLY|os.O_CREATE, 0o600)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return err
	}

	if err := os.Chmod(path, 0o600); err != nil {
		return fmt.Errorf("chmod %s: %w", path, err)
	}
	return nil
}
