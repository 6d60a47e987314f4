// Package filex holds small filesystem helpers.
package filex

import (
	"fmt"
	"os"
)

// EnsureDir creates dir (and parents) if needed and returns it.
func EnsureDir(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return dir, nil
}
