// Package receiptstore is the out-of-scope collaborator spec §1 carves
// receipt-file storage out to: the core only ever sees the URL this
// package hands back.
package receiptstore

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Local writes receipt uploads under a base directory and reports back a
// path the core stores verbatim as Expense.ReceiptURL.
type Local struct {
	dir     string
	baseURL string
}

// NewLocal creates a store rooted at dir, creating it if missing. baseURL
// is prefixed onto the stored filename to form the URL callers persist;
// an empty baseURL yields a path relative to the upload root.
func NewLocal(dir, baseURL string) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("receiptstore: create upload dir: %w", err)
	}
	return &Local{dir: dir, baseURL: baseURL}, nil
}

// Save streams r to a uniquely-named file under the store's directory,
// preserving originalName's extension, and returns the URL to persist.
func (l *Local) Save(ctx context.Context, originalName string, r io.Reader) (string, error) {
	name := uuid.NewString() + filepath.Ext(originalName)
	dest := filepath.Join(l.dir, name)

	f, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("receiptstore: create file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(dest)
		return "", fmt.Errorf("receiptstore: write file: %w", err)
	}

	if l.baseURL == "" {
		return name, nil
	}
	return l.baseURL + "/" + name, nil
}

// Delete removes a previously saved file, identified by the URL Save
// returned. Used to compensate a rolled-back submission (spec §4.C).
func (l *Local) Delete(ctx context.Context, url string) error {
	name := filepath.Base(url)
	if err := os.Remove(filepath.Join(l.dir, name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("receiptstore: delete file: %w", err)
	}
	return nil
}
