// SPDX-License-Identifier: Apache-2.0

package sheet

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/otiai10/copy"

	"github.com/oreflot/flotation-mcp/internal/logger"
	"github.com/oreflot/flotation-mcp/internal/record"
)

// Kind selects a reference workbook.
type Kind string

const (
	// KindTemplate has the header row only.
	KindTemplate Kind = "template"
	// KindExample has the header row and one real reading.
	KindExample Kind = "example"
)

// ParseKind validates a reference workbook name.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindTemplate, KindExample:
		return Kind(s), nil
	}
	return "", fmt.Errorf("unknown reference file %q: want %q or %q", s, KindTemplate, KindExample)
}

// FileName is the name the workbook is cached and delivered under.
func (k Kind) FileName() string {
	return string(k) + ".xlsx"
}

// Library hands out reference workbooks. Each one is built in DataDir on
// first request and copied from there into DownloadDir.
type Library struct {
	DataDir     string
	DownloadDir string
}

const lockRetry = 50 * time.Millisecond

// Fetch delivers the reference workbook of the given kind and returns the
// path of the delivered copy.
func (l Library) Fetch(ctx context.Context, kind Kind) (string, error) {
	if _, err := ParseKind(string(kind)); err != nil {
		return "", err
	}
	cached, err := l.materialize(ctx, kind)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(l.DownloadDir, 0o755); err != nil {
		return "", fmt.Errorf("%w: %w", ErrFileWriteFailure, err)
	}
	dest := filepath.Join(l.DownloadDir, kind.FileName())
	if err := copy.Copy(cached, dest); err != nil {
		return "", fmt.Errorf("%w: copy %s: %w", ErrFileWriteFailure, kind.FileName(), err)
	}
	return dest, nil
}

// CachedPath is where the workbook of kind lives once built.
func (l Library) CachedPath(kind Kind) string {
	return filepath.Join(l.DataDir, kind.FileName())
}

func (l Library) materialize(ctx context.Context, kind Kind) (string, error) {
	path := l.CachedPath(kind)
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}

	if err := os.MkdirAll(l.DataDir, 0o755); err != nil {
		return "", fmt.Errorf("%w: %w", ErrFileWriteFailure, err)
	}
	lock := flock.New(filepath.Join(l.DataDir, ".library.lock"))
	locked, err := lock.TryLockContext(ctx, lockRetry)
	if err != nil {
		return "", fmt.Errorf("%w: lock %s: %w", ErrFileWriteFailure, l.DataDir, err)
	}
	if !locked {
		return "", fmt.Errorf("%w: lock %s not acquired", ErrFileWriteFailure, l.DataDir)
	}
	defer lock.Unlock()

	// another process may have built it while we waited
	if _, err := os.Stat(path); err == nil {
		return path, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("%w: %w", ErrFileWriteFailure, err)
	}

	var values []string
	if kind == KindExample {
		entries, err := record.ToCanonicalOrder(record.Example())
		if err != nil {
			return "", err
		}
		values = record.Values(entries)
	}
	if err := Write(path, string(kind), record.Names(), values); err != nil {
		return "", err
	}
	logger.FromContext(ctx).Debug("reference file built", "kind", kind, "path", path)
	return path, nil
}
