package ovs

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/projecteru2/ovsmap/pkg/terrors"
)

// Snapshot reads pre-captured tool output from a directory, one file
// per (kind, scope): `<kind>.txt` or `<kind>@<scope>.txt`.
type Snapshot struct {
	Dir string
}

// NewSnapshot .
func NewSnapshot(dir string) *Snapshot {
	return &Snapshot{Dir: dir}
}

// Query .
func (s *Snapshot) Query(_ context.Context, kind Kind, scope string) (string, error) {
	buf, err := os.ReadFile(filepath.Join(s.Dir, Filename(kind, scope)))
	if err != nil {
		return "", errors.Wrapf(terrors.ErrQueryFailed, "%s %s: %s", kind, scope, err)
	}
	return string(buf), nil
}

// Filename maps a (kind, scope) pair onto its snapshot file name.
func Filename(kind Kind, scope string) string {
	name := string(kind)
	if len(scope) > 0 {
		name += "@" + strings.ReplaceAll(scope, "/", "_")
	}
	return name + ".txt"
}
