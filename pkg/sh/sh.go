package sh

import (
	"context"
	"io"
)

var shell Shell = shx{}

// Shell .
type Shell interface {
	Exec(ctx context.Context, name string, args ...string) error
	ExecInOut(ctx context.Context, env map[string]string, stdin io.Reader, name string, args ...string) ([]byte, []byte, error)
}

// ExecInOut .
func ExecInOut(ctx context.Context, env map[string]string, stdin io.Reader, name string, args ...string) ([]byte, []byte, error) {
	return shell.ExecInOut(ctx, env, stdin, name, args...)
}
