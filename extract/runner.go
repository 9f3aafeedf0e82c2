package extract

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// CommandRunner executes external commands, allowing tests to inject mocks.
type CommandRunner interface {
	Run(ctx context.Context, stdin []byte, name string, args ...string) ([]byte, error)
}

// execRunner is the default CommandRunner using os/exec.
type execRunner struct{}

// Run executes a command and returns its stdout.
func (execRunner) Run(ctx context.Context, stdin []byte, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	if stdin != nil {
		cmd.Stdin = bytes.NewReader(stdin)
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%s: %w: %s", name, err, msg)
		}
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return out, nil
}

// CheckAvailable verifies the OCR binaries named in cfg are on PATH.
func CheckAvailable(cfg *Config) error {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	cfg.Normalize()
	for _, bin := range []string{cfg.RasterizerPath, cfg.RecognizerPath} {
		if _, err := exec.LookPath(bin); err != nil {
			return fmt.Errorf("%w: %s", ErrToolNotFound, bin)
		}
	}
	return nil
}
