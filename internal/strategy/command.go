package strategy

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"os/exec"
	"sort"

	"github.com/vk/monogridgo/internal/ctxlog"
)

// Command is the real-work strategy: it runs a phase's configured shell
// command in the project directory. An empty command makes the operation a
// pure ordering point that succeeds immediately.
type Command struct {
	name    string
	command string
	dir     string
	env     map[string]string
}

// NewCommand creates a command strategy. dir is the working directory for
// the command; env entries are appended to the inherited environment.
func NewCommand(name, command, dir string, env map[string]string) *Command {
	return &Command{name: name, command: command, dir: dir, env: env}
}

// Name implements Strategy.
func (c *Command) Name() string { return c.name }

// Cacheable implements Strategy.
func (c *Command) Cacheable() bool { return true }

// ReportsTiming implements Strategy.
func (c *Command) ReportsTiming() bool { return true }

// AllowsWarnings implements Strategy.
func (c *Command) AllowsWarnings() bool { return true }

// Silent implements Strategy.
func (c *Command) Silent() bool { return false }

// Hash implements Strategy. It digests the command line and environment
// overrides; file-content hashing is the cache subsystem's job.
func (c *Command) Hash(ctx context.Context) (string, error) {
	h := sha256.New()
	fmt.Fprintf(h, "%s\x00%s\x00", c.command, c.dir)
	keys := make([]string, 0, len(c.env))
	for k := range c.env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(h, "%s=%s\x00", k, c.env[k])
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Execute implements Strategy. It runs the command through `sh -c` and
// yields Failure with the command's combined output attached on error.
func (c *Command) Execute(ctx context.Context) (Outcome, error) {
	if c.command == "" {
		return Success, nil
	}

	logger := ctxlog.FromContext(ctx)
	cmd := exec.CommandContext(ctx, "sh", "-c", c.command)
	cmd.Dir = c.dir
	cmd.Env = os.Environ()
	keys := make([]string, 0, len(c.env))
	for k := range c.env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		cmd.Env = append(cmd.Env, k+"="+c.env[k])
	}

	out, err := cmd.CombinedOutput()
	if err != nil {
		return Failure, fmt.Errorf("command %q failed: %w\n%s", c.command, err, out)
	}
	if len(out) > 0 {
		logger.Debug("Command output.", "name", c.name, "output", string(out))
	}
	return Success, nil
}
