package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"syscall"
	"time"
)

// maxOutput caps how much of each stream is kept.
const maxOutput = 64 * 1024

// ErrTimeout is returned when a command outlives its timeout.
var ErrTimeout = errors.New("process: command timed out")

// Config describes how a helper binary is invoked.
type Config struct {
	// Name is a human-readable identifier for logging.
	Name string

	// Binary is the path to the executable, or a name looked up in PATH.
	Binary string

	// Env are additional environment variables (key=value format).
	// If nil, inherits from parent process.
	Env []string

	// Timeout bounds a single invocation. Zero means only ctx applies.
	Timeout time.Duration

	// GracefulTimeout is how long to wait after SIGTERM before SIGKILL.
	GracefulTimeout time.Duration
}

// Logger defines the logging interface for the runner.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Result is the outcome of a finished command.
type Result struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
	Duration time.Duration
}

// Commander runs a command to completion. Runner implements it; tests use
// scripted fakes.
type Commander interface {
	Run(ctx context.Context, args ...string) (Result, error)
}

// Runner executes short-lived invocations of one binary.
type Runner struct {
	config Config
	logger Logger
}

// NewRunner creates a runner, applying defaults for zero values.
func NewRunner(cfg Config) *Runner {
	if cfg.GracefulTimeout == 0 {
		cfg.GracefulTimeout = 2 * time.Second
	}
	if cfg.Name == "" {
		cfg.Name = cfg.Binary
	}
	return &Runner{config: cfg, logger: noopLogger{}}
}

// SetLogger sets the logger for the runner.
func (r *Runner) SetLogger(logger Logger) {
	r.logger = logger
}

// Run starts the binary with args and waits for it to exit.
//
// The child runs in its own process group. When ctx ends or the timeout
// expires the whole group gets SIGTERM, then SIGKILL after GracefulTimeout.
// A non-zero exit is returned as an error alongside the captured Result.
func (r *Runner) Run(ctx context.Context, args ...string) (Result, error) {
	runCtx := ctx
	if r.config.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, r.config.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(runCtx, r.config.Binary, args...) //nolint:gosec // binary comes from config
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		// Negative PID signals the process group created via Setpgid.
		err := syscall.Kill(-cmd.Process.Pid, syscall.SIGTERM)
		if errors.Is(err, syscall.ESRCH) {
			return os.ErrProcessDone
		}
		return err
	}
	cmd.WaitDelay = r.config.GracefulTimeout
	if r.config.Env != nil {
		cmd.Env = append(os.Environ(), r.config.Env...)
	}

	stdout := &limitedBuffer{max: maxOutput}
	stderr := &limitedBuffer{max: maxOutput}
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	r.logger.Debug("running command", "name", r.config.Name, "args", args)

	start := time.Now()
	err := cmd.Run()
	res := Result{
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		ExitCode: cmd.ProcessState.ExitCode(),
		Duration: time.Since(start),
	}

	switch {
	case err == nil:
		return res, nil
	case runCtx.Err() != nil && ctx.Err() == nil:
		r.logger.Warn("command timed out", "name", r.config.Name, "timeout", r.config.Timeout)
		return res, fmt.Errorf("%s: %w", r.config.Name, ErrTimeout)
	case ctx.Err() != nil:
		return res, ctx.Err()
	default:
		r.logger.Debug("command failed",
			"name", r.config.Name,
			"exit_code", res.ExitCode,
			"stderr", string(bytes.TrimSpace(res.Stderr)),
		)
		return res, fmt.Errorf("running %s: %w", r.config.Name, err)
	}
}

// limitedBuffer keeps the first max bytes written and discards the rest.
type limitedBuffer struct {
	bytes.Buffer
	max int
}

func (b *limitedBuffer) Write(p []byte) (int, error) {
	if room := b.max - b.Len(); room > 0 {
		if len(p) > room {
			b.Buffer.Write(p[:room])
		} else {
			b.Buffer.Write(p)
		}
	}
	return len(p), nil
}
