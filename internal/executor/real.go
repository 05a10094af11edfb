package executor

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os/exec"
	"strings"

	"github.com/syou6162/diffchunk/internal/logger"
)

// RealCommandExecutor runs commands on the host
type RealCommandExecutor struct {
	logger *logger.Logger
	dir    string
}

// NewRealCommandExecutor creates a new real executor
func NewRealCommandExecutor(log *logger.Logger) *RealCommandExecutor {
	if log == nil {
		log = logger.NewFromEnv()
	}
	return &RealCommandExecutor{
		logger: log.Named("exec"),
	}
}

// InDir returns an executor that runs commands in dir
func (r *RealCommandExecutor) InDir(dir string) *RealCommandExecutor {
	return &RealCommandExecutor{logger: r.logger, dir: dir}
}

// Execute implements CommandExecutor.Execute
func (r *RealCommandExecutor) Execute(ctx context.Context, name string, args ...string) ([]byte, error) {
	return r.run(ctx, name, nil, args)
}

// ExecuteWithStdin implements CommandExecutor.ExecuteWithStdin
func (r *RealCommandExecutor) ExecuteWithStdin(ctx context.Context, name string, stdin io.Reader, args ...string) ([]byte, error) {
	return r.run(ctx, name, stdin, args)
}

func (r *RealCommandExecutor) run(ctx context.Context, name string, stdin io.Reader, args []string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = r.dir
	cmd.Stdin = stdin
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	r.logger.Debug("running %s %s", name, strings.Join(args, " "))
	output, err := cmd.Output()
	if err != nil {
		r.logger.Error("Command failed: %s %s", name, strings.Join(args, " "))
		if stderr.Len() > 0 {
			r.logger.Error("stderr: %s", stderr.String())
		}

		// Return stderr content along with the error
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitErr.Stderr = stderr.Bytes()
		}
		return nil, err
	}

	return output, nil
}
