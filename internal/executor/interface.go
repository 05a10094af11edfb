package executor

import (
	"context"
	"errors"
	"io"
	"os/exec"
	"strings"
)

// CommandExecutor runs the git commands diffchunk needs: the dependency
// check and git apply, which reads the patch from stdin. Both methods
// return stdout only. A failed command's stderr travels inside the
// returned error, see Stderr.
type CommandExecutor interface {
	Execute(ctx context.Context, name string, args ...string) ([]byte, error)
	ExecuteWithStdin(ctx context.Context, name string, stdin io.Reader, args ...string) ([]byte, error)
}

var (
	_ CommandExecutor = (*RealCommandExecutor)(nil)
	_ CommandExecutor = (*MockCommandExecutor)(nil)
)

// Stderr returns the trimmed stderr carried by a failed command, or "" when
// err did not come from a command that exited
func Stderr(err error) string {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return strings.TrimSpace(string(exitErr.Stderr))
	}
	return ""
}
