package executor

import (
	"context"
	"fmt"
	"io"
	"sync"
)

// MockCommandExecutor is a mock implementation of CommandExecutor for testing
type MockCommandExecutor struct {
	mu sync.Mutex
	// Commands stores the expected commands and their responses, keyed by
	// "name [args]"
	Commands map[string]MockResponse
	// ExecutedCommands tracks what commands were actually executed
	ExecutedCommands []ExecutedCommand
}

// MockResponse represents a mocked command response
type MockResponse struct {
	Output []byte
	Error  error
}

// ExecutedCommand represents a command that was executed
type ExecutedCommand struct {
	Name  string
	Args  []string
	Stdin []byte
}

// NewMockCommandExecutor creates a new mock executor
func NewMockCommandExecutor() *MockCommandExecutor {
	return &MockCommandExecutor{
		Commands:         make(map[string]MockResponse),
		ExecutedCommands: []ExecutedCommand{},
	}
}

// Execute implements CommandExecutor.Execute
func (m *MockCommandExecutor) Execute(ctx context.Context, name string, args ...string) ([]byte, error) {
	return m.ExecuteWithStdin(ctx, name, nil, args...)
}

// ExecuteWithStdin implements CommandExecutor.ExecuteWithStdin
func (m *MockCommandExecutor) ExecuteWithStdin(ctx context.Context, name string, stdin io.Reader, args ...string) ([]byte, error) {
	var stdinData []byte
	if stdin != nil {
		stdinData, _ = io.ReadAll(stdin)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.ExecutedCommands = append(m.ExecutedCommands, ExecutedCommand{
		Name:  name,
		Args:  args,
		Stdin: stdinData,
	})

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	key := fmt.Sprintf("%s %v", name, args)
	if response, ok := m.Commands[key]; ok {
		return response.Output, response.Error
	}

	return nil, fmt.Errorf("unexpected command: %s", key)
}
