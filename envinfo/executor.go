package envinfo

import (
	"context"
	"fmt"
	"os/exec"
)

// LocalExecutor executes commands on the local system
type LocalExecutor struct{}

// NewLocalExecutor creates a new local command executor
func NewLocalExecutor() *LocalExecutor {
	return &LocalExecutor{}
}

// Execute runs a command locally
func (e *LocalExecutor) Execute(ctx context.Context, command string) (string, error) {
	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	output, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("local command execution failed: %w", err)
	}
	return string(output), nil
}
