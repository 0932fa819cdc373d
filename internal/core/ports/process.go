package ports

import (
	"context"
	"io"
	"time"

	"go.trai.ch/justrun/internal/core/domain"
)

// Process is a running child process.
type Process interface {
	// Pid returns the operating system process id.
	Pid() int
	// Wait blocks until the process exits.
	Wait() error
	// Done is closed once the process has exited.
	Done() <-chan struct{}
	// Stop asks the process to exit and kills it after timeout.
	Stop(timeout time.Duration) error
}

// ProcessRunner starts child processes.
//
//go:generate mockgen -source=process.go -destination=mocks/mock_process.go -package=mocks
type ProcessRunner interface {
	// Start launches cmd with its output copied to stdout.
	Start(ctx context.Context, cmd domain.Command, stdout io.Writer) (Process, error)
}
