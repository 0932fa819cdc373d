// Package ports defines the core interfaces for the application.
package ports

import (
	"context"

	"go.trai.ch/justrun/internal/core/domain"
)

// Compiler compiles a source tree to the output directory.
//
//go:generate mockgen -source=compiler.go -destination=mocks/mock_compiler.go -package=mocks
type Compiler interface {
	// Build performs one non-incremental compilation.
	Build(ctx context.Context, req domain.CompileRequest) (domain.CompileOutput, error)

	// Context performs the first compilation of an incremental session and
	// returns a handle able to re-emit output. On failure no handle is returned
	// and every resource of the session is already released.
	Context(ctx context.Context, req domain.CompileRequest) (BuildHandle, domain.CompileOutput, error)
}

// BuildHandle is a live incremental compilation session.
type BuildHandle interface {
	// Rebuild re-emits output without a full re-parse.
	Rebuild(ctx context.Context) (domain.CompileOutput, error)

	// Stop halts the session's background work.
	Stop()

	// Dispose releases the re-emission capability. It is safe to call twice.
	Dispose()
}
