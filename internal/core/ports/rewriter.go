package ports

import (
	"context"

	"go.trai.ch/justrun/internal/core/domain"
)

// AliasRewriter rewrites aliased import paths in emitted output.
//
//go:generate mockgen -source=rewriter.go -destination=mocks/mock_rewriter.go -package=mocks
type AliasRewriter interface {
	// Rewrite rewrites the output tree in place and returns the number of
	// files that changed.
	Rewrite(ctx context.Context, req domain.RewriteRequest) (int, error)
}
