package alias

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/justrun/internal/core/ports"
)

// NodeID is the unique identifier for the alias rewriter Graft node.
const NodeID graft.ID = "adapter.alias_rewriter"

func init() {
	graft.Register(graft.Node[ports.AliasRewriter]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.AliasRewriter, error) {
			return NewRewriter(""), nil
		},
	})
}
