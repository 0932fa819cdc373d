package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/justrun/internal/adapters/alias"     //nolint:depguard // Wired in app layer
	"go.trai.ch/justrun/internal/adapters/config"    //nolint:depguard // Wired in app layer
	"go.trai.ch/justrun/internal/adapters/esbuild"   //nolint:depguard // Wired in app layer
	"go.trai.ch/justrun/internal/adapters/logger"    //nolint:depguard // Wired in app layer
	"go.trai.ch/justrun/internal/adapters/shell"     //nolint:depguard // Wired in app layer
	"go.trai.ch/justrun/internal/adapters/telemetry" //nolint:depguard // Wired in app layer
	"go.trai.ch/justrun/internal/adapters/tsconfig"  //nolint:depguard // Wired in app layer
	"go.trai.ch/justrun/internal/adapters/watcher"   //nolint:depguard // Wired in app layer
	"go.trai.ch/justrun/internal/core/ports"
	"go.trai.ch/justrun/internal/engine/builder"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

func init() {
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			tsconfig.NodeID,
			config.NodeID,
			esbuild.NodeID,
			alias.NodeID,
			watcher.NodeID,
			shell.NodeID,
			logger.NodeID,
			telemetry.NodeID,
		},
		Run: runAppNode,
	})

	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
			telemetry.NodeID,
		},
		Run: runComponentsNode,
	})
}

func runAppNode(ctx context.Context) (*App, error) {
	compilation, err := graft.Dep[ports.CompilationLoader](ctx)
	if err != nil {
		return nil, err
	}

	settings, err := graft.Dep[ports.ConfigLoader](ctx)
	if err != nil {
		return nil, err
	}

	compiler, err := graft.Dep[ports.Compiler](ctx)
	if err != nil {
		return nil, err
	}

	rewriter, err := graft.Dep[ports.AliasRewriter](ctx)
	if err != nil {
		return nil, err
	}

	fsWatcher, err := graft.Dep[ports.Watcher](ctx)
	if err != nil {
		return nil, err
	}

	processes, err := graft.Dep[ports.ProcessRunner](ctx)
	if err != nil {
		return nil, err
	}

	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	provider, err := graft.Dep[*telemetry.Provider](ctx)
	if err != nil {
		return nil, err
	}

	return New(compilation, settings, compiler, rewriter, fsWatcher, processes, log).
		WithTracer(provider.Tracer(builder.TracerName)), nil
}

func runComponentsNode(ctx context.Context) (*Components, error) {
	app, err := graft.Dep[*App](ctx)
	if err != nil {
		return nil, err
	}

	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	provider, err := graft.Dep[*telemetry.Provider](ctx)
	if err != nil {
		return nil, err
	}

	return &Components{
		App:       app,
		Logger:    log,
		Telemetry: provider,
	}, nil
}
