// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/justrun/internal/adapters/alias"
	_ "go.trai.ch/justrun/internal/adapters/config"
	_ "go.trai.ch/justrun/internal/adapters/esbuild"
	_ "go.trai.ch/justrun/internal/adapters/logger"
	_ "go.trai.ch/justrun/internal/adapters/shell"
	_ "go.trai.ch/justrun/internal/adapters/telemetry"
	_ "go.trai.ch/justrun/internal/adapters/tsconfig"
	_ "go.trai.ch/justrun/internal/adapters/watcher"
	// Register app nodes.
	_ "go.trai.ch/justrun/internal/app"
)
