package ports

import "go.trai.ch/justrun/internal/core/domain"

// CompilationLoader loads the project's compiler configuration.
//
//go:generate mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type CompilationLoader interface {
	// Load parses the tsconfig at path into a CompilationConfig.
	Load(path string) (*domain.CompilationConfig, error)
}

// ConfigLoader loads the runner settings.
type ConfigLoader interface {
	// Load reads just-run.yaml from cwd, falling back to defaults when absent.
	Load(cwd string) (*domain.RunnerConfig, error)
}
