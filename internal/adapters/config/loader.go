// Package config provides the runner settings loader for just-run.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"maps"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.trai.ch/justrun/internal/core/domain"
	"go.trai.ch/justrun/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

var _ ports.ConfigLoader = (*Loader)(nil)

// Loader implements ports.ConfigLoader using a YAML file.
type Loader struct {
	Logger ports.Logger
	FS     FileSystem
}

// NewLoader creates a new Loader with the given logger.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{Logger: logger, FS: NewOSFS()}
}

// Load reads just-run.yaml from cwd. A missing file yields the defaults.
func (l *Loader) Load(cwd string) (*domain.RunnerConfig, error) {
	cfg := domain.DefaultRunnerConfig()
	configPath := filepath.Join(cwd, domain.RunnerConfigFile)

	data, err := l.FS.ReadFile(configPath)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrConfigReadFailed.Error()), "path", configPath)
	}

	var file RunnerFile
	if err := decodeStrict(data, &file); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrConfigParseFailed.Error()), "path", configPath)
	}

	if err := l.apply(cfg, &file, cwd); err != nil {
		return nil, zerr.With(err, "path", configPath)
	}
	return cfg, nil
}

// decodeStrict unmarshals YAML and rejects unknown keys. An empty document
// is not an error.
func decodeStrict(data []byte, target *RunnerFile) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(target); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func (l *Loader) apply(cfg *domain.RunnerConfig, file *RunnerFile, cwd string) error {
	for _, root := range file.Watch {
		abs := resolvePath(cwd, root)
		if info, err := l.FS.Stat(abs); err != nil || !info.IsDir() {
			l.Logger.Warn(fmt.Sprintf("watch root %s is not a directory, skipping", root))
			continue
		}
		cfg.Watch = append(cfg.Watch, abs)
	}

	for _, pattern := range file.Ignore {
		if !slices.Contains(cfg.Ignore, pattern) {
			cfg.Ignore = append(cfg.Ignore, pattern)
		}
	}

	if len(file.Extensions) > 0 {
		cfg.Extensions = normalizeExtensions(file.Extensions)
	}

	var err error
	if cfg.Debounce, err = parseDuration("debounce", file.Debounce, cfg.Debounce); err != nil {
		return err
	}
	if cfg.KillTimeout, err = parseDuration("killTimeout", file.KillTimeout, cfg.KillTimeout); err != nil {
		return err
	}

	if file.EnvFile != "" {
		cfg.EnvFile = resolvePath(cwd, file.EnvFile)
		env, err := l.readEnvFile(cfg.EnvFile)
		if err != nil {
			return err
		}
		maps.Copy(cfg.Env, env)
	}
	// Inline variables take precedence over the dotenv file.
	maps.Copy(cfg.Env, file.Env)

	return nil
}

func (l *Loader) readEnvFile(path string) (map[string]string, error) {
	data, err := l.FS.ReadFile(path)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrEnvFileReadFailed.Error()), "env_file", path)
	}
	env, err := godotenv.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrEnvFileReadFailed.Error()), "env_file", path)
	}
	return env, nil
}

func parseDuration(field, value string, fallback time.Duration) (time.Duration, error) {
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		err = zerr.Wrap(err, domain.ErrInvalidRunnerConfig.Error())
		return 0, zerr.With(err, "field", field)
	}
	if d < 0 {
		err := zerr.With(domain.ErrInvalidRunnerConfig, "field", field)
		return 0, zerr.With(err, "value", value)
	}
	return d, nil
}

func normalizeExtensions(exts []string) []string {
	out := make([]string, 0, len(exts))
	for _, ext := range exts {
		ext = strings.TrimSpace(ext)
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		if !slices.Contains(out, ext) {
			out = append(out, ext)
		}
	}
	return out
}

func resolvePath(cwd, p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(cwd, p)
}
