// Package tsconfig loads TypeScript project configuration files.
package tsconfig

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/tailscale/hujson"
	"go.trai.ch/justrun/internal/core/domain"
	"go.trai.ch/zerr"
)

// Config is a tsconfig file with its extends chain resolved. Every path it
// holds is absolute.
type Config struct {
	Path string
	Dir  string

	// Files, Include and Exclude are nil when no file in the chain sets them.
	Files   []string
	Include []string
	Exclude []string

	OutDir    string
	RootDir   string
	BaseURL   string
	SourceMap bool

	// Paths maps alias patterns to target patterns. Targets resolve against
	// PathsBase, which is BaseURL or the directory of the file declaring paths.
	Paths     map[string][]string
	PathsBase string
}

// HasPaths reports whether the configuration declares any path aliases.
func (c *Config) HasPaths() bool {
	return len(c.Paths) > 0
}

type rawConfig struct {
	Extends         extendsList     `json:"extends"`
	Files           []string        `json:"files"`
	Include         []string        `json:"include"`
	Exclude         []string        `json:"exclude"`
	CompilerOptions rawCompilerOpts `json:"compilerOptions"`
}

type rawCompilerOpts struct {
	OutDir    *string             `json:"outDir"`
	RootDir   *string             `json:"rootDir"`
	BaseURL   *string             `json:"baseUrl"`
	SourceMap *bool               `json:"sourceMap"`
	Paths     map[string][]string `json:"paths"`
}

// extendsList accepts both the string and the array form of "extends".
type extendsList []string

func (e *extendsList) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*e = extendsList{single}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*e = many
	return nil
}

// Parse reads the tsconfig at path and merges its extends chain. Options set
// by a file override the ones it inherits.
func Parse(path string) (*Config, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrConfigReadFailed.Error()), "path", path)
	}
	return parse(abs, nil)
}

func parse(path string, seen []string) (*Config, error) {
	for _, p := range seen {
		if p == path {
			err := zerr.With(domain.ErrConfigExtendsCycle, "path", path)
			return nil, zerr.With(err, "chain", strings.Join(append(seen, path), " -> "))
		}
	}
	seen = append(seen, path)

	raw, err := readRaw(path)
	if err != nil {
		return nil, err
	}

	cfg := &Config{Path: path, Dir: filepath.Dir(path)}
	for _, ext := range raw.Extends {
		parentPath, err := resolveExtends(cfg.Dir, ext)
		if err != nil {
			return nil, zerr.With(err, "extended_by", path)
		}
		parent, err := parse(parentPath, seen)
		if err != nil {
			return nil, err
		}
		cfg.inherit(parent)
	}

	cfg.apply(raw)
	return cfg, nil
}

func readRaw(path string) (*rawConfig, error) {
	// #nosec G304 -- path comes from the command line or an extends chain
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, zerr.With(domain.ErrConfigNotFound, "path", path)
		}
		return nil, zerr.With(zerr.Wrap(err, domain.ErrConfigReadFailed.Error()), "path", path)
	}

	std, err := hujson.Standardize(data)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrConfigParseFailed.Error()), "path", path)
	}

	var raw rawConfig
	if err := json.Unmarshal(std, &raw); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrConfigParseFailed.Error()), "path", path)
	}
	return &raw, nil
}

// resolveExtends locates an extended configuration the way tsc does:
// relative and absolute paths resolve against the extending file, anything
// else is looked up in node_modules of every ancestor directory.
func resolveExtends(dir, ext string) (string, error) {
	if filepath.IsAbs(ext) || strings.HasPrefix(ext, ".") {
		p := ext
		if !filepath.IsAbs(p) {
			p = filepath.Join(dir, ext)
		}
		return withJSONSuffix(p)
	}

	for current := dir; ; current = filepath.Dir(current) {
		base := filepath.Join(current, "node_modules", filepath.FromSlash(ext))
		if p, err := withJSONSuffix(base); err == nil {
			return p, nil
		}
		if p, err := withJSONSuffix(filepath.Join(base, "tsconfig.json")); err == nil {
			return p, nil
		}
		if parent := filepath.Dir(current); parent == current {
			break
		}
	}
	return "", zerr.With(domain.ErrConfigNotFound, "extends", ext)
}

func withJSONSuffix(p string) (string, error) {
	candidates := []string{p}
	if !strings.HasSuffix(p, ".json") {
		candidates = append(candidates, p+".json")
	}
	for _, c := range candidates {
		if info, err := os.Stat(c); err == nil && !info.IsDir() {
			return c, nil
		}
	}
	return "", zerr.With(domain.ErrConfigNotFound, "path", p)
}

func (c *Config) inherit(parent *Config) {
	if parent.Files != nil {
		c.Files = parent.Files
	}
	if parent.Include != nil {
		c.Include = parent.Include
	}
	if parent.Exclude != nil {
		c.Exclude = parent.Exclude
	}
	if parent.OutDir != "" {
		c.OutDir = parent.OutDir
	}
	if parent.RootDir != "" {
		c.RootDir = parent.RootDir
	}
	if parent.BaseURL != "" {
		c.BaseURL = parent.BaseURL
	}
	if parent.Paths != nil {
		c.Paths = parent.Paths
		c.PathsBase = parent.PathsBase
	}
	c.SourceMap = parent.SourceMap
}

func (c *Config) apply(raw *rawConfig) {
	if raw.Files != nil {
		c.Files = c.absAll(raw.Files)
	}
	if raw.Include != nil {
		c.Include = c.absAll(raw.Include)
	}
	if raw.Exclude != nil {
		c.Exclude = c.absAll(raw.Exclude)
	}

	opts := raw.CompilerOptions
	if opts.OutDir != nil {
		c.OutDir = c.abs(*opts.OutDir)
	}
	if opts.RootDir != nil {
		c.RootDir = c.abs(*opts.RootDir)
	}
	if opts.SourceMap != nil {
		c.SourceMap = *opts.SourceMap
	}
	if opts.BaseURL != nil {
		c.BaseURL = c.abs(*opts.BaseURL)
		if c.Paths != nil && opts.Paths == nil {
			c.PathsBase = c.BaseURL
		}
	}
	if opts.Paths != nil {
		c.Paths = opts.Paths
		c.PathsBase = c.Dir
		if c.BaseURL != "" {
			c.PathsBase = c.BaseURL
		}
	}
}

func (c *Config) abs(p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(c.Dir, filepath.FromSlash(p))
}

func (c *Config) absAll(paths []string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = c.abs(p)
	}
	return out
}
