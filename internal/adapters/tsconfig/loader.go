package tsconfig

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"go.trai.ch/justrun/internal/core/domain"
	"go.trai.ch/justrun/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.CompilationLoader = (*Loader)(nil)

// Directories tsc excludes when a config has no "exclude" of its own.
var defaultExcludes = []string{"node_modules", "bower_components", "jspm_packages"}

// Loader implements ports.CompilationLoader for tsconfig files.
type Loader struct {
	workDir string
}

// NewLoader creates a Loader that reports paths relative to workDir. An
// empty workDir means the process working directory.
func NewLoader(workDir string) *Loader {
	return &Loader{workDir: workDir}
}

// Load parses the tsconfig at path and resolves its entry files.
func (l *Loader) Load(path string) (*domain.CompilationConfig, error) {
	workDir, err := l.resolveWorkDir()
	if err != nil {
		return nil, err
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(workDir, path)
	}

	cfg, err := Parse(path)
	if err != nil {
		return nil, err
	}

	outDir := cfg.ResolvedOutDir()

	entries, err := cfg.Entries()
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, zerr.With(domain.ErrNoEntryFiles, "tsconfig", cfg.Path)
	}

	for i, e := range entries {
		entries[i] = relativeTo(workDir, e)
	}

	return domain.NewCompilationConfig(domain.CompilationOptions{
		EntryFiles: entries,
		OutDir:     relativeTo(workDir, outDir),
		SourceMap:  cfg.SourceMap,
		HasPaths:   cfg.HasPaths(),
		ConfigPath: relativeTo(workDir, cfg.Path),
	}), nil
}

func (l *Loader) resolveWorkDir() (string, error) {
	if l.workDir != "" {
		return filepath.Abs(l.workDir)
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", zerr.Wrap(err, domain.ErrConfigReadFailed.Error())
	}
	return wd, nil
}

// ResolvedOutDir returns the configured output directory, or dist next to the
// tsconfig when none is set.
func (c *Config) ResolvedOutDir() string {
	if c.OutDir != "" {
		return c.OutDir
	}
	return filepath.Join(c.Dir, domain.DefaultOutDir)
}

// Entries returns the sorted absolute paths of the compiler entry files.
func (c *Config) Entries() ([]string, error) {
	return entryFiles(c, c.ResolvedOutDir())
}

func entryFiles(cfg *Config, outDir string) ([]string, error) {
	if cfg.Files != nil {
		var entries []string
		for _, f := range cfg.Files {
			if isSource(f) {
				entries = append(entries, f)
			}
		}
		return entries, nil
	}

	include := cfg.Include
	if include == nil {
		include = []string{filepath.Join(cfg.Dir, "**", "*")}
	}

	exclude := cfg.Exclude
	if exclude == nil {
		for _, d := range defaultExcludes {
			exclude = append(exclude, filepath.Join(cfg.Dir, d))
		}
		exclude = append(exclude, outDir)
	}

	m := newMatcher(include, exclude)
	seen := make(map[string]struct{})
	var entries []string

	for _, base := range m.bases() {
		err := filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if path == base && errors.Is(err, fs.ErrNotExist) {
					return filepath.SkipDir
				}
				return err
			}
			if d.IsDir() {
				if d.Name() == ".git" || d.Name() == ".jj" || m.excluded(path) {
					return filepath.SkipDir
				}
				return nil
			}
			if !isSource(path) || !m.included(path) || m.excluded(path) {
				return nil
			}
			if _, ok := seen[path]; !ok {
				seen[path] = struct{}{}
				entries = append(entries, path)
			}
			return nil
		})
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, domain.ErrConfigReadFailed.Error()), "dir", base)
		}
	}

	slices.Sort(entries)
	return entries, nil
}

// isSource reports whether path is a compilable source file. Declaration
// files are never entry points.
func isSource(path string) bool {
	name := filepath.Base(path)
	for _, decl := range []string{".d.ts", ".d.mts", ".d.cts"} {
		if strings.HasSuffix(name, decl) {
			return false
		}
	}
	return slices.Contains(domain.SourceExtensions(), filepath.Ext(name))
}

func relativeTo(base, path string) string {
	rel, err := filepath.Rel(base, path)
	if err != nil {
		return path
	}
	return rel
}

// matcher evaluates tsconfig include and exclude patterns against absolute
// paths. Pattern segments without wildcards or an extension name directories
// and match everything beneath them.
type matcher struct {
	include []string
	exclude []string
}

func newMatcher(include, exclude []string) *matcher {
	m := &matcher{}
	for _, p := range include {
		m.include = append(m.include, expandDirPattern(filepath.ToSlash(p)))
	}
	for _, p := range exclude {
		m.exclude = append(m.exclude, filepath.ToSlash(p))
	}
	return m
}

func expandDirPattern(p string) string {
	last := p[strings.LastIndex(p, "/")+1:]
	if strings.ContainsAny(last, "*?[") || strings.Contains(last, ".") {
		return p
	}
	return strings.TrimSuffix(p, "/") + "/**/*"
}

// bases returns the non-wildcard prefix of every include pattern, without
// directories nested in another base.
func (m *matcher) bases() []string {
	var bases []string
	for _, p := range m.include {
		base, _ := doublestar.SplitPattern(p)
		bases = append(bases, filepath.FromSlash(base))
	}
	slices.Sort(bases)
	bases = slices.Compact(bases)

	var roots []string
	for _, b := range bases {
		nested := slices.ContainsFunc(roots, func(r string) bool {
			return strings.HasPrefix(b, r+string(filepath.Separator))
		})
		if !nested {
			roots = append(roots, b)
		}
	}
	return roots
}

func (m *matcher) included(path string) bool {
	p := filepath.ToSlash(path)
	return slices.ContainsFunc(m.include, func(pattern string) bool {
		ok, _ := doublestar.Match(pattern, p)
		return ok
	})
}

func (m *matcher) excluded(path string) bool {
	p := filepath.ToSlash(path)
	return slices.ContainsFunc(m.exclude, func(pattern string) bool {
		if ok, _ := doublestar.Match(pattern, p); ok {
			return true
		}
		ok, _ := doublestar.Match(strings.TrimSuffix(pattern, "/")+"/**", p)
		return ok
	})
}
