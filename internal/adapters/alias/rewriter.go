// Package alias rewrites tsconfig path aliases in compiled output into
// relative module specifiers.
package alias

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"sort"
	"strings"

	"go.trai.ch/justrun/internal/adapters/tsconfig"
	"go.trai.ch/justrun/internal/core/domain"
	"go.trai.ch/justrun/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.AliasRewriter = (*Rewriter)(nil)

// specifierPattern matches require(), dynamic import(), and the from clause
// of static imports and re-exports.
var specifierPattern = regexp.MustCompile(
	`(\b(?:require|import)\s*\(\s*|\bfrom\s*|\bimport\s*)(["'])([^"'\r\n]+)(["'])`,
)

var outputExtensions = []string{".js", ".cjs", ".mjs"}

// Rewriter implements ports.AliasRewriter.
type Rewriter struct {
	workDir string
}

// NewRewriter creates a Rewriter resolving relative request paths against
// workDir. An empty workDir means the process working directory.
func NewRewriter(workDir string) *Rewriter {
	return &Rewriter{workDir: workDir}
}

// Rewrite replaces aliased specifiers in every emitted file under req.OutDir
// and returns how many files changed.
func (r *Rewriter) Rewrite(ctx context.Context, req domain.RewriteRequest) (int, error) {
	workDir, err := r.resolveWorkDir()
	if err != nil {
		return 0, err
	}

	cfg, err := tsconfig.Parse(absolute(workDir, req.ConfigFile))
	if err != nil {
		return 0, zerr.Wrap(err, domain.ErrRewriteFailed.Error())
	}
	if !cfg.HasPaths() {
		return 0, nil
	}

	outDir := absolute(workDir, req.OutDir)
	if req.OutDir == "" {
		outDir = cfg.ResolvedOutDir()
	}

	sourceRoot, err := sourceRoot(cfg)
	if err != nil {
		return 0, zerr.Wrap(err, domain.ErrRewriteFailed.Error())
	}

	res := &resolver{
		aliases:    compileAliases(cfg.Paths),
		pathsBase:  cfg.PathsBase,
		sourceRoot: sourceRoot,
		outDir:     outDir,
	}

	rewritten := 0
	err = filepath.WalkDir(outDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() || !slices.Contains(outputExtensions, filepath.Ext(path)) {
			return nil
		}

		changed, err := res.rewriteFile(path)
		if err != nil {
			return err
		}
		if changed {
			rewritten++
		}
		return nil
	})
	if err != nil {
		return rewritten, zerr.With(zerr.Wrap(err, domain.ErrRewriteFailed.Error()), "out_dir", outDir)
	}

	return rewritten, nil
}

func (r *Rewriter) resolveWorkDir() (string, error) {
	if r.workDir != "" {
		return filepath.Abs(r.workDir)
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", zerr.Wrap(err, domain.ErrRewriteFailed.Error())
	}
	return wd, nil
}

func absolute(base, p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(base, p)
}

// sourceRoot mirrors the compiler's outbase: rootDir when configured,
// otherwise the lowest common directory of all entry files.
func sourceRoot(cfg *tsconfig.Config) (string, error) {
	if cfg.RootDir != "" {
		return cfg.RootDir, nil
	}

	entries, err := cfg.Entries()
	if err != nil {
		return "", err
	}
	if len(entries) == 0 {
		return cfg.Dir, nil
	}

	common := filepath.Dir(entries[0])
	for _, e := range entries[1:] {
		dir := filepath.Dir(e)
		for !within(common, dir) {
			parent := filepath.Dir(common)
			if parent == common {
				break
			}
			common = parent
		}
	}
	return common, nil
}

func within(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// alias is one compilerOptions.paths entry split at its wildcard.
type alias struct {
	prefix   string
	suffix   string
	wildcard bool
	targets  []string
}

func (a alias) match(spec string) (string, bool) {
	if !a.wildcard {
		return "", spec == a.prefix
	}
	if len(spec) < len(a.prefix)+len(a.suffix) {
		return "", false
	}
	if !strings.HasPrefix(spec, a.prefix) || !strings.HasSuffix(spec, a.suffix) {
		return "", false
	}
	return spec[len(a.prefix) : len(spec)-len(a.suffix)], true
}

// compileAliases orders patterns so the longest prefix wins, as in tsc.
func compileAliases(paths map[string][]string) []alias {
	aliases := make([]alias, 0, len(paths))
	for pattern, targets := range paths {
		a := alias{prefix: pattern, targets: targets}
		if i := strings.IndexByte(pattern, '*'); i >= 0 {
			a.prefix, a.suffix, a.wildcard = pattern[:i], pattern[i+1:], true
		}
		aliases = append(aliases, a)
	}
	sort.SliceStable(aliases, func(i, j int) bool {
		if aliases[i].wildcard != aliases[j].wildcard {
			return !aliases[i].wildcard
		}
		if len(aliases[i].prefix) != len(aliases[j].prefix) {
			return len(aliases[i].prefix) > len(aliases[j].prefix)
		}
		return aliases[i].prefix < aliases[j].prefix
	})
	return aliases
}

type resolver struct {
	aliases    []alias
	pathsBase  string
	sourceRoot string
	outDir     string
}

func (r *resolver) rewriteFile(path string) (bool, error) {
	// #nosec G304 -- path is produced by walking the output directory
	data, err := os.ReadFile(path)
	if err != nil {
		return false, zerr.With(err, "file", path)
	}

	dir := filepath.Dir(path)
	changed := false
	out := specifierPattern.ReplaceAllStringFunc(string(data), func(m string) string {
		sub := specifierPattern.FindStringSubmatch(m)
		if sub[2] != sub[4] {
			return m
		}
		replacement, ok := r.resolve(dir, sub[3])
		if !ok {
			return m
		}
		changed = true
		return sub[1] + sub[2] + replacement + sub[4]
	})
	if !changed {
		return false, nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return false, zerr.With(err, "file", path)
	}
	if err := os.WriteFile(path, []byte(out), info.Mode().Perm()); err != nil {
		return false, zerr.With(err, "file", path)
	}
	return true, nil
}

// resolve maps an aliased specifier to a relative one. It reports false for
// specifiers that match no alias or whose output file does not exist.
func (r *resolver) resolve(fromDir, spec string) (string, bool) {
	if strings.HasPrefix(spec, ".") || strings.HasPrefix(spec, "/") {
		return "", false
	}

	for _, a := range r.aliases {
		captured, ok := a.match(spec)
		if !ok {
			continue
		}
		for _, target := range a.targets {
			source := filepath.Join(r.pathsBase, filepath.FromSlash(strings.Replace(target, "*", captured, 1)))
			emitted, ok := r.emitted(source)
			if !ok {
				continue
			}
			rel, err := filepath.Rel(fromDir, emitted)
			if err != nil {
				continue
			}
			rel = filepath.ToSlash(rel)
			if !strings.HasPrefix(rel, "../") {
				rel = "./" + rel
			}
			return rel, true
		}
		return "", false
	}
	return "", false
}

// emitted locates the output counterpart of a source path. The returned path
// keeps the specifier form of the source: no extension is added when the
// compiler emitted target.js or target/index.js.
func (r *resolver) emitted(source string) (string, bool) {
	if !within(r.sourceRoot, source) {
		return "", false
	}
	rel, err := filepath.Rel(r.sourceRoot, source)
	if err != nil {
		return "", false
	}
	target := filepath.Join(r.outDir, stripSourceExt(rel))

	for _, candidate := range []string{target + ".js", target, filepath.Join(target, "index.js")} {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return target, true
		}
	}
	return "", false
}

var emittedExt = map[string]string{
	".ts":  "",
	".tsx": "",
	".mts": ".mjs",
	".cts": ".cjs",
}

func stripSourceExt(p string) string {
	ext := filepath.Ext(p)
	repl, ok := emittedExt[ext]
	if !ok {
		return p
	}
	return strings.TrimSuffix(p, ext) + repl
}
