// Package render compiles template files and writes the results.
package render

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/natefinch/atomic"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/randalmurphal/liquidlite/template"
	"github.com/randalmurphal/liquidlite/variables"
)

// ErrNoMatch is returned when a template pattern matches no files.
var ErrNoMatch = errors.New("pattern matched no files")

// Result describes one rendered template.
type Result struct {
	// Template is the source file.
	Template string

	// Output is the rendered text.
	Output string

	// Path is the file the output was written to, or empty when the
	// renderer has no output directory.
	Path string
}

// Renderer compiles template files with a shared set of variables.
type Renderer struct {
	engine  *template.Engine
	vars    template.Variables
	outDir  string
	root    string
	workers int
	logger  zerolog.Logger
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithOutputDir writes each result below dir, mirroring the template's
// location relative to the root directory.
func WithOutputDir(dir string) Option {
	return func(r *Renderer) {
		r.outDir = dir
	}
}

// WithRoot sets the directory template paths are made relative to when
// computing output paths. Defaults to the working directory.
func WithRoot(dir string) Option {
	return func(r *Renderer) {
		r.root = dir
	}
}

// WithWorkers limits parallel renders in RenderAll.
func WithWorkers(n int) Option {
	return func(r *Renderer) {
		if n > 0 {
			r.workers = n
		}
	}
}

// WithLogger sets the renderer's logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(r *Renderer) {
		r.logger = logger
	}
}

// New creates a renderer. vars is not modified.
func New(engine *template.Engine, vars template.Variables, opts ...Option) *Renderer {
	r := &Renderer{
		engine:  engine,
		vars:    vars,
		root:    ".",
		workers: 4,
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RenderFile compiles one template file. Front matter in the file supplies
// default variables that the renderer's variables override.
func (r *Renderer) RenderFile(path string) (Result, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return Result{}, fmt.Errorf("read template: %w", err)
	}

	defaults, body, err := variables.SplitFrontMatter(string(src))
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", path, err)
	}

	vars := r.vars
	if defaults != nil {
		vars = template.Variables{}
		variables.Merge(vars, defaults)
		variables.Merge(vars, r.vars)
	}

	out, err := r.engine.Compile(body, vars)
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", path, err)
	}

	res := Result{Template: path, Output: out}
	if r.outDir == "" {
		return res, nil
	}

	res.Path = r.outputPath(path)
	if err := os.MkdirAll(filepath.Dir(res.Path), 0o755); err != nil {
		return Result{}, fmt.Errorf("create output dir: %w", err)
	}
	if err := atomic.WriteFile(res.Path, strings.NewReader(out+"\n")); err != nil {
		return Result{}, fmt.Errorf("write %s: %w", res.Path, err)
	}

	r.logger.Debug().Str("template", path).Str("output", res.Path).Msg("rendered")
	return res, nil
}

func (r *Renderer) outputPath(path string) string {
	rel, err := filepath.Rel(r.root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		rel = filepath.Base(path)
	}
	return filepath.Join(r.outDir, rel)
}

// RenderAll renders paths in parallel and returns results in input order.
// The first error cancels renders that have not started.
func (r *Renderer) RenderAll(ctx context.Context, paths []string) ([]Result, error) {
	results := make([]Result, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)

	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := r.RenderFile(path)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Expand resolves template arguments. Arguments containing glob
// metacharacters are expanded with ** support; plain paths are kept as
// given. Duplicates are dropped and order is preserved.
func Expand(patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var paths []string

	add := func(p string) {
		p = filepath.Clean(p)
		if !seen[p] {
			seen[p] = true
			paths = append(paths, p)
		}
	}

	for _, pattern := range patterns {
		if !strings.ContainsAny(pattern, "*?[{") {
			add(pattern)
			continue
		}
		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("expand %q: %w", pattern, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("%w: %s", ErrNoMatch, pattern)
		}
		for _, m := range matches {
			add(m)
		}
	}

	return paths, nil
}
