// Package liquidlite renders minimal Liquid-style text templates.
//
// liquidlite is meant for embedding small templates (HTML snippets, prompts,
// config fragments) where a full templating engine would be oversized. Each
// subpackage can be used independently:
//
//   - template: the compiler, with {{ path }} interpolation and
//     {% if %} / {% else %} / {% endif %} blocks
//   - variables: load variables from JSON, YAML or TOML and front matter
//   - render: render template files in parallel to an output directory
//   - config: settings for the liquidlite command
//   - watch: re-run work when files change
//
// # Quick Start
//
// Compiling a template string:
//
//	import "github.com/randalmurphal/liquidlite/template"
//	out, err := template.Compile("Hello {{ name }}", template.Variables{"name": "World"})
//
// Undefined paths are errors by default. Render them as empty instead:
//
//	engine := template.NewEngine(template.WithMissingPath(template.MissingPathLenient))
//	out, err := engine.Compile("Hi {{ user.name }}", template.Variables{})
//
// Rendering files:
//
//	import "github.com/randalmurphal/liquidlite/render"
//	vars, _ := variables.LoadFiles("site.yaml")
//	r := render.New(template.NewEngine(), vars, render.WithOutputDir("dist"))
//	results, err := r.RenderAll(ctx, paths)
//
// The liquidlite command in cmd/liquidlite wraps these packages:
//
//	liquidlite render --vars site.yaml --out dist "templates/**/*.html"
//
// # Design Philosophy
//
// liquidlite follows these principles:
//
//   - The compiler is pure: no I/O, no shared state between calls
//   - Each package usable independently
//   - Sensible defaults with full configurability
//   - Errors are values callers can match with errors.Is and errors.As
package liquidlite
