package template

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
)

func TestEngine_Compile_Variables(t *testing.T) {
	e := NewEngine()

	tests := []struct {
		name      string
		template  string
		variables Variables
		want      string
	}{
		{
			name:      "single variable",
			template:  "<p>Hello, {{ name }}!</p>",
			variables: Variables{"name": "Ryan"},
			want:      "<p>Hello, Ryan!</p>",
		},
		{
			name:      "variable without spaces",
			template:  "<p>Hello, {{name}}!</p>",
			variables: Variables{"name": "Ryan"},
			want:      "<p>Hello, Ryan!</p>",
		},
		{
			name:      "object path",
			template:  "<p>Hello, {{person.name}}!</p>",
			variables: Variables{"person": Variables{"name": "Ryan"}},
			want:      "<p>Hello, Ryan!</p>",
		},
		{
			name:      "plain map nesting",
			template:  "{{ a.b.c }}",
			variables: Variables{"a": map[string]any{"b": map[string]string{"c": "deep"}}},
			want:      "deep",
		},
		{
			name:      "multiple variables on one line",
			template:  "{{first_name}} {{ last_name }}",
			variables: Variables{"first_name": "Ryan", "last_name": "Foobar"},
			want:      "Ryan Foobar",
		},
		{
			name:      "integer",
			template:  "x={{ x }}",
			variables: Variables{"x": 1500},
			want:      "x=1500",
		},
		{
			name:      "float",
			template:  "{{ price }}",
			variables: Variables{"price": 1.5},
			want:      "1.5",
		},
		{
			name:      "booleans render as words",
			template:  "{{ yes }}/{{ no }}",
			variables: Variables{"yes": true, "no": false},
			want:      "true/false",
		},
		{
			name:      "nil renders empty",
			template:  "[{{ nothing }}]",
			variables: Variables{"nothing": nil},
			want:      "[]",
		},
		{
			name:      "numeric-looking string keeps its text",
			template:  "{{ zip }}",
			variables: Variables{"zip": "02134"},
			want:      "02134",
		},
		{
			name:      "mapping renders as json",
			template:  "{{ person }}",
			variables: Variables{"person": Variables{"name": "Ryan", "age": 30}},
			want:      `{"age":30,"name":"Ryan"}`,
		},
		{
			name:      "large integers keep every digit",
			template:  "order #{{ order.id }} of {{ total }}",
			variables: Variables{"order": Variables{"id": int64(9007199254740993)}, "total": uint64(12345678901234567890)},
			want:      "order #9007199254740993 of 12345678901234567890",
		},
		{
			name:      "single braces are text",
			template:  "{ name }",
			variables: Variables{"name": "Ryan"},
			want:      "{ name }",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.Compile(tt.template, tt.variables)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEngine_Compile_UnrenderableValues(t *testing.T) {
	vars := Variables{
		"tags":   []any{"a"},
		"person": Variables{"name": "Ryan", "callback": func() {}},
	}

	tests := []struct {
		name     string
		template string
		wantErr  error
		contains string
	}{
		{"slice in interpolation", "{{ tags }}", ErrUnsupportedValue, "[]interface {}"},
		{"slice in condition", "{% if tags %}x{% endif %}", ErrUnsupportedValue, `"tags"`},
		{"mapping that cannot be encoded", "{{ person }}", nil, "render mapping"},
	}

	for _, policy := range []MissingPathPolicy{MissingPathStrict, MissingPathLenient} {
		e := NewEngine(WithMissingPath(policy))
		for _, tt := range tests {
			t.Run(policy.String()+"/"+tt.name, func(t *testing.T) {
				_, err := e.Compile(tt.template, vars)
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
					t.Errorf("error %v should wrap %v", err, tt.wantErr)
				}
				if !strings.Contains(err.Error(), tt.contains) {
					t.Errorf("error %q should contain %q", err.Error(), tt.contains)
				}
			})
		}
	}

	// Unused unsupported values do not affect other paths.
	got, err := Compile("{{ person.name }}", vars)
	if err != nil || got != "Ryan" {
		t.Errorf("got %q, %v; want Ryan", got, err)
	}
}

func TestEngine_Compile_PlainText(t *testing.T) {
	tests := []string{
		"",
		"Plain text only",
		"  padded  ",
		"\n\nline one\n\nline two\n\n",
		"<ul>\n  <li>a</li>\n</ul>",
		"100% { not a tag",
	}

	for _, tmpl := range tests {
		t.Run(tmpl, func(t *testing.T) {
			got, err := Compile(tmpl, nil)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != strings.TrimSpace(tmpl) {
				t.Errorf("got %q, want %q", got, strings.TrimSpace(tmpl))
			}

			again, err := Compile(got, nil)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if again != got {
				t.Errorf("second pass changed output: %q != %q", again, got)
			}
		})
	}
}

func TestEngine_Compile_MissingPath(t *testing.T) {
	tmpl := "<p>Hello, {{person.weight}}!</p>"
	vars := Variables{"person": Variables{"name": "Ryan"}}

	t.Run("strict", func(t *testing.T) {
		got, err := Compile(tmpl, vars)
		if err == nil {
			t.Fatalf("expected error, got output %q", got)
		}
		if got != "" {
			t.Errorf("expected no partial output, got %q", got)
		}
		if !errors.Is(err, ErrMissingPath) {
			t.Errorf("error %v should wrap ErrMissingPath", err)
		}
		var mpe *MissingPathError
		if !errors.As(err, &mpe) {
			t.Fatalf("error %v should be a *MissingPathError", err)
		}
		if mpe.Path != "person.weight" {
			t.Errorf("path = %q, want %q", mpe.Path, "person.weight")
		}
		if !strings.Contains(err.Error(), `"person.weight"`) {
			t.Errorf("error %q should name the path", err.Error())
		}
	})

	t.Run("lenient", func(t *testing.T) {
		e := NewEngine(WithMissingPath(MissingPathLenient))
		got, err := e.Compile(tmpl, vars)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != "<p>Hello, !</p>" {
			t.Errorf("got %q, want %q", got, "<p>Hello, !</p>")
		}
	})

	t.Run("path through a leaf", func(t *testing.T) {
		_, err := Compile("{{ person.name.first }}", vars)
		if !errors.Is(err, ErrMissingPath) {
			t.Errorf("expected ErrMissingPath, got %v", err)
		}
	})

	t.Run("error reports line", func(t *testing.T) {
		_, err := Compile("ok\n{{ missing }}", vars)
		if err == nil || !strings.Contains(err.Error(), "line 2") {
			t.Errorf("expected line 2 in error, got %v", err)
		}
	})
}

func TestEngine_Compile_ControlFlow(t *testing.T) {
	e := NewEngine()

	tests := []struct {
		name      string
		template  string
		variables Variables
		want      string
	}{
		{
			name:      "greater than true",
			template:  "{% if x > 10 %}A{% endif %}",
			variables: Variables{"x": 15},
			want:      "A",
		},
		{
			name:      "greater than false",
			template:  "{% if x > 10 %}A{% endif %}",
			variables: Variables{"x": 5},
			want:      "",
		},
		{
			name:      "else branch taken",
			template:  "{% if x < 10 %}A{% else %}B{% endif %}",
			variables: Variables{"x": 15},
			want:      "B",
		},
		{
			name:      "else branch skipped",
			template:  "{% if x < 10 %}A{% else %}B{% endif %}",
			variables: Variables{"x": 5},
			want:      "A",
		},
		{
			name:      "surrounding text kept",
			template:  "<{% if x %}yes{% endif %}>",
			variables: Variables{"x": false},
			want:      "<>",
		},
		{
			name:      "nested outer true inner false",
			template:  "<{% if a %}A{% if b %}B{% endif %}C{% endif %}>",
			variables: Variables{"a": true, "b": false},
			want:      "<AC>",
		},
		{
			name:      "nested outer false",
			template:  "<{% if a %}A{% if b %}B{% else %}D{% endif %}C{% endif %}>",
			variables: Variables{"a": false, "b": false},
			want:      "<>",
		},
		{
			name:      "nested else inside taken branch",
			template:  "{% if a %}{% if b %}B{% else %}D{% endif %}{% else %}E{% endif %}",
			variables: Variables{"a": true, "b": false},
			want:      "D",
		},
		{
			name:      "numeric string compared with number",
			template:  "{% if x > 10 %}yes{% endif %}",
			variables: Variables{"x": "15"},
			want:      "yes",
		},
		{
			name:      "true string as sole condition",
			template:  "{% if flag %}on{% endif %}",
			variables: Variables{"flag": "true"},
			want:      "on",
		},
		{
			name:      "false string as sole condition",
			template:  "{% if flag %}on{% else %}off{% endif %}",
			variables: Variables{"flag": "false"},
			want:      "off",
		},
		{
			name:      "string equality",
			template:  `{% if name == "Ryan" %}hi {{ name }}{% endif %}`,
			variables: Variables{"name": "Ryan"},
			want:      "hi Ryan",
		},
		{
			name:      "loose equality across types",
			template:  `{% if x == "15" %}same{% endif %}`,
			variables: Variables{"x": 15},
			want:      "same",
		},
		{
			name:      "not equal",
			template:  `{% if status != "done" %}pending{% endif %}`,
			variables: Variables{"status": "open"},
			want:      "pending",
		},
		{
			name:      "variable on both sides",
			template:  "{% if a.price >= b.price %}ge{% endif %}",
			variables: Variables{"a": Variables{"price": 10}, "b": Variables{"price": 10}},
			want:      "ge",
		},
		{
			name:      "malformed operator",
			template:  "{% if x >> 10 %}A{% endif %}",
			variables: Variables{"x": 15},
			want:      "",
		},
		{
			name:      "too many tokens",
			template:  "{% if x > 10 extra %}A{% else %}B{% endif %}",
			variables: Variables{"x": 15},
			want:      "B",
		},
		{
			name:      "elseif text passes through",
			template:  "{% if x %}A{% elseif y %}B{% endif %}",
			variables: Variables{"x": true},
			want:      "A{% elseif y %}B",
		},
		{
			name:      "unknown tag is text",
			template:  "{% raw %}",
			variables: Variables{},
			want:      "{% raw %}",
		},
		{
			name:      "unterminated tag is text",
			template:  "{% if x",
			variables: Variables{"x": true},
			want:      "{% if x",
		},
		{
			name:      "stray endif is ignored",
			template:  "a{% endif %}b",
			variables: Variables{},
			want:      "ab",
		},
		{
			name:      "unclosed block runs to the end",
			template:  "{% if x %}\nA\nB",
			variables: Variables{"x": true},
			want:      "A\nB",
		},
		{
			name:      "unclosed false block drops the rest",
			template:  "head\n{% if x %}\nA\nB",
			variables: Variables{"x": false},
			want:      "head",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.Compile(tt.template, tt.variables)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEngine_Compile_MultiLineBlocks(t *testing.T) {
	tests := []struct {
		name      string
		template  string
		variables Variables
		want      string
	}{
		{
			name: "renders content when the condition is true",
			template: strings.Join([]string{
				"<div>",
				"{% if x > 10 %}",
				"  <h1>The value of x is {{ x }}.</h1>",
				"{% endif %}",
				"<p>Hello, {{ name }}!</p>",
				"</div>",
				"    ",
			}, "\n"),
			variables: Variables{"x": 15, "name": "Alice"},
			want:      "<div>\n\n  <h1>The value of x is 15.</h1>\n\n<p>Hello, Alice!</p>\n</div>",
		},
		{
			name: "skips content when the condition is false",
			template: strings.Join([]string{
				"<div>",
				"{% if x < 10 %}",
				"  <h1>The value of x is {{ x }}.</h1>",
				"{% endif %}",
				"  <p>Hello, {{ name }}!</p>",
				"</div>",
				"    ",
			}, "\n"),
			variables: Variables{"x": 15, "name": "Alice"},
			want:      "<div>\n\n\n\n  <p>Hello, Alice!</p>\n</div>",
		},
		{
			name: "renders the else content when the condition is false",
			template: strings.Join([]string{
				"<div>",
				"{% if x < 10 %}",
				"  <h1>The value of x is {{ x }}.</h1>",
				"{% else %}",
				"  <h1>The value of x is not {{ x }}.</h1>",
				"{% endif %}",
				"  <p>Hello, {{ name }}!</p>",
				"</div>",
				"    ",
			}, "\n"),
			variables: Variables{"x": 15, "name": "Alice"},
			want:      "<div>\n\n\n\n  <h1>The value of x is not 15.</h1>\n\n  <p>Hello, Alice!</p>\n</div>",
		},
		{
			name: "skips the else content when the condition is true",
			template: strings.Join([]string{
				"{% if x > 10 %}",
				"big",
				"{% else %}",
				"small",
				"{% endif %}",
			}, "\n"),
			variables: Variables{"x": 15},
			want:      "big",
		},
		{
			name: "object path in condition",
			template: strings.Join([]string{
				"<div>",
				"{% if variant.price > 10 %}",
				"  <h1>The value of x is {{ variant.price }}.</h1>",
				"{% endif %}",
				"<p>Hello, {{ name }}!</p>",
				"</div>",
			}, "\n"),
			variables: Variables{"variant": Variables{"price": 1500}, "name": "Alice"},
			want:      "<div>\n\n  <h1>The value of x is 1500.</h1>\n\n<p>Hello, Alice!</p>\n</div>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Compile(tt.template, tt.variables)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEngine_Compile_SuppressedBranchesNotResolved(t *testing.T) {
	tests := []struct {
		name     string
		template string
		want     string
	}{
		{
			name:     "interpolation in false branch",
			template: "{% if off %}{{ missing }}{% endif %}ok",
			want:     "ok",
		},
		{
			name:     "condition in false branch",
			template: "{% if off %}{% if missing.x > 1 %}X{% endif %}{% endif %}done",
			want:     "done",
		},
		{
			name:     "multi-line false branch",
			template: "{% if off %}\n{{ missing }}\n{% endif %}\nok",
			want:     "ok",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Compile(tt.template, Variables{"off": false})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEngine_Compile_LenientOrderingAgainstMissing(t *testing.T) {
	e := NewEngine(WithMissingPath(MissingPathLenient))

	for _, op := range []string{">", ">=", "<", "<="} {
		t.Run(op, func(t *testing.T) {
			got, err := e.Compile("{% if missing "+op+" 10 %}A{% else %}B{% endif %}", Variables{})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != "B" {
				t.Errorf("got %q, want %q", got, "B")
			}
		})
	}
}

func TestEngine_Compile_StrictConditionMissingPath(t *testing.T) {
	_, err := Compile("{% if missing > 10 %}A{% endif %}", Variables{})
	if !errors.Is(err, ErrMissingPath) {
		t.Errorf("expected ErrMissingPath, got %v", err)
	}
}

func TestEngine_Compile_LogsUnbalancedBlocks(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)
	e := NewEngine(WithLogger(logger))

	if _, err := e.Compile("{% if x %}open", Variables{"x": true}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), "unclosed if blocks") {
		t.Errorf("expected unclosed block log, got %q", buf.String())
	}

	buf.Reset()
	if _, err := e.Compile("x{% endif %}", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), `"stray_endifs":1`) {
		t.Errorf("expected stray endif log, got %q", buf.String())
	}
}

func TestEngine_Compile_Concurrent(t *testing.T) {
	e := NewEngine()
	tmpl := "{% if n > 50 %}high{% else %}low{% endif %} {{ n }}"

	var wg sync.WaitGroup
	errs := make(chan error, 100)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			want := "low"
			if n > 50 {
				want = "high"
			}
			got, err := e.Compile(tmpl, Variables{"n": n})
			if err != nil {
				errs <- err
				return
			}
			if !strings.HasPrefix(got, want+" ") {
				errs <- errors.New("unexpected output " + got)
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
}

func TestEngine_Parse(t *testing.T) {
	e := NewEngine()

	tests := []struct {
		name     string
		template string
		wantVars []string
		wantErr  bool
	}{
		{
			name:     "simple variable",
			template: "Hello, {{name}}!",
			wantVars: []string{"name"},
		},
		{
			name:     "dotted paths and duplicates",
			template: "{{ person.name }} {{person.name}} {{ id }}",
			wantVars: []string{"person.name", "id"},
		},
		{
			name:     "condition operands in order",
			template: "{% if x > 10 %}{{ name }}{% endif %}",
			wantVars: []string{"x", "name"},
		},
		{
			name:     "literals excluded",
			template: `{% if "a" == b %}{% endif %}{% if 3 < c.d %}{% endif %}{% if true %}{% endif %}`,
			wantVars: []string{"b", "c.d"},
		},
		{
			name:     "multi-line",
			template: "{% if flag %}\n{{ a }}\n{% else %}\n{{ b }}\n{% endif %}",
			wantVars: []string{"flag", "a", "b"},
		},
		{
			name:     "unknown operator lists nothing",
			template: "{% if x >> 10 %}A{% endif %}{{ y }}",
			wantVars: []string{"y"},
		},
		{
			name:     "quoted literal with a space lists nothing",
			template: `{% if name == "hello world" %}B{% endif %}`,
			wantVars: nil,
		},
		{
			name:     "extra spacing lists nothing",
			template: "{% if a  == b %}{% endif %}{% if c d %}{% endif %}",
			wantVars: nil,
		},
		{
			name:     "empty template",
			template: "",
			wantErr:  true,
		},
		{
			name:     "no variables",
			template: "Plain text only",
			wantVars: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vars, err := e.Parse(tt.template)
			if tt.wantErr {
				if !errors.Is(err, ErrEmpty) {
					t.Fatalf("expected ErrEmpty, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !equalSlices(vars, tt.wantVars) {
				t.Errorf("got %v, want %v", vars, tt.wantVars)
			}
		})
	}
}

// Every path Parse reports is one Compile would look up, so a template that
// compiles under the strict policy always passes ValidateVariables.
func TestEngine_Parse_AgreesWithCompile(t *testing.T) {
	e := NewEngine()
	templates := []string{
		`{% if x >> 10 %}A{% endif %}{% if name == "hello world" %}B{% endif %}`,
		"{% if a b %}x{% endif %}{% if %}y{% endif %}",
		"{% if 1 < 2 %}{% endif %}",
	}

	for _, tmpl := range templates {
		t.Run(tmpl, func(t *testing.T) {
			if _, err := e.Compile(tmpl, Variables{}); err != nil {
				t.Fatalf("compile: %v", err)
			}
			required, err := e.Parse(tmpl)
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			if err := ValidateVariables(required, Variables{}); err != nil {
				t.Errorf("ValidateVariables(%v) = %v", required, err)
			}
		})
	}
}

func TestValidateVariables(t *testing.T) {
	tests := []struct {
		name     string
		required []string
		provided Variables
		wantErr  bool
		errVar   string
	}{
		{
			name:     "all provided",
			required: []string{"name", "person.age"},
			provided: Variables{"name": "Alice", "person": Variables{"age": 30}},
			wantErr:  false,
		},
		{
			name:     "missing nested",
			required: []string{"name", "person.age"},
			provided: Variables{"name": "Alice", "person": Variables{}},
			wantErr:  true,
			errVar:   "person.age",
		},
		{
			name:     "empty required",
			required: []string{},
			provided: Variables{},
			wantErr:  false,
		},
		{
			name:     "nil provided",
			required: []string{"name"},
			provided: nil,
			wantErr:  true,
			errVar:   "name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateVariables(tt.required, tt.provided)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !errors.Is(err, ErrVariable) {
					t.Errorf("error should wrap ErrVariable")
				}
				if !strings.Contains(err.Error(), tt.errVar) {
					t.Errorf("error should contain variable name %q", tt.errVar)
				}
			} else if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func equalSlices(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
