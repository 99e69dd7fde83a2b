// Package template compiles small text templates with variable
// interpolation and conditional blocks.
//
// It is meant for embedding: rendering HTML snippets or prompts where a full
// templating engine would be oversized. There are no loops, filters or
// includes, and output is not escaped.
//
// # Syntax
//
// Variables use double braces. Whitespace inside the braces is ignored and
// nested values are addressed with dotted paths:
//
//	<p>Hello, {{ name }}!</p>
//	<p>{{person.name}} is {{ person.age }}</p>
//
// Conditionals compare two operands or test a single operand for
// truthiness. Blocks may span lines and nest:
//
//	{% if cart.total > 100 %}
//	  Free shipping!
//	{% else %}
//	  Shipping: {{ cart.shipping }}
//	{% endif %}
//
//	{% if member %}Welcome back{% endif %}
//
// Supported operators are ==, !=, >, >=, < and <=. Operands are numbers,
// double-quoted strings, true, false or variable paths. Ordering operators
// are false when either operand is empty, zero or false.
//
// String variables that read as numbers or as true/false are converted
// before they are compared, so "15" > 10 holds.
//
// # Missing Variables
//
// By default an undefined path is an error and no output is produced:
//
//	_, err := template.Compile("{{ person.weight }}", vars)
//	// errors.Is(err, template.ErrMissingPath) == true
//
// The lenient policy renders undefined paths as the empty string:
//
//	engine := template.NewEngine(template.WithMissingPath(template.MissingPathLenient))
//	out, _ := engine.Compile("{{ person.weight }}", vars)
//	// out: ""
//
// Malformed conditions never return an error; they evaluate to false.
//
// # Example
//
//	out, err := template.Compile("Hello, {{name}}!", template.Variables{"name": "World"})
//	// out: "Hello, World!"
package template
