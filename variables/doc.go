// Package variables builds template variables from data files, YAML front
// matter and command-line assignments.
//
// Supported file formats are JSON, YAML and TOML, chosen by extension:
//
//	vars, err := variables.LoadFile("site.yaml")
//
// Decoded data is normalized to the value kinds the template compiler
// understands: strings, numbers, booleans and nested mappings. Arrays are
// rejected because templates have no way to address them.
//
// Assignments use dotted paths and create intermediate mappings:
//
//	_ = variables.Set(vars, "person.name", "Ryan")
//
// Templates may carry their own defaults in a front matter block:
//
//	---
//	title: Welcome
//	---
//	<h1>{{ title }}</h1>
package variables
