/*
Package arbor compiles authored XML dialog trees into the flat JSON node list
consumed by a conversational runtime.

# Concept

Dialogs are written as nested <node> elements with conditions, outputs,
context updates and jumps. Authors can split them across files with <import>,
and ask for control nodes (abort, again, back, repeat and generic templates) with
<autogenerate> directives that are inherited down the tree. The compiler
resolves imports, names every node, synthesizes the control nodes and lowers
the result to records with explicit parent, sibling and goto links.

# Pipeline

  - Imports: <import>, <importText> and <replace> substitution.
  - Names: duplicate detection and node_<n> allocation.
  - Settings: field-level merge of inherited autogenerate directives.
  - Generation: control nodes spliced before the catch-all of each scope.
  - Lowering: pre-order flattening into domain.Record values.

Problems that do not stop the compilation (schema violations, missing goto
targets, unknown flag values) are returned as diagnostics in domain.Result.

# Usage

	package main

	import (
		"context"
		"log"
		"os"

		"github.com/aretw0/arbor"
	)

	func main() {
		c := arbor.New()
		res, err := c.CompileFile(context.Background(), "dialog/main.xml")
		if err != nil {
			log.Fatal(err)
		}
		for _, d := range res.Diagnostics {
			log.Println(d)
		}
		if err := arbor.Encode(os.Stdout, res); err != nil {
			log.Fatal(err)
		}
	}
*/
package arbor
