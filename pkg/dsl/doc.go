/*
Package dsl builds dialog authoring trees in Go instead of hand-written XML.

The builder produces the same *etree.Document the compiler reads from disk,
so generated dialogs go through imports, settings and lowering exactly like
authored ones. This is useful for tests, generators and small bots that do
not want to ship XML files.

Example usage:

	b := dsl.New()

	b.Node("welcome").
		Condition("welcome").
		Text("Hello! Do you want a coffee?").
		Child("coffee_yes", func(n *dsl.NodeBuilder) {
			n.Type("yes").Text("Coming right up.")
		}).
		Child("coffee_no", func(n *dsl.NodeBuilder) {
			n.Type("no").Text("Maybe later.").Goto("welcome", dsl.SelectorBody)
		})

	b.Node("fallback").
		Condition("anything_else").
		Text("Sorry, I did not get that.")

	res, err := arbor.New().Compile(ctx, b.Build(), ".")
*/
package dsl
