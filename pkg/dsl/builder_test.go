package dsl_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/dsl"
)

func compile(t *testing.T, b *dsl.Builder) *domain.Result {
	t.Helper()
	res, err := arbor.New().Compile(context.Background(), b.Build(), t.TempDir())
	require.NoError(t, err)
	return res
}

func find(t *testing.T, res *domain.Result, name string) domain.Record {
	t.Helper()
	rec, ok := res.Find(name)
	require.True(t, ok, "record %s not found in %v", name, res.Names())
	return rec
}

func TestBuilder_SimpleFlow(t *testing.T) {
	b := dsl.New()

	b.Node("welcome").
		Condition("welcome").
		Text("Hello! Do you want a coffee?").
		Context("visited", "true").
		Child("coffee_yes", func(n *dsl.NodeBuilder) {
			n.Type("yes").Text("Coming right up.")
		}).
		Child("coffee_no", func(n *dsl.NodeBuilder) {
			n.Type("no").Text("Maybe later.").Goto("welcome", dsl.SelectorBody)
		})

	b.Node("fallback").
		Condition("anything_else").
		Text("Sorry.", "Come again?")

	res := compile(t, b)
	assert.Len(t, res.Records, 4)
	assert.Empty(t, res.Diagnostics)

	welcome := find(t, res, "welcome")
	assert.Equal(t, "welcome", welcome.Conditions)
	assert.Empty(t, welcome.Parent)

	yes := find(t, res, "coffee_yes")
	assert.Equal(t, "welcome", yes.Parent)
	assert.Equal(t, domain.ConditionYes, yes.Conditions)

	no := find(t, res, "coffee_no")
	assert.Equal(t, "coffee_yes", no.PreviousSibling)
	require.NotNil(t, no.GoTo)
	assert.Equal(t, domain.GoTo{DialogNode: "welcome", Selector: domain.SelectorBody}, *no.GoTo)

	fallback := find(t, res, "fallback")
	assert.Equal(t, "welcome", fallback.PreviousSibling)

	var out bytes.Buffer
	require.NoError(t, domain.EncodeRecords(&out, []domain.Record{fallback, welcome}))
	assert.Contains(t, out.String(), `"Come again?"`)
	assert.Contains(t, out.String(), `"visited": "true"`)
}

func TestBuilder_NodeIsReused(t *testing.T) {
	b := dsl.New()
	first := b.Node("a").Condition("#a")
	again := b.Node("a").Condition("#b")

	assert.Same(t, first, again)
	assert.Equal(t, "a", again.Name())

	res := compile(t, b)
	require.Len(t, res.Records, 1)
	assert.Equal(t, "#b", res.Records[0].Conditions, "condition is replaced, not duplicated")
}

func TestBuilder_Settings(t *testing.T) {
	b := dsl.New().Settings("abort", map[string]string{"on": "true"})
	b.Node("start").Condition("#start")
	b.Node("else").Condition("anything_else")

	res := compile(t, b)
	assert.Equal(t, []string{"start", "ABORT_node_0", "else"}, res.Names())
}

func TestBuilder_SlotsAndResponses(t *testing.T) {
	b := dsl.New()
	b.Node("book").
		Condition("#book").
		Slot("when", "$date", "@sys-date").
		Text("Booked.").
		Response("morning", "$date < '12:00'", "See you in the morning.")

	res := compile(t, b)
	book := find(t, res, "book")
	assert.Equal(t, "frame", book.Type)

	slot := find(t, res, "when")
	assert.Equal(t, "$date", slot.Variable)
	assert.Equal(t, "book", slot.Parent)

	morning := find(t, res, "morning")
	assert.Equal(t, "response_condition", morning.Type)
}

func TestBuilder_BuildIsIsolated(t *testing.T) {
	b := dsl.New()
	b.Node("a")
	doc := b.Build()
	b.Node("b")

	assert.Len(t, doc.Root().ChildElements(), 1)
	assert.Len(t, b.Build().Root().ChildElements(), 2)

	var out bytes.Buffer
	_, err := b.WriteTo(&out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), `<?xml version="1.0" encoding="UTF-8"?>`)
	assert.Contains(t, out.String(), `<node name="b"/>`)
}
