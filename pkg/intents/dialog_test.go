package intents_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/arbor/pkg/intents"
)

func TestNodeName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"hello", "hello"},
		{"#hello", "_hello"},
		{"café_crème", "cafe_creme"},
		{"ask price?", "ask price_"},
		{"a-b.c", "a-b_c"},
		{"日本", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, intents.NodeName(tt.in), tt.in)
	}
}

func TestCondition(t *testing.T) {
	assert.Equal(t, "#hello", intents.Condition("hello"))
	assert.Equal(t, "#hello", intents.Condition("#hello"))
}

const sheet = `intent,example,output,buttons,jump
greeting,hi,Hello!%%$visited=true
,hello there,
help,I need help,We can help.%%3beep,,menu
:menu,main_menu
silent,nothing,
`

func TestReadCSV(t *testing.T) {
	d, diags, err := intents.ReadCSV(strings.NewReader(sheet))
	require.NoError(t, err)
	assert.Empty(t, diags)

	assert.Equal(t, []string{"greeting", "help", "silent"}, d.Intents())

	greeting, ok := d.Lookup("greeting")
	require.True(t, ok)
	assert.Equal(t, []string{"hi", "hello there"}, greeting.Alternatives)
	visited, _ := greeting.Variables.Get("visited")
	assert.Equal(t, "true", visited)

	help, _ := d.Lookup("help")
	assert.Equal(t, "main_menu", help.JumpTarget, "labels defined later still resolve")

	silent, _ := d.Lookup("silent")
	assert.False(t, silent.HasOutput())
}

func TestReadCSV_UnknownLabel(t *testing.T) {
	_, diags, err := intents.ReadCSV(strings.NewReader("bye,see you,Bye%%:nowhere\n"))
	require.NoError(t, err)
	require.Len(t, diags, 1)
	assert.Equal(t, "bye", diags[0].Node)
}

func TestReadCSV_Malformed(t *testing.T) {
	_, _, err := intents.ReadCSV(strings.NewReader("a,\"unterminated\n"))
	assert.Error(t, err)
}

func TestWriteExamples(t *testing.T) {
	d, _, err := intents.ReadCSV(strings.NewReader(sheet))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, intents.WriteExamples(&buf, d))
	assert.Equal(t, "greeting,hi\ngreeting,hello there\nhelp,I need help\nsilent,nothing\n", buf.String())
}
