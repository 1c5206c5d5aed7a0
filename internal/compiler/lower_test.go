package compiler

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/arbor/pkg/domain"
)

func TestLower_Types(t *testing.T) {
	res := compileString(t, `<nodes>
		<node name="y"><type>yes</type></node>
		<node name="n"><type>no</type></node>
		<node name="d"><type>default</type></node>
		<node name="custom"><type>folder</type></node>
		<node name="f"><condition>#book</condition>
			<slots><slot name="s" variable="$date"><condition>@sys-date</condition></slot></slots>
			<handlers><handler name="h" eventName="focus"><output>When?</output></handler></handlers>
		</node>
		<node name="plain"/>
	</nodes>`)

	tests := []struct {
		name, typ, cond string
	}{
		{"y", "yes", domain.ConditionYes},
		{"n", "no", domain.ConditionNo},
		{"d", "default", domain.ConditionAnythingElse},
		{"custom", "folder", domain.ConditionAnythingElse},
		{"f", "frame", "#book"},
		{"s", "slot", "@sys-date"},
		{"h", "event_handler", ""},
		{"plain", "", domain.ConditionAnythingElse},
	}
	for _, tt := range tests {
		rec := mustFind(t, res, tt.name)
		assert.Equal(t, tt.typ, rec.Type, tt.name)
		assert.Equal(t, tt.cond, rec.Conditions, tt.name)
	}

	s := mustFind(t, res, "s")
	assert.Equal(t, "$date", s.Variable)
	assert.Equal(t, "f", s.Parent)
	h := mustFind(t, res, "h")
	assert.Equal(t, "focus", h.EventName)
	assert.Equal(t, "s", h.PreviousSibling, "slots and handlers share one sibling list")
}

func TestLower_Output(t *testing.T) {
	res := compileString(t, `<nodes>
		<node name="q"><condition>#q</condition>
			<output>Pick one
				<response name="r1"><condition>$a</condition><output>A!</output></response>
				<response name="r2"><output>B!</output></response>
			</output>
			<nodes><node name="child"><condition>#c</condition></node></nodes>
		</node>
		<node name="tv"><condition>#tv</condition>
			<output><textValues><values>a</values><values>b</values></textValues><selection_policy>random</selection_policy></output>
		</node>
	</nodes>`)

	q := mustFind(t, res, "q")
	assert.JSONEq(t, `{"text":"Pick one"}`, toJSON(t, q.Output))
	assert.Equal(t, []string{"r1", "r2", "child"}, siblingsOf(res, "q"), "responses first, then nested nodes")

	r1 := mustFind(t, res, "r1")
	assert.Equal(t, "response_condition", r1.Type)
	assert.Equal(t, "$a", r1.Conditions)
	assert.Equal(t, "", mustFind(t, res, "r2").Conditions)

	tv := mustFind(t, res, "tv")
	assert.Equal(t, `{"text":{"values":["a","b"]},"selection_policy":"random"}`, toJSON(t, tv.Output))
}

func TestLower_ContextAndActions(t *testing.T) {
	res := compileString(t, `<nodes>
		<node name="a"><condition>#a</condition>
			<context><count type="number">3</count><user>null</user></context>
			<actions>
				<action><name>lookup</name><type>client</type><parameters><id>1</id></parameters></action>
				<action><name>log</name></action>
			</actions>
		</node>
	</nodes>`)

	a := mustFind(t, res, "a")
	assert.JSONEq(t, `{"count":3,"user":null}`, toJSON(t, a.Context))
	assert.JSONEq(t, `[{"name":"lookup","type":"client","parameters":{"id":"1"}},{"name":"log"}]`, toJSON(t, a.Actions))
}

func TestLower_Goto(t *testing.T) {
	res := compileString(t, `<nodes>
		<node name="first"><condition>#first</condition></node>
		<node name="loop"><condition>#loop</condition><goto><target>::FIRST_SIBLING</target></goto></node>
		<node name="attr"><condition>#attr</condition><goto selector="condition"><target>first</target></goto></node>
		<node name="child"><condition>#child</condition><goto selector="condition"><target>first</target><selector>body</selector></goto></node>
		<node name="broken"><condition>#broken</condition><goto/></node>
	</nodes>`)

	assert.Equal(t, &domain.GoTo{DialogNode: "first", Selector: "user_input"}, mustFind(t, res, "loop").GoTo)
	assert.Equal(t, &domain.GoTo{DialogNode: "first", Selector: "condition"}, mustFind(t, res, "attr").GoTo)
	assert.Equal(t, &domain.GoTo{DialogNode: "first", Selector: "body"}, mustFind(t, res, "child").GoTo)
	assert.Nil(t, mustFind(t, res, "broken").GoTo)

	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, domain.StageLower, res.Diagnostics[0].Stage)
	assert.Equal(t, "broken", res.Diagnostics[0].Node)
}

func TestLower_GeneratesMissingNames(t *testing.T) {
	res := compileString(t, `<nodes>
		<node name="node_0"><condition>#a</condition><slots><slot variable="$x"/></slots></node>
		<node><condition>#b</condition></node>
	</nodes>`)

	assert.Equal(t, []string{"node_0", "node_2", "node_1"}, res.Names(), "scope nodes are named before slots")
	assert.Equal(t, "node_0", mustFind(t, res, "node_2").Parent, "slot named during lowering")
}

func TestLower_IllegalName(t *testing.T) {
	_, err := New().CompileBytes(context.Background(), []byte(`<nodes>
		<node><name>bad name</name></node>
	</nodes>`), t.TempDir())

	var nameErr *domain.NameError
	require.True(t, errors.As(err, &nameErr))
	assert.Equal(t, "bad name", nameErr.Name)
}

func TestLower_EncodedOutput(t *testing.T) {
	res := compileString(t, `<nodes><node name="hello"><condition>#hello</condition><output>Hi &lt;b&gt;!</output></node></nodes>`)

	var buf bytes.Buffer
	require.NoError(t, domain.EncodeRecords(&buf, res.Records))

	assert.Equal(t, `[
    {
        "dialog_node": "hello",
        "conditions": "#hello",
        "output": {
            "text": "Hi <b>!"
        }
    }
]
`, buf.String())
}
