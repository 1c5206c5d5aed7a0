package intents

import (
	"fmt"
	"strings"
	"unicode"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/aretw0/arbor/pkg/domain"
)

// DefaultChannel receives outputs without a channel digit.
const DefaultChannel = "1"

const itemSeparator = "%%"

// RawOutput is the output side of one spreadsheet row.
type RawOutput struct {
	Text    string
	Buttons string
	Jump    string
}

// IntentData collects everything one intent contributes to the dialog.
type IntentData struct {
	Alternatives []string
	Channels     *orderedmap.OrderedMap[string, []string]
	Variables    *orderedmap.OrderedMap[string, string]
	Buttons      *orderedmap.OrderedMap[string, string]
	JumpTarget   string
	JumpSelector string
}

// NewIntentData returns an empty IntentData.
func NewIntentData() *IntentData {
	return &IntentData{
		Channels:  orderedmap.New[string, []string](),
		Variables: orderedmap.New[string, string](),
		Buttons:   orderedmap.New[string, string](),
	}
}

// AddAlternative records an example utterance.
func (d *IntentData) AddAlternative(s string) {
	if s = strings.TrimSpace(s); s != "" {
		d.Alternatives = append(d.Alternatives, s)
	}
}

// AddChannelOutput appends an output to a channel.
func (d *IntentData) AddChannelOutput(channel, output string) {
	values, _ := d.Channels.Get(channel)
	d.Channels.Set(channel, append(values, output))
}

// HasOutput reports whether a node should be generated for the intent.
func (d *IntentData) HasOutput() bool {
	return d.Channels.Len() > 0 || d.Buttons.Len() > 0
}

// AddRawOutput parses a raw output. Jump labels resolve through labels, which
// maps a label to a node name; unknown labels are reported, not fatal.
func (d *IntentData) AddRawOutput(raw RawOutput, labels map[string]string) []domain.Diagnostic {
	var diags []domain.Diagnostic
	for _, item := range strings.Split(raw.Text, itemSeparator) {
		if item == "" {
			continue
		}
		switch item[0] {
		case '$':
			d.addVariables(item[1:])
		case 'B':
			d.addButtons(item[1:])
		case ':':
			diags = append(diags, d.setJump(item[1:], labels)...)
		default:
			d.addChannel(item)
		}
	}
	if raw.Buttons != "" {
		d.addButtons(raw.Buttons)
	}
	if raw.Jump != "" {
		diags = append(diags, d.setJump(raw.Jump, labels)...)
	}
	return diags
}

func (d *IntentData) addVariables(s string) {
	for _, assignment := range strings.Split(s, ";") {
		kv := strings.Split(assignment, "=")
		if len(kv) == 2 {
			d.Variables.Set(kv[0], kv[1])
		}
	}
}

func (d *IntentData) addButtons(s string) {
	for _, button := range strings.Split(s, ";") {
		kv := strings.Split(button, "=")
		if len(kv) == 2 {
			d.Buttons.Set(strings.TrimSpace(kv[0]), strings.TrimSpace(kv[1]))
		}
	}
}

func (d *IntentData) addChannel(item string) {
	channel, value := DefaultChannel, item
	if r := []rune(item); unicode.IsDigit(r[0]) {
		channel, value = string(r[0]), string(r[1:])
	}
	d.AddChannelOutput(channel, value)
}

// setJump accepts label, b_label, c_label. Any other x_ prefix is stripped
// and keeps the user_input selector.
func (d *IntentData) setJump(jump string, labels map[string]string) []domain.Diagnostic {
	selector, label := domain.SelectorUserInput, jump
	if len(jump) > 2 && jump[1] == '_' {
		label = jump[2:]
		switch jump[0] {
		case 'b':
			selector = domain.SelectorBody
		case 'c':
			selector = domain.SelectorCondition
		}
	}

	target, ok := labels[label]
	if !ok {
		return []domain.Diagnostic{{
			Severity: domain.SeverityWarning,
			Stage:    domain.StageIntents,
			Message:  fmt.Sprintf("jump to undefined label %q", label),
		}}
	}
	d.JumpTarget, d.JumpSelector = target, selector
	return nil
}
