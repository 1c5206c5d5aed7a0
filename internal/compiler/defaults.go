package compiler

import "github.com/beevik/etree"

// DefaultRepeatAttempts is used when repeat settings carry no <attempts>.
const DefaultRepeatAttempts = 3

// Default messages of the control nodes.
const (
	DefaultAbortMessage       = "Returning to the main menu."
	DefaultAbortMessageCannot = "You are already in the main menu."

	DefaultAgainMessage       = "Repeating current step again."
	DefaultAgainMessageCannot = "You are in the main menu, no step to repeat."

	DefaultBackMessage       = "Returning to the previsous step."
	DefaultBackMessageCannot = "Can't go back because you are in the main menu."
	DefaultBackMessageToMain = "Returning back to the main menu."
)

// Repeat template sets, selected with the templates attribute.
var repeatTemplates = map[string][]string{
	"default": {
		`<express-as type=\"Apology\">Sorry, I do not understand,</express-as> try it again.`,
		`<express-as type=\"Apology\">Sorry, I still do not understand,</express-as> please try to rephrase what you want.`,
		`<express-as type=\"Apology\">Sorry, we do not understand each other.</express-as> Returning to the main menu.`,
	},
	"yes-no": {
		`Please, write YES or NO.`,
		`<express-as type=\"Apology\">Sorry, I still do not understand.</express-as> Please, write YES or NO.`,
		`<express-as type=\"Apology\">Sorry, you repeatedly did not write YES or NO.</express-as> Returning to the main menu.`,
	},
}

const (
	placeholderBuildTime = "internal_build_date_time"
	buildTimeLayout      = "06-01-02-15-04"
)

func defaultSettings(attrs map[string]string, order []string, messages ...string) *Settings {
	s := &Settings{attrs: make(map[string]string)}
	for _, k := range order {
		s.setAttr(k, attrs[k])
	}
	for i := 0; i+1 < len(messages); i += 2 {
		s.children = append(s.children, textElement(messages[i], messages[i+1]))
	}
	return s
}

// RootDirectives returns the settings inherited by the top-level scope. Abort,
// again, back and generic are off but propagate; repeat is on and does not
// propagate, so it only acts where a node-owned scope declares it.
func RootDirectives() Directives {
	offPropagate := map[string]string{"on": "false", "propagate": "true"}
	keys := []string{"propagate", "on"}

	var d Directives
	d[DirectiveAbort] = defaultSettings(offPropagate, keys,
		"message", DefaultAbortMessage,
		"message_cannot", DefaultAbortMessageCannot)
	d[DirectiveAgain] = defaultSettings(offPropagate, keys,
		"message", DefaultAgainMessage,
		"message_cannot", DefaultAgainMessageCannot)
	d[DirectiveBack] = defaultSettings(offPropagate, keys,
		"message", DefaultBackMessage,
		"message_cannot", DefaultBackMessageCannot,
		"message_to_main", DefaultBackMessageToMain)
	d[DirectiveGeneric] = defaultSettings(offPropagate, keys)
	d[DirectiveRepeat] = defaultSettings(map[string]string{"propagate": "false"}, []string{"propagate"})
	return d
}

func defaultRepeatOutputs(set string) []*etree.Element {
	texts, ok := repeatTemplates[set]
	if !ok {
		texts = repeatTemplates["default"]
	}
	out := make([]*etree.Element, 0, len(texts))
	for _, t := range texts {
		out = append(out, textElement(tagOutput, t))
	}
	return out
}
