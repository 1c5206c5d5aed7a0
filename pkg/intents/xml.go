package intents

import (
	"fmt"
	"io"
	"strings"

	"github.com/beevik/etree"

	"github.com/aretw0/arbor/pkg/domain"
)

// channelTags maps output channels other than the text channel to their
// output element.
var channelTags = map[string]string{
	"2": "timeout",
	"3": "sound",
	"4": "tts",
	"5": "talking_head",
	"6": "paper_head",
	"7": "graphics",
	"8": "url",
}

// ToXML renders the dialog as a <nodes> document. Intents without outputs
// or buttons produce no node.
func ToXML(d *Dialog) (*etree.Document, []domain.Diagnostic) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	nodes := doc.CreateElement("nodes")

	var diags []domain.Diagnostic
	for _, intent := range d.order {
		data := d.intents[intent]
		if !data.HasOutput() {
			continue
		}

		name := NodeName(intent)
		node := nodes.CreateElement("node")
		node.CreateAttr("name", name)
		node.CreateElement("condition").SetText(Condition(intent))

		output := node.CreateElement("output")
		for pair := data.Channels.Oldest(); pair != nil; pair = pair.Next() {
			if pair.Key == DefaultChannel {
				textValues := output.CreateElement("textValues")
				for _, v := range pair.Value {
					textValues.CreateElement("values").SetText(v)
				}
				continue
			}
			joined := strings.TrimSpace(strings.Join(pair.Value, " "))
			tag, ok := channelTags[pair.Key]
			if !ok {
				diags = append(diags, domain.Diagnostic{
					Severity: domain.SeverityWarning,
					Stage:    domain.StageIntents,
					Node:     name,
					Message:  fmt.Sprintf("unrecognized channel %s, value: %s", pair.Key, joined),
				})
				continue
			}
			output.CreateElement(tag).SetText(joined)
		}

		if data.Buttons.Len() > 0 {
			generic := output.CreateElement("generic")
			for pair := data.Buttons.Oldest(); pair != nil; pair = pair.Next() {
				options := generic.CreateElement("options")
				options.CreateElement("label").SetText(pair.Key)
				options.CreateElement("value").SetText(pair.Value)
			}
		}

		if data.Variables.Len() > 0 {
			context := node.CreateElement("context")
			for pair := data.Variables.Oldest(); pair != nil; pair = pair.Next() {
				context.CreateElement(pair.Key).SetText(pair.Value)
			}
		}

		if data.JumpTarget != "" && data.JumpSelector != "" {
			gotoEl := node.CreateElement("goto")
			gotoEl.CreateElement("target").SetText(data.JumpTarget)
			gotoEl.CreateElement("selector").SetText(data.JumpSelector)
		}
	}
	return doc, diags
}

// WriteXML renders the dialog and writes it indented.
func WriteXML(w io.Writer, d *Dialog) ([]domain.Diagnostic, error) {
	doc, diags := ToXML(d)
	doc.Indent(4)
	if _, err := doc.WriteTo(w); err != nil {
		return diags, err
	}
	return diags, nil
}
