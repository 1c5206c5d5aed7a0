package intents

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/aretw0/arbor/pkg/domain"
)

// Dialog is the set of intents read from a spreadsheet, in first-seen order.
type Dialog struct {
	order   []string
	intents map[string]*IntentData
	// Labels maps jump labels to node names.
	Labels map[string]string
}

// NewDialog returns an empty dialog.
func NewDialog() *Dialog {
	return &Dialog{
		intents: make(map[string]*IntentData),
		Labels:  make(map[string]string),
	}
}

// Intent returns the data of intent, creating it on first use. Every intent
// is also a jump label for its own node.
func (d *Dialog) Intent(intent string) *IntentData {
	if data, ok := d.intents[intent]; ok {
		return data
	}
	data := NewIntentData()
	d.intents[intent] = data
	d.order = append(d.order, intent)

	label := strings.TrimPrefix(intent, "#")
	if _, taken := d.Labels[label]; !taken {
		d.Labels[label] = NodeName(intent)
	}
	return data
}

// Intents returns the intent names in first-seen order.
func (d *Dialog) Intents() []string {
	return d.order
}

// Lookup returns the data of an existing intent.
func (d *Dialog) Lookup(intent string) (*IntentData, bool) {
	data, ok := d.intents[intent]
	return data, ok
}

var (
	illegalNameChars = regexp.MustCompile(`[^a-zA-Z\d\s\-_]`)
	stripMarks       = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))
)

// NodeName derives a node name from an intent: accents are dropped, other
// non-ASCII characters removed and anything outside letters, digits,
// whitespace, '-' and '_' replaced by '_'.
func NodeName(intent string) string {
	s, _, err := transform.String(stripMarks, intent)
	if err != nil {
		s = intent
	}
	s = strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return -1
		}
		return r
	}, s)
	return illegalNameChars.ReplaceAllString(s, "_")
}

// Condition returns the dialog condition matching intent.
func Condition(intent string) string {
	if strings.HasPrefix(intent, "#") {
		return intent
	}
	return "#" + intent
}

// ReadCSV reads a spreadsheet export. Columns are intent, example, raw
// output and the optional buttons and jump columns. A row with an empty
// intent continues the previous intent; a row whose intent is ":label"
// defines a jump label pointing at the node named in column two. A header
// row starting with "intent" is skipped.
//
// Raw outputs are parsed after all rows are read, so jumps may refer to
// labels defined further down.
func ReadCSV(r io.Reader) (*Dialog, []domain.Diagnostic, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	type pending struct {
		intent string
		raw    RawOutput
	}

	d := NewDialog()
	var outputs []pending
	current := ""
	for line := 1; ; line++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read spreadsheet: %w", err)
		}
		cell := func(i int) string {
			if i < len(row) {
				return strings.TrimSpace(row[i])
			}
			return ""
		}

		intent := cell(0)
		if line == 1 && strings.EqualFold(intent, "intent") {
			continue
		}
		if strings.HasPrefix(intent, ":") {
			d.Labels[intent[1:]] = cell(1)
			continue
		}
		if intent == "" {
			intent = current
		}
		if intent == "" {
			continue
		}
		current = intent

		data := d.Intent(intent)
		data.AddAlternative(cell(1))
		raw := RawOutput{Text: cell(2), Buttons: cell(3), Jump: cell(4)}
		if raw != (RawOutput{}) {
			outputs = append(outputs, pending{intent: intent, raw: raw})
		}
	}

	var diags []domain.Diagnostic
	for _, p := range outputs {
		for _, diag := range d.intents[p.intent].AddRawOutput(p.raw, d.Labels) {
			diag.Node = NodeName(p.intent)
			diags = append(diags, diag)
		}
	}
	return d, diags, nil
}

// WriteExamples writes the intent examples as "intent,example" CSV rows.
func WriteExamples(w io.Writer, d *Dialog) error {
	cw := csv.NewWriter(w)
	for _, intent := range d.order {
		name := strings.TrimPrefix(intent, "#")
		for _, alt := range d.intents[intent].Alternatives {
			if err := cw.Write([]string{name, alt}); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}
