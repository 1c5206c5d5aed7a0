package domain

import (
	"encoding/json"
	"io"
)

// Record is one flattened dialog node as consumed by the conversational runtime.
// Every field except DialogNode is omitted from JSON when absent.
type Record struct {
	DialogNode string `json:"dialog_node"`
	Type       string `json:"type,omitempty"`
	EventName  string `json:"event_name,omitempty"`
	Variable   string `json:"variable,omitempty"`
	Conditions string `json:"conditions,omitempty"`

	// Output, Context and Actions hold converted payload trees: nil, string,
	// float64, []any or an ordered object.
	Output  any   `json:"output,omitempty"`
	Context any   `json:"context,omitempty"`
	Actions []any `json:"actions,omitempty"`

	GoTo            *GoTo  `json:"go_to,omitempty"`
	Parent          string `json:"parent,omitempty"`
	PreviousSibling string `json:"previous_sibling,omitempty"`
}

// GoTo is an explicit jump to another dialog node.
type GoTo struct {
	DialogNode string `json:"dialog_node"`
	Selector   string `json:"selector"`
}

// Result is the outcome of a successful compilation.
type Result struct {
	Records     []Record     `json:"records"`
	Diagnostics []Diagnostic `json:"diagnostics,omitempty"`
}

// Names returns the identifiers of all records in output order.
func (r *Result) Names() []string {
	names := make([]string, 0, len(r.Records))
	for _, rec := range r.Records {
		names = append(names, rec.DialogNode)
	}
	return names
}

// Find returns the record with the given identifier.
func (r *Result) Find(name string) (Record, bool) {
	for _, rec := range r.Records {
		if rec.DialogNode == name {
			return rec, true
		}
	}
	return Record{}, false
}

// EncodeRecords writes records as a JSON array indented with four spaces.
func EncodeRecords(w io.Writer, records []Record) error {
	if records == nil {
		records = []Record{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	enc.SetEscapeHTML(false)
	return enc.Encode(records)
}
