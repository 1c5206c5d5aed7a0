package domain

import "fmt"

// Severity grades a diagnostic. Only warnings reach the caller; fatal problems
// are returned as errors.
type Severity string

const (
	SeverityWarning Severity = "warning"
)

// Stage names the pipeline step that produced a diagnostic.
type Stage string

const (
	StageImport   Stage = "import"
	StageSchema   Stage = "schema"
	StageNames    Stage = "names"
	StageSettings Stage = "settings"
	StageGenerate Stage = "generate"
	StageLower    Stage = "lower"
	StageConvert  Stage = "convert"
	StageIntents  Stage = "intents"
)

// Diagnostic is a non-fatal finding collected during compilation.
type Diagnostic struct {
	Severity Severity `json:"severity"`
	Stage    Stage    `json:"stage"`
	Node     string   `json:"node,omitempty"`
	Message  string   `json:"message"`
}

func (d Diagnostic) String() string {
	if d.Node != "" {
		return fmt.Sprintf("%s [%s] %s: %s", d.Severity, d.Stage, d.Node, d.Message)
	}
	return fmt.Sprintf("%s [%s] %s", d.Severity, d.Stage, d.Message)
}
