package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/muesli/termenv"

	"github.com/aretw0/arbor/pkg/domain"
)

// Report builds a markdown summary of a compilation.
func Report(source string, res *domain.Result) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", source)

	byStage := make(map[domain.Stage]int)
	for _, d := range res.Diagnostics {
		byStage[d.Stage]++
	}
	roots := 0
	jumps := 0
	for _, r := range res.Records {
		if r.Parent == "" {
			roots++
		}
		if r.GoTo != nil {
			jumps++
		}
	}

	sb.WriteString("| | |\n|---|---|\n")
	fmt.Fprintf(&sb, "| records | %d |\n", len(res.Records))
	fmt.Fprintf(&sb, "| top-level nodes | %d |\n", roots)
	fmt.Fprintf(&sb, "| jumps | %d |\n", jumps)
	fmt.Fprintf(&sb, "| warnings | %d |\n\n", len(res.Diagnostics))

	if len(res.Records) > 0 {
		sb.WriteString("## Records\n\n")
		sb.WriteString("| node | type | conditions | parent |\n|---|---|---|---|\n")
		for _, r := range res.Records {
			fmt.Fprintf(&sb, "| %s | %s | %s | %s |\n",
				cell(r.DialogNode), cell(r.Type), cell(r.Conditions), cell(r.Parent))
		}
		sb.WriteString("\n")
	}

	if len(res.Diagnostics) > 0 {
		sb.WriteString("## Warnings\n\n")
		stages := make([]string, 0, len(byStage))
		for s := range byStage {
			stages = append(stages, string(s))
		}
		sort.Strings(stages)
		for _, s := range stages {
			fmt.Fprintf(&sb, "### %s (%d)\n\n", s, byStage[domain.Stage(s)])
			for _, d := range res.Diagnostics {
				if string(d.Stage) != s {
					continue
				}
				if d.Node != "" {
					fmt.Fprintf(&sb, "- `%s`: %s\n", d.Node, d.Message)
				} else {
					fmt.Fprintf(&sb, "- %s\n", d.Message)
				}
			}
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

func cell(s string) string {
	if s == "" {
		return "-"
	}
	return strings.ReplaceAll(s, "|", `\|`)
}

// FormatDiagnostic renders a diagnostic as one colored line.
func FormatDiagnostic(p termenv.Profile, d domain.Diagnostic) string {
	severity := p.String(string(d.Severity)).Foreground(p.Color("#f59e0b")).Bold()
	stage := p.String("[" + string(d.Stage) + "]").Faint()
	if d.Node != "" {
		node := p.String(d.Node).Foreground(p.Color("#38bdf8"))
		return fmt.Sprintf("%s %s %s: %s", severity, stage, node, d.Message)
	}
	return fmt.Sprintf("%s %s %s", severity, stage, d.Message)
}
