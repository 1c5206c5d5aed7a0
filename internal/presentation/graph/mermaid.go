package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/arbor/pkg/domain"
)

// Overlay marks nodes to highlight on the graph, typically nodes that produced
// diagnostics.
type Overlay struct {
	Flagged []string
}

// OverlayFromDiagnostics flags every node named by a diagnostic.
func OverlayFromDiagnostics(diags []domain.Diagnostic) *Overlay {
	o := &Overlay{}
	for _, d := range diags {
		if d.Node != "" {
			o.Flagged = append(o.Flagged, d.Node)
		}
	}
	return o
}

// synthesized name prefixes, mirrored from the compiler.
var synthesized = []string{"ABORT_", "AGAIN_", "BACK_", "REPEAT_", "GENERIC_"}

func isSynthesized(name string) bool {
	for _, p := range synthesized {
		if strings.HasPrefix(name, p) {
			return true
		}
	}
	return false
}

// GenerateMermaid produces a Mermaid flowchart from compiled records.
// Shapes:
// - Synthesized control node: [[Subroutine]]
// - Slot: [/Parallelogram/]
// - Event handler / response condition: (Rounded)
// - Default: [Rectangle]
//
// Solid edges link a parent to its children, dotted edges follow sibling
// order and thick edges are jumps.
func GenerateMermaid(records []domain.Record, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	known := make(map[string]bool, len(records))
	for _, r := range records {
		known[r.DialogNode] = true
	}

	for _, r := range records {
		safeID := sanitizeMermaidID(r.DialogNode)

		opener, closer := "[", "]"
		switch {
		case isSynthesized(r.DialogNode):
			opener, closer = "[[", "]]"
		case r.Type == domain.KindSlot.String():
			opener, closer = "[/", "/]"
		case r.Type == domain.KindEventHandler.String(), r.Type == domain.KindResponseCondition.String():
			opener, closer = "(", ")"
		}

		label := r.DialogNode
		if r.Conditions != "" {
			label = fmt.Sprintf("%s <br/> %s", r.DialogNode, escapeLabel(r.Conditions))
		}
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", safeID, opener, label, closer))

		if r.Parent != "" {
			sb.WriteString(fmt.Sprintf("    %s --> %s\n", sanitizeMermaidID(r.Parent), safeID))
		}
		if r.PreviousSibling != "" {
			sb.WriteString(fmt.Sprintf("    %s -.-> %s\n", sanitizeMermaidID(r.PreviousSibling), safeID))
		}
		if r.GoTo != nil && known[r.GoTo.DialogNode] {
			arrow := "==>"
			if r.GoTo.Selector != "" {
				arrow = fmt.Sprintf("== \"%s\" ==>", r.GoTo.Selector)
			}
			sb.WriteString(fmt.Sprintf("    %s %s %s\n", safeID, arrow, sanitizeMermaidID(r.GoTo.DialogNode)))
		}
	}

	if overlay != nil && len(overlay.Flagged) > 0 {
		sb.WriteString("\n    %% Overlay Styles\n")
		sb.WriteString("    classDef flagged fill:#fff3e0,stroke:#e65100,stroke-width:2px,color:#000;\n")

		seen := make(map[string]bool)
		for _, id := range overlay.Flagged {
			safeID := sanitizeMermaidID(id)
			if !seen[safeID] && known[id] {
				seen[safeID] = true
				sb.WriteString(fmt.Sprintf("    class %s flagged;\n", safeID))
			}
		}
	}

	return sb.String()
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	return s
}
