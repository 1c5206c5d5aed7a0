package validator

import (
	"fmt"
	"strings"

	"github.com/aretw0/arbor/pkg/domain"
)

// ValidateRecords checks the links of a compiled dialog: every goto target,
// parent and previous sibling must name a record, siblings must share a
// parent, and names must be unique.
func ValidateRecords(records []domain.Record) error {
	byName := make(map[string]domain.Record, len(records))
	var errors []string

	for _, r := range records {
		if _, dup := byName[r.DialogNode]; dup {
			errors = append(errors, fmt.Sprintf("Duplicate node: '%s'", r.DialogNode))
			continue
		}
		byName[r.DialogNode] = r
	}

	for _, r := range records {
		if r.Parent != "" {
			if _, ok := byName[r.Parent]; !ok {
				errors = append(errors, fmt.Sprintf("Missing parent '%s' of '%s'", r.Parent, r.DialogNode))
			}
		}

		if r.PreviousSibling != "" {
			prev, ok := byName[r.PreviousSibling]
			switch {
			case !ok:
				errors = append(errors, fmt.Sprintf("Missing previous sibling '%s' of '%s'", r.PreviousSibling, r.DialogNode))
			case prev.Parent != r.Parent:
				errors = append(errors, fmt.Sprintf("Sibling '%s' of '%s' has a different parent", r.PreviousSibling, r.DialogNode))
			}
		}

		// Sink state
		if r.GoTo == nil {
			continue
		}
		if _, ok := byName[r.GoTo.DialogNode]; !ok {
			errors = append(errors, fmt.Sprintf("Missing node: '%s' (goto from '%s')", r.GoTo.DialogNode, r.DialogNode))
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("found %d errors:\n- %s", len(errors), strings.Join(errors, "\n- "))
	}

	return nil
}
