package domain

import (
	"errors"
	"fmt"
)

// ErrDuplicateName is returned when two nodes declare the same identifier.
var ErrDuplicateName = errors.New("duplicate node name")

// ErrRepeatWithoutTarget is returned when repeat nodes must be generated in a
// scope that has no node to loop back to.
var ErrRepeatWithoutTarget = errors.New("repeat settings without a loop target")

// ErrImport is returned when an imported fragment cannot be read or parsed.
var ErrImport = errors.New("import failed")

// ErrImportCycle is returned when a fragment imports itself, directly or not.
// It wraps ErrImport.
var ErrImportCycle = fmt.Errorf("%w: import cycle", ErrImport)

// ErrImportOutsideBase is returned when an import path leaves the base
// directory of the dialog. It wraps ErrImport.
var ErrImportOutsideBase = fmt.Errorf("%w: path outside the base directory", ErrImport)

// NameError reports an identifier containing characters outside [A-Za-z0-9_-].
type NameError struct {
	Name string
}

func (e *NameError) Error() string {
	return fmt.Sprintf("illegal node name %q: only alphanumerics, '_' and '-' are allowed", e.Name)
}

// ErrArtifactNotFound is returned by artifact stores when a name is unknown.
var ErrArtifactNotFound = errors.New("artifact not found")
