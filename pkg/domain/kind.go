package domain

// Kind is the resolved type of a dialog node.
type Kind int

const (
	// KindNone means no type was declared or inferred.
	KindNone Kind = iota
	KindDefault
	KindYes
	KindNo
	KindSlot
	KindEventHandler
	KindResponseCondition
	KindFrame
	KindStandard
	// KindOther carries a custom type tag verbatim.
	KindOther
)

var kindNames = map[Kind]string{
	KindDefault:           "default",
	KindYes:               "yes",
	KindNo:                "no",
	KindSlot:              "slot",
	KindEventHandler:      "event_handler",
	KindResponseCondition: "response_condition",
	KindFrame:             "frame",
	KindStandard:          "standard",
}

// ParseKind maps a type tag to its Kind. Unknown non-empty tags yield KindOther.
func ParseKind(s string) Kind {
	if s == "" {
		return KindNone
	}
	for k, name := range kindNames {
		if name == s {
			return k
		}
	}
	return KindOther
}

// String returns the wire name of the kind. KindNone and KindOther have no
// fixed name and return "".
func (k Kind) String() string {
	return kindNames[k]
}

// DefaultCondition returns the condition used when a node declares none.
// The boolean is false when the node carries no condition at all.
func (k Kind) DefaultCondition() (string, bool) {
	switch k {
	case KindNone, KindDefault, KindOther, KindFrame, KindStandard:
		return ConditionAnythingElse, true
	case KindYes:
		return ConditionYes, true
	case KindNo:
		return ConditionNo, true
	case KindSlot, KindEventHandler, KindResponseCondition:
		return "", false
	default:
		return ConditionAnythingElse, true
	}
}
