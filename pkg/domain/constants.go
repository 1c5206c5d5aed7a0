package domain

// Conditions understood by the conversational runtime.
const (
	ConditionAnythingElse = "anything_else"
	ConditionYes          = "#CONTROL_YES"
	ConditionNo           = "#CONTROL_NO"
	ConditionAbort        = "#CONTROL_ABORT"
	ConditionAgain        = "#CONTROL_AGAIN"
	ConditionBack         = "#CONTROL_BACK"

	// ConditionTriesPrefix marks attempt-counter fallbacks written by hand.
	ConditionTriesPrefix = "$tries"
)

// Jump selectors.
const (
	SelectorUserInput = "user_input"
	SelectorBody      = "body"
	SelectorCondition = "condition"
)

// TargetFirstSibling is the goto target that resolves to the first node of the
// sibling list the jumping node belongs to.
const TargetFirstSibling = "::FIRST_SIBLING"

// AgainMessage is the output text of synthesized "again" nodes; the runtime
// substitutes it with the message of the repeated step.
const AgainMessage = "$againMessage"
