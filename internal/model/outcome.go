package model

// Outcome tells a caller what a lookup or mutation did.
// Errors are reserved for structurally invalid input and I/O failures.
type Outcome int

const (
	OutcomeNotFound Outcome = iota
	OutcomeFound
	OutcomeCreated
	OutcomeAlreadyExists
	OutcomeUpdated
	OutcomeDeleted
)

var outcomeNames = map[Outcome]string{
	OutcomeNotFound:      "not_found",
	OutcomeFound:         "found",
	OutcomeCreated:       "created",
	OutcomeAlreadyExists: "already_exists",
	OutcomeUpdated:       "updated",
	OutcomeDeleted:       "deleted",
}

func (o Outcome) String() string {
	if s, ok := outcomeNames[o]; ok {
		return s
	}
	return "unknown"
}

// Changed reports whether the operation mutated state.
func (o Outcome) Changed() bool {
	return o == OutcomeCreated || o == OutcomeUpdated || o == OutcomeDeleted
}
