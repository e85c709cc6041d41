package provenance

import "errors"

// Sentinel kinds for ledger errors.
var (
	ErrDuplicateProposal = errors.New("skill already has a proposal")
	ErrUnknownSkill      = errors.New("skill has no provenance")
	ErrInvalidTransition = errors.New("decision must be later than the latest entry")
	ErrInvalidAction     = errors.New("action is not a human decision")
	ErrInvalidActor      = errors.New("invalid decision actor")
)
