// Package model contains domain models passed between layers.
package model

import "time"

// AlgorithmActor is the actor recorded on every initial proposal.
const AlgorithmActor = "Algorithm"

// Category is one label of the taxonomy a skill can be assigned to.
type Category struct {
	Name          string   `json:"name" yaml:"name"`
	Description   string   `json:"description" yaml:"description"`
	RelatedSkills []string `json:"related_skills" yaml:"related_skills"`
}

// SkillRecord is one unit of work to be categorized. Its current category
// lives in the provenance ledger, never on the record itself.
type SkillRecord struct {
	ID          string    `json:"id"`
	Name        string    `json:"name,omitempty"`   // short label, e.g. "React.js Development"
	Description string    `json:"description"`      // free text, never blank
	RunID       string    `json:"run_id,omitempty"` // ingestion batch
	CreatedAt   time.Time `json:"created_at"`
}

// Submission is a skill waiting in the ingestion queue.
type Submission struct {
	ID          string // dedupe key and skill id
	Name        string
	Description string
	RunID       string
}

// SkillFilter narrows skill listings. Zero values match everything.
type SkillFilter struct {
	RunID  string // exact ingestion batch
	Search string // case-insensitive substring of the skill name
}

// MatchResult scores one category against a description.
type MatchResult struct {
	Category      string   `json:"category"`
	Score         float64  `json:"score"`
	RelatedSkills []string `json:"related_skills"`
}

// Action classifies a provenance entry.
type Action string

// Ledger actions.
const (
	ActionProposed  Action = "Proposed"
	ActionChanged   Action = "Changed"
	ActionValidated Action = "Validated"
)

// IsDecision reports whether a is a human decision.
func (a Action) IsDecision() bool {
	return a == ActionChanged || a == ActionValidated
}

// ProvenanceEntry is one append-only record of who set which category, when.
type ProvenanceEntry struct {
	SkillID   string    `json:"skill_id"`
	Timestamp time.Time `json:"timestamp"`
	Actor     string    `json:"actor"`
	Category  string    `json:"category"`
	Action    Action    `json:"action"`
}

// ReviewState is the workflow position of a skill.
type ReviewState string

// Review states.
const (
	StateUnreviewed  ReviewState = "Unreviewed"
	StateUnderReview ReviewState = "UnderReview"
	StateValidated   ReviewState = "Validated"
	StateReassigned  ReviewState = "Reassigned"
)
