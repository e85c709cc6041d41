// Package types contains the read shapes shared by the service and the API.
package types

import (
	"time"

	"github.com/okian/skillcat/internal/domain/model"
)

// SkillInput is a single skill submitted for categorization.
type SkillInput struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description"`
	RunID       string `json:"run_id,omitempty"`
}

// Ingested is the result of storing and proposing one skill.
type Ingested struct {
	Skill    model.SkillRecord     `json:"skill"`
	Proposal model.ProvenanceEntry `json:"proposal"`
	Matches  []model.MatchResult   `json:"matches"`
}

// SkillItem is one row of a skill listing.
type SkillItem struct {
	ID               string            `json:"id"`
	Name             string            `json:"name,omitempty"`
	RunID            string            `json:"run_id,omitempty"`
	CreatedAt        time.Time         `json:"created_at"`
	State            model.ReviewState `json:"state"`
	ProposedCategory string            `json:"proposed_category,omitempty"`
	CurrentCategory  string            `json:"current_category,omitempty"`
	LastActor        string            `json:"last_actor,omitempty"`
}

// SkillList is a filtered listing plus the known ingestion runs.
type SkillList struct {
	Skills []SkillItem `json:"skills"`
	RunIDs []string    `json:"run_ids"`
}

// Review is the decision screen for one skill.
type Review struct {
	Skill           model.SkillRecord       `json:"skill"`
	State           model.ReviewState       `json:"state"`
	CurrentCategory string                  `json:"current_category"`
	Current         model.MatchResult       `json:"current"`
	Alternatives    []model.MatchResult     `json:"alternatives"`
	Matches         []model.MatchResult     `json:"matches"`
	History         []model.ProvenanceEntry `json:"history"`
}

// Decision is a reviewer's choice for a skill.
type Decision struct {
	Category string `json:"category"`
	Actor    string `json:"actor"`
}

// CategoryCount is the number of skills currently in a category.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// Summary holds the dashboard aggregates.
type Summary struct {
	Total          int                     `json:"total"`
	Reviewed       int                     `json:"reviewed"`
	Pending        int                     `json:"pending"`
	Changed        int                     `json:"changed"`
	ValidationRate float64                 `json:"validation_rate"`
	AccuracyRate   float64                 `json:"accuracy_rate"`
	Distribution   []CategoryCount         `json:"distribution"`
	Activity       []model.ProvenanceEntry `json:"activity"`
	AccuracyTrend  []TrendPoint            `json:"accuracy_trend"`
}

// TrendPoint is the running accuracy after one more proposed skill.
type TrendPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Accuracy  float64   `json:"accuracy"`
}

// SkippedRow is an upload row that was not queued.
type SkippedRow struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

// UploadResult acknowledges a batch upload. Rejected rows hit backpressure
// and may be retried by uploading the same sheet again. RunID is empty when
// no row was accepted.
type UploadResult struct {
	RunID      string       `json:"run_id,omitempty"`
	Accepted   int          `json:"accepted"`
	Duplicates int          `json:"duplicates"`
	Rejected   int          `json:"rejected"`
	Skipped    []SkippedRow `json:"skipped"`
}

// Stats exposes service internals for monitoring.
type Stats struct {
	Started     bool   `json:"started"`
	Workers     int    `json:"workers"`
	QueueSize   int    `json:"queue_size"`
	QueueLength int    `json:"queue_length"`
	DedupeSize  int64  `json:"dedupe_size"`
	Skills      int    `json:"skills"`
	Runs        int    `json:"runs"`
	Processed   int64  `json:"processed"`
	Failed      int64  `json:"failed"`
	Strategy    string `json:"strategy"`
}
