// Package loadgen drives a running skillcat service with generated skills
// and checks that every accepted skill comes back with a proposal.
package loadgen

import (
	"errors"
	"time"

	"github.com/okian/skillcat/internal/domain/model"
)

var (
	// ErrUnhealthy is returned when the service health check fails.
	ErrUnhealthy = errors.New("service unhealthy")
	// ErrVerification is returned when the service state does not match
	// what was submitted.
	ErrVerification = errors.New("verification failed")
)

// Config holds configuration for a load run.
type Config struct {
	BaseURL    string           // Base URL of the service
	NumSkills  int              // Number of skills to generate
	Workers    int              // Number of concurrent submitters
	Timeout    time.Duration    // HTTP request timeout
	OutputFile string           // CSV file for the generated sheet; empty skips it
	Seed       uint64           // Generator seed
	Categories []model.Category // Taxonomy the descriptions are drawn from
}

// Skill is one generated submission plus the category it was drawn from.
type Skill struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	RunID       string `json:"run_id"`
	Source      string `json:"-"`
}

// Stats holds run statistics.
type Stats struct {
	RunID      string
	Generated  int
	Submitted  int
	Successful int
	Duplicate  int
	Failed     int
	Listed     int
	// Agreement is the share of proposals equal to the source category.
	Agreement float64
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
}
