// Package ingest turns uploaded skill sheets into queue submissions.
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"

	"github.com/okian/skillcat/internal/domain/model"
)

// submissionNamespace scopes the deterministic ids derived from row content.
var submissionNamespace = uuid.MustParse("6f1b2a9e-3c4d-5e6f-8a7b-9c0d1e2f3a4b") //nolint:gochecknoglobals // constant namespace

// Header aliases, matched case-insensitively with spaces read as underscores.
var (
	descriptionHeaders = []string{"description", "skill_description", "work_experience", "experience"} //nolint:gochecknoglobals // read-only
	nameHeaders        = []string{"name", "input_skill", "skill", "title"}                              //nolint:gochecknoglobals // read-only
	idHeaders          = []string{"id", "skill_id"}                                                     //nolint:gochecknoglobals // read-only
)

// RowError reports a data row that was skipped.
type RowError struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

// Result is a parsed upload.
type Result struct {
	Submissions []model.Submission
	Skipped     []RowError
}

// Options bounds parsing.
type Options struct {
	RunID   string
	MaxRows int // zero means unlimited
}

// ParseCSV reads a headed CSV sheet with one skill per row. A description
// column is required; name and id columns are optional. Rows without a
// description are skipped and reported. Rows without an id get one derived
// from their name and description, so the same row uploaded twice maps to
// the same submission.
func ParseCSV(r io.Reader, opts Options) (Result, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return Result{}, ErrEmptyUpload
	}
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrMalformedUpload, err)
	}

	descCol := column(header, descriptionHeaders)
	if descCol < 0 {
		return Result{}, fmt.Errorf("%w: got %q", ErrMissingColumn, header)
	}
	nameCol := column(header, nameHeaders)
	idCol := column(header, idHeaders)

	var res Result
	rows := 0
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Result{}, fmt.Errorf("%w: %w", ErrMalformedUpload, err)
		}
		line, _ := reader.FieldPos(0)
		if blank(record) {
			continue
		}
		rows++
		if opts.MaxRows > 0 && rows > opts.MaxRows {
			return Result{}, fmt.Errorf("%w: more than %d rows", ErrTooManyRows, opts.MaxRows)
		}

		desc := field(record, descCol)
		if desc == "" {
			res.Skipped = append(res.Skipped, RowError{Line: line, Reason: "empty description"})
			continue
		}
		name := field(record, nameCol)
		id := field(record, idCol)
		if id == "" {
			id = SubmissionID(name, desc)
		}

		res.Submissions = append(res.Submissions, model.Submission{
			ID:          id,
			Name:        name,
			Description: desc,
			RunID:       opts.RunID,
		})
	}

	if rows == 0 {
		return Result{}, ErrEmptyUpload
	}
	return res, nil
}

// SubmissionID derives a stable id from a skill's name and description.
func SubmissionID(name, description string) string {
	key := strings.ToLower(strings.TrimSpace(name)) + "\x00" + strings.TrimSpace(description)
	return uuid.NewSHA1(submissionNamespace, []byte(key)).String()
}

func column(header []string, aliases []string) int {
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		h = strings.ReplaceAll(h, " ", "_")
		for _, a := range aliases {
			if h == a {
				return i
			}
		}
	}
	return -1
}

func field(record []string, col int) string {
	if col < 0 || col >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[col])
}

func blank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
