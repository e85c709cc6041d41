package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/okian/skillcat/internal/adapters/http/api"
	"github.com/okian/skillcat/internal/adapters/ingest"
	"github.com/okian/skillcat/internal/adapters/mq/queue"
	"github.com/okian/skillcat/internal/domain/model"
	"github.com/okian/skillcat/internal/domain/provenance"
	"github.com/okian/skillcat/internal/domain/review"
	"github.com/okian/skillcat/internal/domain/scoring"
	"github.com/okian/skillcat/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

var ts = time.Date(2024, 12, 18, 14, 30, 0, 0, time.UTC)

// mockDependencies records calls and returns canned results.
type mockDependencies struct {
	scoreErr  error
	createErr error
	openErr   error
	decideErr error
	uploadErr error
	upload    types.UploadResult

	uploaded  string
	filter    model.SkillFilter
	decidedID string
	decision  types.Decision
}

func (m *mockDependencies) Categories(_ context.Context) []model.Category {
	return []model.Category{{Name: "Big Data", Description: "Large data", RelatedSkills: []string{"Spark"}}}
}

func (m *mockDependencies) Score(_ context.Context, description string) ([]model.MatchResult, error) {
	if m.scoreErr != nil {
		return nil, m.scoreErr
	}
	if strings.TrimSpace(description) == "" {
		return nil, scoring.ErrInvalidInput
	}
	return []model.MatchResult{{Category: "Big Data", Score: 0.8, RelatedSkills: []string{"Spark"}}}, nil
}

func (m *mockDependencies) CreateSkill(_ context.Context, in types.SkillInput) (types.Ingested, error) {
	if m.createErr != nil {
		return types.Ingested{}, m.createErr
	}
	rec := model.SkillRecord{ID: "s1", Name: in.Name, Description: in.Description, CreatedAt: ts}
	return types.Ingested{
		Skill:    rec,
		Proposal: model.ProvenanceEntry{SkillID: "s1", Timestamp: ts, Actor: model.AlgorithmActor, Category: "Big Data", Action: model.ActionProposed},
	}, nil
}

func (m *mockDependencies) ListSkills(_ context.Context, f model.SkillFilter) (types.SkillList, error) {
	m.filter = f
	return types.SkillList{
		Skills: []types.SkillItem{{ID: "s1", State: model.StateUnreviewed, CurrentCategory: "Big Data"}},
		RunIDs: []string{"Run 1"},
	}, nil
}

func (m *mockDependencies) OpenSkill(_ context.Context, skillID string) (types.Review, error) {
	if m.openErr != nil {
		return types.Review{}, m.openErr
	}
	return types.Review{Skill: model.SkillRecord{ID: skillID}, State: model.StateUnderReview, CurrentCategory: "Big Data"}, nil
}

func (m *mockDependencies) Decide(_ context.Context, skillID string, d types.Decision) (model.ProvenanceEntry, error) {
	m.decidedID, m.decision = skillID, d
	if m.decideErr != nil {
		return model.ProvenanceEntry{}, m.decideErr
	}
	return model.ProvenanceEntry{SkillID: skillID, Timestamp: ts, Actor: d.Actor, Category: d.Category, Action: model.ActionChanged}, nil
}

func (m *mockDependencies) Upload(_ context.Context, r io.Reader) (types.UploadResult, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return types.UploadResult{}, fmt.Errorf("%w: %w", ingest.ErrMalformedUpload, err)
	}
	m.uploaded = string(data)
	if m.uploadErr != nil {
		return types.UploadResult{}, m.uploadErr
	}
	return m.upload, nil
}

func (m *mockDependencies) Summary(_ context.Context) types.Summary {
	return types.Summary{Total: 5, Reviewed: 3, Pending: 2, ValidationRate: 0.6, AccuracyRate: 2.0 / 3}
}

type mockStatsProvider struct{}

func (mockStatsProvider) GetStats() types.Stats {
	return types.Stats{Started: true, Workers: 4, Skills: 5}
}

func newMux(deps *mockDependencies, opts ...api.Option) *http.ServeMux {
	mux := http.NewServeMux()
	api.NewServer(deps, mockStatsProvider{}, opts...).Register(context.Background(), mux)
	return mux
}

func do(mux *http.ServeMux, method, target string, body io.Reader) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, body)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func errorCode(w *httptest.ResponseRecorder) string {
	var body struct {
		Code string `json:"code"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	return body.Code
}

func TestServer_Register(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		mux := newMux(&mockDependencies{})

		Convey("Then health serves metrics", func() {
			w := do(mux, http.MethodGet, "/healthz", nil)
			So(w.Code, ShouldEqual, http.StatusOK)
		})

		Convey("Then stats are JSON", func() {
			w := do(mux, http.MethodGet, "/stats", nil)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Header().Get("Content-Type"), ShouldStartWith, "application/json")
			So(w.Body.String(), ShouldContainSubstring, `"workers":4`)
		})

		Convey("Then the catalog is listed", func() {
			w := do(mux, http.MethodGet, "/categories", nil)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"related_skills":["Spark"]`)
		})

		Convey("Then the summary is served", func() {
			w := do(mux, http.MethodGet, "/summary", nil)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"validation_rate":0.6`)
		})

		Convey("Then unknown routes are not found", func() {
			w := do(mux, http.MethodGet, "/rankings", nil)
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("Then wrong methods are refused", func() {
			w := do(mux, http.MethodDelete, "/skills", nil)
			So(w.Code, ShouldEqual, http.StatusMethodNotAllowed)
		})
	})
}

func TestScore(t *testing.T) {
	Convey("Given the score endpoint", t, func() {
		deps := &mockDependencies{}
		mux := newMux(deps)

		Convey("When a description is posted", func() {
			w := do(mux, http.MethodPost, "/score", strings.NewReader(`{"description":"Spark jobs"}`))

			Convey("Then the matches are returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, `"category":"Big Data"`)
			})
		})

		Convey("When the body is not JSON", func() {
			w := do(mux, http.MethodPost, "/score", strings.NewReader(`{`))
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(errorCode(w), ShouldEqual, "bad_request")
		})

		Convey("When the description is blank", func() {
			w := do(mux, http.MethodPost, "/score", strings.NewReader(`{"description":"  "}`))
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the body exceeds the limit", func() {
			mux := newMux(deps, api.WithMaxBodyBytes(8))
			w := do(mux, http.MethodPost, "/score", strings.NewReader(`{"description":"a long description"}`))
			So(w.Code, ShouldEqual, http.StatusRequestEntityTooLarge)
		})

		Convey("When the scorer times out", func() {
			deps.scoreErr = fmt.Errorf("%w: %w", scoring.ErrScoringUnavailable, context.DeadlineExceeded)
			w := do(mux, http.MethodPost, "/score", strings.NewReader(`{"description":"x"}`))
			So(w.Code, ShouldEqual, http.StatusServiceUnavailable)
			So(errorCode(w), ShouldEqual, "scoring_unavailable")
		})

		Convey("When the scorer returns an invalid result", func() {
			deps.scoreErr = fmt.Errorf("%w: score 3", scoring.ErrInvalidScore)
			w := do(mux, http.MethodPost, "/score", strings.NewReader(`{"description":"x"}`))
			So(w.Code, ShouldEqual, http.StatusBadGateway)
		})
	})
}

func TestSkills(t *testing.T) {
	Convey("Given the skills endpoints", t, func() {
		deps := &mockDependencies{}
		mux := newMux(deps)

		Convey("When a skill is created", func() {
			w := do(mux, http.MethodPost, "/skills", strings.NewReader(`{"name":"Spark","description":"Spark jobs"}`))

			Convey("Then the proposal is returned", func() {
				So(w.Code, ShouldEqual, http.StatusCreated)
				var out types.Ingested
				So(json.Unmarshal(w.Body.Bytes(), &out), ShouldBeNil)
				So(out.Proposal.Actor, ShouldEqual, model.AlgorithmActor)
				So(out.Skill.Name, ShouldEqual, "Spark")
			})
		})

		Convey("When the skill id is taken", func() {
			deps.createErr = fmt.Errorf("store skill: %w", provenance.ErrDuplicateProposal)
			w := do(mux, http.MethodPost, "/skills", strings.NewReader(`{"id":"s1","description":"x"}`))
			So(w.Code, ShouldEqual, http.StatusConflict)
		})

		Convey("When skills are listed with filters", func() {
			w := do(mux, http.MethodGet, "/skills?run_id=Run+1&search=+spark+", nil)

			Convey("Then the filter reaches the service trimmed", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(deps.filter, ShouldResemble, model.SkillFilter{RunID: "Run 1", Search: "spark"})
				So(w.Body.String(), ShouldContainSubstring, `"run_ids":["Run 1"]`)
			})
		})

		Convey("When a skill is opened", func() {
			w := do(mux, http.MethodGet, "/skills/s1", nil)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"state":"UnderReview"`)
		})

		Convey("When an unknown skill is opened", func() {
			deps.openErr = fmt.Errorf("%w: nope", review.ErrUnknownSkill)
			w := do(mux, http.MethodGet, "/skills/nope", nil)
			So(w.Code, ShouldEqual, http.StatusNotFound)
			So(errorCode(w), ShouldEqual, "not_found")
		})

		Convey("When a decision is posted", func() {
			w := do(mux, http.MethodPost, "/skills/s1/decisions", strings.NewReader(`{"category":"Big Data","actor":"alice"}`))

			Convey("Then it is committed for that skill", func() {
				So(w.Code, ShouldEqual, http.StatusCreated)
				So(deps.decidedID, ShouldEqual, "s1")
				So(deps.decision, ShouldResemble, types.Decision{Category: "Big Data", Actor: "alice"})
			})
		})

		Convey("When a decision has no category", func() {
			w := do(mux, http.MethodPost, "/skills/s1/decisions", strings.NewReader(`{"actor":"alice"}`))
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(deps.decidedID, ShouldBeEmpty)
		})

		Convey("When decisions fail in the domain", func() {
			cases := []struct {
				err    error
				status int
			}{
				{review.ErrUnknownCategory, http.StatusUnprocessableEntity},
				{provenance.ErrInvalidActor, http.StatusBadRequest},
				{provenance.ErrUnknownSkill, http.StatusNotFound},
				{provenance.ErrInvalidTransition, http.StatusConflict},
				{errors.New("boom"), http.StatusInternalServerError},
			}
			for _, c := range cases {
				deps.decideErr = c.err
				w := do(mux, http.MethodPost, "/skills/s1/decisions", strings.NewReader(`{"category":"Big Data","actor":"alice"}`))
				So(w.Code, ShouldEqual, c.status)
			}
		})
	})
}

func TestUploads(t *testing.T) {
	Convey("Given the uploads endpoint", t, func() {
		deps := &mockDependencies{upload: types.UploadResult{RunID: "Run 1", Accepted: 2}}
		mux := newMux(deps)
		const sheet = "description\nSpark jobs\nReact apps\n"

		Convey("When a raw CSV body is posted", func() {
			w := do(mux, http.MethodPost, "/uploads", strings.NewReader(sheet))

			Convey("Then it is accepted", func() {
				So(w.Code, ShouldEqual, http.StatusAccepted)
				So(deps.uploaded, ShouldEqual, sheet)
				So(w.Body.String(), ShouldContainSubstring, `"accepted":2`)
			})
		})

		Convey("When the sheet is a multipart file", func() {
			var buf bytes.Buffer
			mw := multipart.NewWriter(&buf)
			part, err := mw.CreateFormFile("file", "skills.csv")
			So(err, ShouldBeNil)
			_, _ = part.Write([]byte(sheet))
			So(mw.Close(), ShouldBeNil)

			req := httptest.NewRequest(http.MethodPost, "/uploads", &buf)
			req.Header.Set("Content-Type", mw.FormDataContentType())
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then the file part is read", func() {
				So(w.Code, ShouldEqual, http.StatusAccepted)
				So(deps.uploaded, ShouldEqual, sheet)
			})
		})

		Convey("When some rows hit backpressure", func() {
			deps.upload = types.UploadResult{RunID: "Run 1", Accepted: 1, Rejected: 1}
			w := do(mux, http.MethodPost, "/uploads", strings.NewReader(sheet))

			Convey("Then the counts come back with 429", func() {
				So(w.Code, ShouldEqual, http.StatusTooManyRequests)
				So(w.Header().Get("Retry-After"), ShouldEqual, "1")
				So(w.Body.String(), ShouldContainSubstring, `"rejected":1`)
			})
		})

		Convey("When the sheet has no description column", func() {
			deps.uploadErr = fmt.Errorf("%w: got [name]", ingest.ErrMissingColumn)
			w := do(mux, http.MethodPost, "/uploads", strings.NewReader("name\nx\n"))
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(errorCode(w), ShouldEqual, "invalid_upload")
		})

		Convey("When the service is not accepting work", func() {
			deps.uploadErr = queue.ErrClosed
			w := do(mux, http.MethodPost, "/uploads", strings.NewReader(sheet))
			So(w.Code, ShouldEqual, http.StatusServiceUnavailable)
		})

		Convey("When the body exceeds the upload limit", func() {
			mux := newMux(deps, api.WithMaxUploadBytes(4))
			w := do(mux, http.MethodPost, "/uploads", strings.NewReader(sheet))
			So(w.Code, ShouldEqual, http.StatusRequestEntityTooLarge)
		})
	})
}
