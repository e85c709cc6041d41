package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/skillcat/internal/config"
	"github.com/okian/skillcat/internal/domain/model"
	"github.com/okian/skillcat/internal/domain/scoring"
	"github.com/okian/skillcat/internal/domain/types"
	"github.com/okian/skillcat/pkg/logger"
)

// execute runs the root command with args and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := rootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	base := []string{"--env-file", filepath.Join(t.TempDir(), "missing.env")}
	cmd.SetArgs(append(base, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	convey.Convey("Given the version command", t, func() {
		out, err := execute(t, "version")

		convey.Convey("Then it prints the build information", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(out, convey.ShouldStartWith, "skillcat version ")
		})
	})
}

func TestScoreCommand(t *testing.T) {
	t.Setenv("SKILLCAT_SCORING_STRATEGY", "table")

	convey.Convey("Given the score command with the table strategy", t, func() {
		convey.Convey("When printing a table", func() {
			out, err := execute(t, "score", "any description")

			convey.Convey("Then the best match comes first", func() {
				convey.So(err, convey.ShouldBeNil)
				lines := strings.Split(strings.TrimSpace(out), "\n")
				convey.So(lines, convey.ShouldHaveLength, 6)
				convey.So(lines[1], convey.ShouldStartWith, "Software Development")
				convey.So(lines[1], convey.ShouldContainSubstring, "0.9239")
			})
		})

		convey.Convey("When printing JSON for two descriptions", func() {
			out, err := execute(t, "score", "--json", "--top", "2", "first", "second")
			convey.So(err, convey.ShouldBeNil)

			var results [][]model.MatchResult
			convey.So(json.Unmarshal([]byte(out), &results), convey.ShouldBeNil)

			convey.Convey("Then every description is ranked in order", func() {
				convey.So(results, convey.ShouldHaveLength, 2)
				convey.So(results[0], convey.ShouldHaveLength, 2)
				convey.So(results[1][1].Category, convey.ShouldEqual, "Big Data")
			})
		})

		convey.Convey("When the description is blank", func() {
			_, err := execute(t, "score", "  ")

			convey.Convey("Then it fails with invalid input", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, scoring.ErrInvalidInput.Error())
			})
		})
	})
}

func TestIngestCommand(t *testing.T) {
	t.Setenv("SKILLCAT_SCORING_STRATEGY", "table")

	convey.Convey("Given a skill sheet", t, func() {
		path := filepath.Join(t.TempDir(), "skills.csv")
		sheet := "id,Input Skill,Skill Description\n" +
			"r1,React.js Development,Built web applications with React\n" +
			"r2,Empty,\n" +
			"r3,Apache Spark,Spark pipelines\n"
		convey.So(os.WriteFile(path, []byte(sheet), 0o600), convey.ShouldBeNil)

		convey.Convey("When it is ingested", func() {
			out, err := execute(t, "ingest", path)

			convey.Convey("Then every row with a description gets a proposal", func() {
				convey.So(err, convey.ShouldBeNil)
				lines := strings.Split(strings.TrimSpace(out), "\n")
				convey.So(lines, convey.ShouldHaveLength, 3)
				convey.So(lines[1], convey.ShouldStartWith, "r1")
				convey.So(lines[1], convey.ShouldContainSubstring, "Software Development")
				convey.So(lines[2], convey.ShouldStartWith, "r3")
			})
		})

		convey.Convey("When the file does not exist", func() {
			_, err := execute(t, "ingest", filepath.Join(t.TempDir(), "nope.csv"))
			convey.So(err, convey.ShouldNotBeNil)
		})
	})
}

func TestDotEnv(t *testing.T) {
	convey.Convey("Given a dotenv file selecting an invalid strategy", t, func() {
		t.Cleanup(func() { _ = os.Unsetenv("SKILLCAT_SCORING_STRATEGY") })
		path := filepath.Join(t.TempDir(), ".env")
		convey.So(os.WriteFile(path, []byte("SKILLCAT_SCORING_STRATEGY=oracle\n"), 0o600), convey.ShouldBeNil)

		cmd := rootCmd()
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs([]string{"--env-file", path, "score", "x"})
		err := cmd.ExecuteContext(context.Background())

		convey.Convey("Then the configuration is rejected", func() {
			convey.So(err, convey.ShouldNotBeNil)
			convey.So(err.Error(), convey.ShouldContainSubstring, "scoring_strategy")
		})
	})
}

func TestComponents(t *testing.T) {
	convey.Convey("Given a default configuration", t, func() {
		cfg := config.New(context.Background())

		convey.Convey("Then the built-in catalog is used", func() {
			c, err := newCatalog(cfg)
			convey.So(err, convey.ShouldBeNil)
			convey.So(c.Len(), convey.ShouldEqual, 5)
		})

		convey.Convey("Then a missing catalog file is an error", func() {
			cfg.CatalogPath = filepath.Join(t.TempDir(), "none.yaml")
			_, err := newCatalog(cfg)
			convey.So(err, convey.ShouldNotBeNil)
		})

		convey.Convey("Then a configured score table replaces the built-in one", func() {
			cfg.ScoringStrategy = config.StrategyTable
			cfg.ScoreTable = map[string]config.ScoreEntry{"SAP Basis": {Score: 0.99}}

			scorer, err := newScorer(cfg)
			convey.So(err, convey.ShouldBeNil)
			matches, err := scorer.Score(context.Background(), "x")
			convey.So(err, convey.ShouldBeNil)
			convey.So(matches[0].Category, convey.ShouldEqual, "SAP Basis")
			convey.So(matches[0].Score, convey.ShouldEqual, 0.99)
		})
	})
}

func TestHandler(t *testing.T) {
	convey.Convey("Given the HTTP handler over a seeded service", t, func() {
		ctx := context.Background()
		convey.So(logger.Init(logger.WithWriter(&bytes.Buffer{})), convey.ShouldBeNil)

		cfg := config.New(ctx)
		cfg.ScoringStrategy = config.StrategyTable
		cfg.SeedDemo = true
		cfg.WorkerCount = 1

		svc, err := newService(cfg, logger.Get())
		convey.So(err, convey.ShouldBeNil)
		convey.So(svc.Start(ctx), convey.ShouldBeNil)
		defer func() { _ = svc.Stop(ctx) }()

		h := newHandler(ctx, cfg, svc)
		do := func(method, target, body string) *httptest.ResponseRecorder {
			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(method, target, strings.NewReader(body)))
			return w
		}

		convey.Convey("Then the summary reflects the demo runs", func() {
			w := do(http.MethodGet, "/summary", "")
			convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
			var sum types.Summary
			convey.So(json.Unmarshal(w.Body.Bytes(), &sum), convey.ShouldBeNil)
			convey.So(sum.Total, convey.ShouldEqual, 5)
			convey.So(sum.ValidationRate, convey.ShouldAlmostEqual, 0.8)
		})

		convey.Convey("Then a reviewer can open and validate a skill", func() {
			w := do(http.MethodGet, "/skills/demo-spark", "")
			convey.So(w.Code, convey.ShouldEqual, http.StatusOK)

			w = do(http.MethodPost, "/skills/demo-spark/decisions", `{"category":"Big Data","actor":"alice"}`)
			convey.So(w.Code, convey.ShouldEqual, http.StatusCreated)
			convey.So(w.Body.String(), convey.ShouldContainSubstring, `"action":"Validated"`)

			w = do(http.MethodGet, "/skills?search=spark", "")
			convey.So(w.Body.String(), convey.ShouldContainSubstring, `"state":"Validated"`)
		})

		convey.Convey("Then a load run against it succeeds", func() {
			srv := httptest.NewServer(h)
			defer srv.Close()

			out, err := execute(t, "loadtest", "--url", srv.URL, "--skills", "20", "--workers", "2", "--seed", "3")
			convey.So(err, convey.ShouldBeNil)
			convey.So(out, convey.ShouldContainSubstring, "20 submitted, 20 accepted, 0 duplicate, 0 failed")
		})

		convey.Convey("Then the docs are served", func() {
			convey.So(do(http.MethodGet, "/api-docs", "").Code, convey.ShouldEqual, http.StatusOK)
			convey.So(do(http.MethodGet, "/openapi.yaml", "").Code, convey.ShouldEqual, http.StatusOK)
			convey.So(do(http.MethodGet, "/", "").Code, convey.ShouldEqual, http.StatusOK)
		})
	})
}
