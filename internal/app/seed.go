package service

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/skillcat/internal/adapters/repository"
	"github.com/okian/skillcat/internal/domain/model"
	"github.com/okian/skillcat/internal/domain/provenance"
)

// ist is the zone of the sample runs. A fixed offset avoids a tzdata lookup.
var ist = time.FixedZone("IST", 5*60*60+30*60) //nolint:gochecknoglobals // read-only zone

type seedDecision struct {
	actor    string
	category string
	action   model.Action
	at       time.Time
}

type seedSkill struct {
	id          string
	name        string
	description string
	proposed    string
	at          time.Time
	decisions   []seedDecision
}

func demoTime(hour, minute int) time.Time {
	return time.Date(2024, time.December, 18, hour, minute, 0, 0, ist)
}

// demoSkills are five reviewed and unreviewed runs of a single afternoon.
func demoSkills() []seedSkill {
	return []seedSkill{
		{
			id:          "demo-react",
			name:        "React.js Development",
			description: "5+ years of experience building scalable web applications using React.js, Redux, and modern JavaScript. Implemented complex UI components, state management, and RESTful API integration.",
			proposed:    "Software Development",
			at:          demoTime(14, 30),
			decisions: []seedDecision{
				{actor: "John Smith", category: "Software Development", action: model.ActionValidated, at: demoTime(14, 45)},
			},
		},
		{
			id:          "demo-tableau",
			name:        "Tableau Dashboard Creation",
			description: "Created interactive business dashboards using Tableau. Experience with data visualization, KPI tracking, and executive reporting. Integrated multiple data sources and implemented drill-down capabilities.",
			proposed:    "Data Modeling",
			at:          demoTime(14, 35),
			decisions: []seedDecision{
				{actor: "Sarah Lee", category: "Data and Analytics", action: model.ActionChanged, at: demoTime(14, 40)},
				{actor: "Mike Johnson", category: "Data and Analytics", action: model.ActionValidated, at: demoTime(15, 0)},
			},
		},
		{
			id:          "demo-spark",
			name:        "Apache Spark Processing",
			description: "Developed and optimized big data processing pipelines using Apache Spark. Experience with data transformation, ETL processes, and distributed computing. Worked with both batch and streaming data.",
			proposed:    "Big Data",
			at:          demoTime(14, 40),
		},
		{
			id:          "demo-schema",
			name:        "Database Schema Design",
			description: "Designed and optimized database schemas for large-scale applications. Experience with normalization, indexing strategies, and performance tuning. Worked with both SQL and NoSQL databases.",
			proposed:    "Software Development",
			at:          demoTime(14, 45),
			decisions: []seedDecision{
				{actor: "Sarah Lee", category: "Data Modeling", action: model.ActionChanged, at: demoTime(15, 15)},
			},
		},
		{
			id:          "demo-hana",
			name:        "SAP HANA Administration",
			description: "Managed and maintained SAP HANA databases, including backup, recovery, and performance optimization. Experience with SAP Basis administration and security configuration.",
			proposed:    "SAP Basis",
			at:          demoTime(14, 50),
			decisions: []seedDecision{
				{actor: "Mike Johnson", category: "SAP Basis", action: model.ActionValidated, at: demoTime(15, 30)},
			},
		},
	}
}

// Seed replays the demo runs into store and ledger. Each skill gets its own
// run, labelled the way uploads are.
func Seed(ctx context.Context, ledger provenance.Ledger, store repository.Store) error {
	for i, sk := range demoSkills() {
		rec := model.SkillRecord{
			ID:          sk.id,
			Name:        sk.name,
			Description: sk.description,
			RunID:       fmt.Sprintf("Run %d - %s", i+1, sk.at.Format(runIDLayout)),
			CreatedAt:   sk.at,
		}
		if err := store.Create(ctx, rec); err != nil {
			return fmt.Errorf("seed %s: %w", sk.id, err)
		}
		if _, err := ledger.Propose(ctx, sk.id, sk.proposed, sk.at); err != nil {
			return fmt.Errorf("seed %s: %w", sk.id, err)
		}
		for _, d := range sk.decisions {
			if _, err := ledger.RecordDecision(ctx, sk.id, d.category, d.actor, d.action, d.at); err != nil {
				return fmt.Errorf("seed %s: %w", sk.id, err)
			}
		}
	}
	return nil
}
