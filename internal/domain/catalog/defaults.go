package catalog

import "github.com/okian/skillcat/internal/domain/model"

// Default returns the built-in taxonomy.
func Default() *Catalog {
	c, err := New(defaultCategories()...)
	if err != nil {
		panic(err) // static data
	}
	return c
}

func defaultCategories() []model.Category {
	return []model.Category{
		{
			Name: "Software Development",
			Description: "Focus on designing, developing, and maintaining software applications and systems. " +
				"Includes web development, mobile apps, system architecture, and programming practices.",
			RelatedSkills: []string{
				"Java Programming", "Software Architecture", "JavaScript", "React",
				"Version Control", "Software Testing", "Design Patterns", "REST API",
			},
		},
		{
			Name: "Big Data",
			Description: "Focuses on processing and analyzing large volumes of structured and unstructured data. " +
				"Involves big data technologies, distributed computing, and data pipelines.",
			RelatedSkills: []string{
				"Hadoop", "Spark", "NoSQL", "Data Processing", "Distributed Computing", "ETL", "Streaming",
			},
		},
		{
			Name: "Data and Analytics",
			Description: "Analyzes data to derive insights and support decision-making. " +
				"Includes business intelligence, reporting, and data visualization.",
			RelatedSkills: []string{
				"SQL", "Data Visualization", "Tableau", "Business Intelligence", "Reporting", "Dashboards", "KPI",
			},
		},
		{
			Name: "Data Modeling",
			Description: "Designs and implements data structures and relationships. " +
				"Focuses on database design, schema optimization, and data architecture.",
			RelatedSkills: []string{
				"Database Design", "ERD", "Normalization", "Data Warehousing", "Schema", "Indexing",
			},
		},
		{
			Name: "SAP Basis",
			Description: "Manages and maintains SAP systems and infrastructure. " +
				"Includes system administration, security, and performance optimization.",
			RelatedSkills: []string{
				"SAP Administration", "SAP Security", "SAP NetWeaver", "SAP HANA", "Backup and Recovery",
			},
		},
	}
}
