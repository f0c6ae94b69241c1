// Package schema defines the Postgres schema for stored templates.
package schema

// TableDefinitions contains all the SQL statements to create the database tables.
// Blocks and sections are JSONB documents, one row per template.
var TableDefinitions = []string{
	`CREATE TABLE IF NOT EXISTS templates (
		id VARCHAR(64) PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		subject VARCHAR(998) NOT NULL DEFAULT '',
		blocks JSONB NOT NULL DEFAULT '[]'::jsonb,
		background_color VARCHAR(64) NOT NULL DEFAULT '',
		document_background_color VARCHAR(64) NOT NULL DEFAULT '',
		padding INTEGER NOT NULL DEFAULT 0,
		use_sections BOOLEAN NOT NULL DEFAULT FALSE,
		sections JSONB NOT NULL DEFAULT '[]'::jsonb,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL,
		deleted_at TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_templates_updated_at ON templates(updated_at DESC) WHERE deleted_at IS NULL`,
}

// TableNames returns a list of all table names in creation order
var TableNames = []string{
	"templates",
}
