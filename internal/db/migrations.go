package db

import (
	"fmt"

	"gorm.io/gorm"
)

// Statements stay portable between postgres and sqlite.
var migrationStatements = []string{
	`CREATE TABLE IF NOT EXISTS project_submission (
		id VARCHAR(36) PRIMARY KEY,
		project_name TEXT NOT NULL,
		location TEXT NOT NULL,
		implementing_body TEXT NOT NULL,
		area_hectares BIGINT NOT NULL,
		start_date VARCHAR(32) NOT NULL,
		project_type TEXT NOT NULL,
		submitted_by VARCHAR(255) NOT NULL DEFAULT '',
		status VARCHAR(16) NOT NULL DEFAULT 'PENDING',
		tx_hash VARCHAR(66),
		error_message TEXT,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);`,
	`CREATE INDEX IF NOT EXISTS idx_project_submission_created_at ON project_submission (created_at);`,
	`CREATE INDEX IF NOT EXISTS idx_project_submission_status ON project_submission (status);`,
	`CREATE INDEX IF NOT EXISTS idx_project_submission_tx_hash ON project_submission (tx_hash);`,
}

func runMigrations(db *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
