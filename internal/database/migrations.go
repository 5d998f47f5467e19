package database

import (
	"fmt"

	"gorm.io/gorm"
)

// compositeIndex is an index that cannot be declared on a single struct tag
type compositeIndex struct {
	table   string
	name    string
	columns string
}

var compositeIndexes = []compositeIndex{
	// Dashboard filter combination
	{"tasks", "idx_tasks_status_category_priority", "status, category, priority"},
	{"tasks", "idx_tasks_created_at_id", "created_at, id"},

	// Assignment history lookups
	{"task_assignments", "idx_task_assignments_task_assigned_at", "task_id, assigned_at"},
}

// AddIndexes adds performance-critical indexes to the database
func AddIndexes(db *gorm.DB) error {
	migrator := db.Migrator()

	for _, idx := range compositeIndexes {
		if migrator.HasIndex(idx.table, idx.name) {
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}
	}

	return nil
}

// MigrateDatabase runs the schema migration followed by the index pass
func MigrateDatabase(db *gorm.DB) error {
	if err := Migrate(db); err != nil {
		return err
	}

	if err := AddIndexes(db); err != nil {
		return fmt.Errorf("failed to add indexes: %w", err)
	}

	return nil
}
