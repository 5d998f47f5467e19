package database

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/yukikurage/task-dashboard/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SeedData is the layout of a seed file
type SeedData struct {
	Users []models.User `json:"users"`
	Tasks []models.Task `json:"tasks"`
}

// SeedResult reports how many rows a seed run inserted
type SeedResult struct {
	Users int64
	Tasks int64
}

// LoadSeedFile reads and decodes a seed file
func LoadSeedFile(path string) (*SeedData, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}

	var data SeedData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to decode seed file %s: %w", path, err)
	}
	return &data, nil
}

// Seed inserts the seed records, skipping rows whose key already exists.
// Users go first so task assignees resolve.
func Seed(ctx context.Context, db *gorm.DB, data *SeedData) (SeedResult, error) {
	var result SeedResult

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(data.Users) > 0 {
			res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&data.Users)
			if res.Error != nil {
				return fmt.Errorf("failed to seed users: %w", res.Error)
			}
			result.Users = res.RowsAffected
		}

		if len(data.Tasks) > 0 {
			res := tx.Omit(clause.Associations).
				Clauses(clause.OnConflict{DoNothing: true}).
				Create(&data.Tasks)
			if res.Error != nil {
				return fmt.Errorf("failed to seed tasks: %w", res.Error)
			}
			result.Tasks = res.RowsAffected
		}

		return nil
	})

	return result, err
}

// SeedFromFile loads path and seeds db with its contents
func SeedFromFile(ctx context.Context, db *gorm.DB, path string) (SeedResult, error) {
	data, err := LoadSeedFile(path)
	if err != nil {
		return SeedResult{}, err
	}
	return Seed(ctx, db, data)
}
