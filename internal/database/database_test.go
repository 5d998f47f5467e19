package database

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/task-dashboard/internal/config"
	"github.com/yukikurage/task-dashboard/internal/models"
	"github.com/yukikurage/task-dashboard/internal/testutil"
)

const seedJSON = `{
  "users": [
    {"id": "U00000001", "name": "John Doe", "email": "john@example.com", "role": "user", "status": "active", "task_count": 1},
    {"id": "U00000002", "name": "Ada Admin", "email": "ada@example.com", "role": "admin", "status": "active"}
  ],
  "tasks": [
    {"id": "T1001", "title": "Label street images", "category": "image_annotation", "priority": "high", "status": "pending", "assigned_to": "U00000001"},
    {"id": "T1002", "title": "Transcribe interview", "category": "transcription", "priority": "low", "status": "done", "assigned_to": null}
  ]
}`

func writeSeed(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seed.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDialector(t *testing.T) {
	for _, driver := range []string{config.DriverMySQL, config.DriverPostgres, config.DriverSQLite} {
		d, err := Dialector(&config.Config{DBDriver: driver, DBPath: ":memory:"})
		require.NoError(t, err, driver)
		assert.Equal(t, driver, d.Name())
	}

	_, err := Dialector(&config.Config{DBDriver: "oracle"})
	assert.Error(t, err)
}

func TestAddIndexesIsIdempotent(t *testing.T) {
	db := testutil.NewTestDB(t)

	require.NoError(t, AddIndexes(db))
	require.NoError(t, AddIndexes(db))

	assert.True(t, db.Migrator().HasIndex("tasks", "idx_tasks_status_category_priority"))
}

func TestSeedFromFile(t *testing.T) {
	db := testutil.NewTestDB(t)
	path := writeSeed(t, seedJSON)

	result, err := SeedFromFile(context.Background(), db, path)
	require.NoError(t, err)
	assert.Equal(t, int64(2), result.Users)
	assert.Equal(t, int64(2), result.Tasks)

	var task models.Task
	require.NoError(t, db.First(&task, "id = ?", "T1001").Error)
	assert.Equal(t, models.PriorityHigh, task.Priority)
	require.NotNil(t, task.AssignedTo)
	assert.Equal(t, "U00000001", *task.AssignedTo)

	// a second run must not duplicate rows
	result, err = SeedFromFile(context.Background(), db, path)
	require.NoError(t, err)
	assert.Equal(t, int64(0), result.Tasks)

	var count int64
	db.Model(&models.Task{}).Count(&count)
	assert.Equal(t, int64(2), count)
}

func TestSeedFromFileErrors(t *testing.T) {
	db := testutil.NewTestDB(t)

	_, err := SeedFromFile(context.Background(), db, filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	_, err = SeedFromFile(context.Background(), db, writeSeed(t, "{not json"))
	assert.Error(t, err)
}
