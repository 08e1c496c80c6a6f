package migration

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type widget struct {
	ID   uint `gorm:"primaryKey"`
	Name string
}

type createWidgets struct{}

func (createWidgets) Up(db *gorm.DB) error   { return db.AutoMigrate(&widget{}) }
func (createWidgets) Down(db *gorm.DB) error { return db.Migrator().DropTable("widgets") }

type addedLater struct{}

func (addedLater) Up(db *gorm.DB) error {
	return db.Exec("ALTER TABLE widgets ADD COLUMN color text").Error
}
func (addedLater) Down(db *gorm.DB) error { return nil }

func openDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db
}

func withRegistry(t *testing.T, entries ...entry) {
	t.Helper()
	prev := registry
	registry = entries
	t.Cleanup(func() { registry = prev })
}

func TestRunAppliesPendingInOrder(t *testing.T) {
	db := openDB(t)
	withRegistry(t, entry{name: "0001_create_widgets", m: createWidgets{}})

	require.NoError(t, New(db).Run())
	assert.True(t, db.Migrator().HasTable("widgets"))

	var rows []schemaMigration
	require.NoError(t, db.Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, "0001_create_widgets", rows[0].Name)
	assert.Equal(t, 1, rows[0].Batch)
}

func TestRunIsIdempotent(t *testing.T) {
	db := openDB(t)
	withRegistry(t, entry{name: "0001_create_widgets", m: createWidgets{}})

	require.NoError(t, New(db).Run())
	require.NoError(t, New(db).Run())

	var n int64
	require.NoError(t, db.Model(&schemaMigration{}).Count(&n).Error)
	assert.Equal(t, int64(1), n)
}

func TestRollbackRevertsLastBatch(t *testing.T) {
	db := openDB(t)
	withRegistry(t, entry{name: "0001_create_widgets", m: createWidgets{}})
	require.NoError(t, New(db).Run())

	require.NoError(t, New(db).Rollback())
	assert.False(t, db.Migrator().HasTable("widgets"))

	var n int64
	require.NoError(t, db.Model(&schemaMigration{}).Count(&n).Error)
	assert.Equal(t, int64(0), n)
}

func TestLaterMigrationsGetNewBatch(t *testing.T) {
	db := openDB(t)
	withRegistry(t, entry{name: "0001_create_widgets", m: createWidgets{}})
	require.NoError(t, New(db).Run())

	registry = append(registry, entry{name: "0002_add_color", m: addedLater{}})
	require.NoError(t, New(db).Run())

	var rows []schemaMigration
	require.NoError(t, db.Order("name").Find(&rows).Error)
	require.Len(t, rows, 2)
	assert.Equal(t, 1, rows[0].Batch)
	assert.Equal(t, 2, rows[1].Batch)

	// rollback only reverts batch 2
	require.NoError(t, New(db).Rollback())
	require.NoError(t, db.Order("name").Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, "0001_create_widgets", rows[0].Name)
	assert.True(t, db.Migrator().HasTable("widgets"))
}
