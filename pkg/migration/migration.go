// Package migration is a minimal forward/backward schema migrator on
// top of gorm. Migration files self-register via Register() in their
// init() functions; applied names are tracked in schema_migrations.
package migration

import (
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/vitrinehq/vitrine/pkg/logger"
)

// Migration is one reversible schema step.
type Migration interface {
	Up(db *gorm.DB) error
	Down(db *gorm.DB) error
}

type entry struct {
	name string
	m    Migration
}

var registry []entry

// Register adds a migration under a sortable name, conventionally
// "YYYYMMDDHHMMSS_description". Call from init().
func Register(name string, m Migration) {
	registry = append(registry, entry{name: name, m: m})
}

// schemaMigration is the bookkeeping row.
type schemaMigration struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"size:255;uniqueIndex"`
	Batch     int
	CreatedAt time.Time
}

func (schemaMigration) TableName() string { return "schema_migrations" }

// Runner executes registered migrations against one database.
type Runner struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Runner {
	return &Runner{db: db}
}

func (r *Runner) ensureTable() error {
	return r.db.AutoMigrate(&schemaMigration{})
}

func (r *Runner) applied() (map[string]schemaMigration, int, error) {
	var rows []schemaMigration
	if err := r.db.Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	byName := make(map[string]schemaMigration, len(rows))
	maxBatch := 0
	for _, row := range rows {
		byName[row.Name] = row
		if row.Batch > maxBatch {
			maxBatch = row.Batch
		}
	}
	return byName, maxBatch, nil
}

func sorted() []entry {
	out := make([]entry, len(registry))
	copy(out, registry)
	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}

// Run applies every pending migration in name order as one batch.
func (r *Runner) Run() error {
	if err := r.ensureTable(); err != nil {
		return fmt.Errorf("migration: ensure table: %w", err)
	}
	done, maxBatch, err := r.applied()
	if err != nil {
		return fmt.Errorf("migration: read applied: %w", err)
	}

	batch := maxBatch + 1
	ran := 0
	for _, e := range sorted() {
		if _, ok := done[e.name]; ok {
			continue
		}
		logger.Info("migrating", "name", e.name)
		if err := e.m.Up(r.db); err != nil {
			return fmt.Errorf("migration: %s up: %w", e.name, err)
		}
		row := schemaMigration{Name: e.name, Batch: batch}
		if err := r.db.Create(&row).Error; err != nil {
			return fmt.Errorf("migration: record %s: %w", e.name, err)
		}
		ran++
	}
	if ran == 0 {
		logger.Info("nothing to migrate")
	} else {
		logger.Info("migrated", "count", ran, "batch", batch)
	}
	return nil
}

// Rollback reverts the most recent batch in reverse name order.
func (r *Runner) Rollback() error {
	if err := r.ensureTable(); err != nil {
		return fmt.Errorf("migration: ensure table: %w", err)
	}
	done, maxBatch, err := r.applied()
	if err != nil {
		return fmt.Errorf("migration: read applied: %w", err)
	}
	if maxBatch == 0 {
		logger.Info("nothing to rollback")
		return nil
	}

	entries := sorted()
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		row, ok := done[e.name]
		if !ok || row.Batch != maxBatch {
			continue
		}
		logger.Info("rolling back", "name", e.name)
		if err := e.m.Down(r.db); err != nil {
			return fmt.Errorf("migration: %s down: %w", e.name, err)
		}
		if err := r.db.Delete(&schemaMigration{}, "name = ?", e.name).Error; err != nil {
			return fmt.Errorf("migration: unrecord %s: %w", e.name, err)
		}
	}
	return nil
}

// Status prints every registered migration with its applied state.
func (r *Runner) Status() error {
	if err := r.ensureTable(); err != nil {
		return fmt.Errorf("migration: ensure table: %w", err)
	}
	done, _, err := r.applied()
	if err != nil {
		return fmt.Errorf("migration: read applied: %w", err)
	}
	for _, e := range sorted() {
		state := "pending"
		if row, ok := done[e.name]; ok {
			state = fmt.Sprintf("applied (batch %d)", row.Batch)
		}
		fmt.Printf("%-54s %s\n", e.name, state)
	}
	return nil
}
