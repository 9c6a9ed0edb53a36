package migrations

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/GbFerrera/FINANCIAL-LS-sub003/internal/domain/commission"
	"github.com/GbFerrera/FINANCIAL-LS-sub003/internal/domain/project"
	"github.com/GbFerrera/FINANCIAL-LS-sub003/internal/domain/sprint"
	"github.com/GbFerrera/FINANCIAL-LS-sub003/internal/domain/task"
	"github.com/GbFerrera/FINANCIAL-LS-sub003/internal/domain/timer"
	"github.com/GbFerrera/FINANCIAL-LS-sub003/internal/domain/user"
	"github.com/GbFerrera/FINANCIAL-LS-sub003/internal/infrastructure/persistence/postgres/connection"
	"github.com/GbFerrera/FINANCIAL-LS-sub003/pkg/config"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// MigrationRecord tracks the migration history
type MigrationRecord struct {
	ID        uint      `gorm:"primaryKey"`
	Name      string    `gorm:"not null;unique"`
	Version   int       `gorm:"not null"`
	AppliedAt time.Time `gorm:"not null"`
}

// TableName specifies the table name for migration records
func (MigrationRecord) TableName() string {
	return "schema_migrations"
}

// Models lists every persisted model in foreign-key order.
func Models() []interface{} {
	return []interface{}{
		&user.User{},
		&project.Project{},
		&project.Milestone{},
		&sprint.Sprint{},
		&sprint.SprintProject{},
		&task.Task{},
		&task.TaskActivity{},
		&timer.TimeEntry{},
		&commission.CompensationProfile{},
	}
}

// postgresConstraints are CHECK constraints gorm tags cannot express.
var postgresConstraints = []struct {
	table, name, check string
}{
	{"tasks", "chk_tasks_sort_order", "sort_order >= 0"},
	{"time_entries", "chk_time_entries_duration", "duration IS NULL OR duration >= 0"},
	{"compensation_profiles", "chk_compensation_amounts", "hour_rate >= 0 AND (fixed_salary IS NULL OR fixed_salary >= 0)"},
}

// AutoMigrate runs database migrations for all models in one transaction.
func AutoMigrate(ctx context.Context, db *connection.Database, logger *zap.Logger) error {
	logger.Info("Starting automatic database migration...", zap.String("driver", db.Driver()))

	if err := db.WithContext(ctx).AutoMigrate(&MigrationRecord{}); err != nil {
		logger.Error("Failed to create migrations table", zap.Error(err))
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	return db.InTransaction(ctx, func(ctx context.Context) error {
		tx := db.Conn(ctx)

		var lastVersion int
		if err := tx.Model(&MigrationRecord{}).Select("COALESCE(MAX(version), 0)").Scan(&lastVersion).Error; err != nil {
			return fmt.Errorf("failed to get last version: %w", err)
		}

		applied := 0
		for _, model := range Models() {
			modelName := fmt.Sprintf("%T", model)

			var record MigrationRecord
			err := tx.Where("name = ?", modelName).First(&record).Error
			if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("failed to read migration record for %s: %w", modelName, err)
			}
			isNewMigration := errors.Is(err, gorm.ErrRecordNotFound)

			if err := tx.AutoMigrate(model); err != nil {
				logger.Error("Failed to migrate model",
					zap.String("model", modelName),
					zap.Error(err),
				)
				return fmt.Errorf("failed to migrate %s: %w", modelName, err)
			}

			if !isNewMigration {
				continue
			}
			applied++
			record = MigrationRecord{
				Name:      modelName,
				Version:   lastVersion + applied,
				AppliedAt: time.Now().UTC(),
			}
			if err := tx.Create(&record).Error; err != nil {
				return fmt.Errorf("failed to record migration for %s: %w", modelName, err)
			}
			logger.Info("Applied new migration",
				zap.String("model", modelName),
				zap.Int("version", record.Version),
			)
		}

		if db.Driver() == config.DriverPostgres {
			if err := addConstraints(tx, logger); err != nil {
				return err
			}
		}

		logger.Info("Database migration completed successfully", zap.Int("applied", applied))
		return nil
	})
}

func addConstraints(tx *gorm.DB, logger *zap.Logger) error {
	for _, c := range postgresConstraints {
		var exists bool
		err := tx.Raw("SELECT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = ?)", c.name).Scan(&exists).Error
		if err != nil {
			return fmt.Errorf("failed to look up constraint %s: %w", c.name, err)
		}
		if exists {
			continue
		}
		stmt := fmt.Sprintf("ALTER TABLE %s ADD CONSTRAINT %s CHECK (%s)", c.table, c.name, c.check)
		if err := tx.Exec(stmt).Error; err != nil {
			return fmt.Errorf("failed to add constraint %s: %w", c.name, err)
		}
		logger.Info("Added constraint", zap.String("constraint", c.name))
	}
	return nil
}

// GetMigrationHistory returns the history of applied migrations
func GetMigrationHistory(ctx context.Context, db *connection.Database) ([]MigrationRecord, error) {
	var records []MigrationRecord
	err := db.Conn(ctx).Order("version ASC").Find(&records).Error
	return records, err
}
