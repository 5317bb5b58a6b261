package migration

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	auditdomain "github.com/Abhi-Verma2005/hrm8-backend-sub003/internal/audit/domain"
	commissiondomain "github.com/Abhi-Verma2005/hrm8-backend-sub003/internal/commission/domain"
	"github.com/Abhi-Verma2005/hrm8-backend-sub003/internal/scheduler"
	walletdomain "github.com/Abhi-Verma2005/hrm8-backend-sub003/internal/wallet/domain"
	withdrawaldomain "github.com/Abhi-Verma2005/hrm8-backend-sub003/internal/withdrawal/domain"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"gorm.io/gorm"
)

const migrationsDir = "migrations"

//go:embed migrations/*.sql
var embeddedMigrations embed.FS

// RunMigrations applies the embedded SQL migrations. Postgres only; other
// dialects go through AutoMigrate so local and test setups work out of the
// box.
func RunMigrations(db *sql.DB) error {
	if db == nil {
		return errors.New("migration database handle is required")
	}

	sub, err := fs.Sub(embeddedMigrations, migrationsDir)
	if err != nil {
		return fmt.Errorf("open migrations: %w", err)
	}

	source, err := iofs.New(sub, ".")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create migration driver: %w", err)
	}

	migrator, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	upErr := migrator.Up()
	if upErr != nil && !errors.Is(upErr, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", upErr)
	}
	// Do not call migrator.Close here because it would close the shared *sql.DB.

	return nil
}

// AutoMigrate creates the schema through gorm for the non-postgres dialects.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&walletdomain.LedgerAccount{},
		&walletdomain.LedgerTransaction{},
		&commissiondomain.Commission{},
		&withdrawaldomain.Withdrawal{},
		&auditdomain.AuditLog{},
		&scheduler.JobRun{},
	)
}
