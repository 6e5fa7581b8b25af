package repository

import (
	"errors"
	"fmt"

	repo "storefront/internal/repository"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostgreSQL SQLSTATE codes
const (
	pgUniqueViolation  = "23505"
	pgLockNotAvailable = "55P03"
)

const (
	dialectorPostgres  = "postgres"
	lockStrengthUpdate = "UPDATE"
	lockStrengthShare  = "SHARE"
	lockOptionNoWait   = "NOWAIT"
)

// translateError maps driver errors onto the repository sentinels.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return repo.ErrNotFound
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: %v", repo.ErrDuplicate, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return fmt.Errorf("%w: %s", repo.ErrDuplicate, pgErr.Message)
		case pgLockNotAvailable:
			return repo.ErrLockNotAvailable
		}
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) &&
		(liteErr.ExtendedCode == sqlite3.ErrConstraintUnique || liteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey) {
		return fmt.Errorf("%w: %v", repo.ErrDuplicate, err)
	}
	return err
}

func isPostgres(db *gorm.DB) bool {
	return db.Dialector.Name() == dialectorPostgres
}

// withCartLock adds a non-waiting row lock. SQLite has no row locks and
// serializes writers on its own, so nothing is added there.
func withCartLock(db *gorm.DB, strength repo.LockStrength) *gorm.DB {
	if !isPostgres(db) {
		return db
	}
	s := lockStrengthShare
	if strength == repo.LockForUpdate {
		s = lockStrengthUpdate
	}
	return db.Clauses(clause.Locking{Strength: s, Options: lockOptionNoWait})
}

// withRowLock waits for the lock; used on products where queueing behind
// another checkout is the expected behaviour.
func withRowLock(db *gorm.DB) *gorm.DB {
	if !isPostgres(db) {
		return db
	}
	return db.Clauses(clause.Locking{Strength: lockStrengthUpdate})
}
