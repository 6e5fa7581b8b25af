// Package testutil holds database fixtures shared by tests.
package testutil

import (
	"testing"

	"storefront/internal/config"
	"storefront/internal/domain/model"
	"storefront/internal/infra/db"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// NewSQLiteDB returns a migrated in-memory database private to the test.
// The pool holds a single connection, so a transaction blocks every other
// caller until it finishes.
func NewSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()

	cfg := config.DatabaseConfig{
		Driver:       config.DriverSQLite,
		SQLitePath:   "file:" + uuid.NewString() + "?mode=memory&cache=shared",
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	}
	gdb, err := db.Connect(cfg, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))

	t.Cleanup(func() { _ = db.Close(gdb) })
	return gdb
}

func CreateUser(t *testing.T, gdb *gorm.DB, email string, role model.Role) model.User {
	t.Helper()
	u := model.User{Email: email, PasswordHash: "x", Role: role}
	require.NoError(t, gdb.Create(&u).Error)
	return u
}

func CreateProduct(t *testing.T, gdb *gorm.DB, name string, price, stock int64) model.Product {
	t.Helper()
	p := model.Product{Name: name, Price: price, Stock: stock, Category: "General"}
	require.NoError(t, gdb.Create(&p).Error)
	return p
}

func ReloadProduct(t *testing.T, gdb *gorm.DB, id int64) model.Product {
	t.Helper()
	var p model.Product
	require.NoError(t, gdb.Unscoped().First(&p, id).Error)
	return p
}
