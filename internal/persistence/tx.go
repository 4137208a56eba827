// Package persistence is the Persistence Gateway: a transaction scope and a
// set of single-statement read helpers shared by every domain repository.
package persistence

import (
	"context"

	"github.com/approvalengine/expense-service/pkg/logger"
	"github.com/jmoiron/sqlx"
	"gorm.io/gorm"
)

// TxScope runs fn inside a single read-committed transaction pinned for its
// duration. It commits on a nil return and rolls back otherwise. Every
// multi-row write that derives expense or chain state must go through this.
func TxScope(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	err := db.WithContext(ctx).Transaction(fn)
	if err != nil {
		logger.From(ctx).Error("transaction rolled back", "error", err)
	}
	return err
}

// QueryOne runs a single parameterized query and scans the first row into
// dest, used by the Query Surface for reads that don't need gorm's model
// mapping.
func QueryOne(ctx context.Context, db *sqlx.DB, dest interface{}, query string, args ...interface{}) error {
	return db.GetContext(ctx, dest, query, args...)
}

// QueryMany runs a single parameterized query and scans all rows into dest,
// which must be a pointer to a slice.
func QueryMany(ctx context.Context, db *sqlx.DB, dest interface{}, query string, args ...interface{}) error {
	return db.SelectContext(ctx, dest, query, args...)
}
