package repositories

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/MuhamadAgungGumelar/financeiro-max-be/internal/shared/database"
)

// forUpdate adds FOR UPDATE where the database supports row locks. SQLite
// serialises writers on its own.
func forUpdate(tx *gorm.DB) *gorm.DB {
	if database.SupportsRowLocks(tx) {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}
