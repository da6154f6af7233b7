package repositories

import (
	"context"

	"salesku/internal/models"
)

// SalesRepository defines the interface for sales record access. Records
// are append-only: there is no update or delete.
type SalesRepository interface {
	// Insert stores a new record and returns its generated ID.
	Insert(ctx context.Context, record *models.SalesRecord) (int64, error)
	// ListByUsername returns one agent's records, newest first.
	ListByUsername(ctx context.Context, username string) ([]models.SalesRecord, error)
	// ListAllWithSubmitter returns every record joined with the submitting
	// user's display name, newest first. A record whose submitter cannot be
	// resolved is a lookup failure, not a row to drop.
	ListAllWithSubmitter(ctx context.Context) ([]models.SalesRecordWithSubmitter, error)
	// SumByUsernameAndMonth sums one agent's amounts for records whose local
	// calendar month matches monthIndex (zero-based, January = 0). The month
	// index repeats every year, so a record from the same month of a prior
	// year is counted too; that boundary condition is inherited from the
	// schema, which stores no year bucket.
	SumByUsernameAndMonth(ctx context.Context, username string, monthIndex int) (int64, error)
}
