package repositories

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"salesku/internal/models"
)

// MockSalesRepository is an in-memory implementation of SalesRepository.
// It resolves submitters against the user repository it is handed, the same
// join the real store performs.
type MockSalesRepository struct {
	records []models.SalesRecord
	nextID  int64
	users   UserRepository
	mu      sync.RWMutex
}

// NewMockSalesRepository creates a new instance of MockSalesRepository.
func NewMockSalesRepository(users UserRepository) *MockSalesRepository {
	return &MockSalesRepository{
		nextID: 1,
		users:  users,
	}
}

// Insert stores a new record and returns the generated ID.
func (r *MockSalesRepository) Insert(_ context.Context, record *models.SalesRecord) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	record.ID = r.nextID
	r.nextID++
	r.records = append(r.records, *record)
	return record.ID, nil
}

// ListByUsername returns one agent's records, newest first.
func (r *MockSalesRepository) ListByUsername(_ context.Context, username string) ([]models.SalesRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	records := make([]models.SalesRecord, 0)
	for _, rec := range r.records {
		if rec.SalesUsername == username {
			records = append(records, rec)
		}
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].Timestamp > records[j].Timestamp
	})
	return records, nil
}

// ListAllWithSubmitter returns every record joined with the submitter's
// display name, newest first.
func (r *MockSalesRepository) ListAllWithSubmitter(ctx context.Context) ([]models.SalesRecordWithSubmitter, error) {
	r.mu.RLock()
	records := make([]models.SalesRecord, len(r.records))
	copy(records, r.records)
	r.mu.RUnlock()

	sort.Slice(records, func(i, j int) bool {
		return records[i].Timestamp > records[j].Timestamp
	})

	result := make([]models.SalesRecordWithSubmitter, 0, len(records))
	for _, rec := range records {
		user, err := r.users.FindByUsername(ctx, rec.SalesUsername)
		if err != nil {
			return nil, fmt.Errorf("submitter %s of record %d: %w", rec.SalesUsername, rec.ID, ErrUserNotFound)
		}
		result = append(result, models.SalesRecordWithSubmitter{
			SalesRecord:   rec,
			SubmitterName: user.Name,
		})
	}
	return result, nil
}

// SumByUsernameAndMonth sums one agent's amounts for the given local
// calendar month (zero-based index), across all years.
func (r *MockSalesRepository) SumByUsernameAndMonth(_ context.Context, username string, monthIndex int) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var total int64
	for _, rec := range r.records {
		if rec.SalesUsername != username {
			continue
		}
		if int(time.UnixMilli(rec.Timestamp).Month())-1 == monthIndex {
			total += rec.Amount
		}
	}
	return total, nil
}
