package repositories

import (
	"context"
	"fmt"
	"time"

	"salesku/internal/models"

	"gorm.io/gorm"
)

// GORMSalesRepository is a GORM implementation of SalesRepository.
type GORMSalesRepository struct {
	db *gorm.DB
}

// NewGORMSalesRepository creates a new instance of GORMSalesRepository.
func NewGORMSalesRepository(db *gorm.DB) *GORMSalesRepository {
	return &GORMSalesRepository{
		db: db,
	}
}

// Insert stores a new sales record and returns the generated ID.
func (r *GORMSalesRepository) Insert(ctx context.Context, record *models.SalesRecord) (int64, error) {
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return 0, fmt.Errorf("failed to insert sales record: %w", err)
	}
	return record.ID, nil
}

// ListByUsername returns one agent's records, newest first.
func (r *GORMSalesRepository) ListByUsername(ctx context.Context, username string) ([]models.SalesRecord, error) {
	var records []models.SalesRecord
	err := r.db.WithContext(ctx).
		Where("sales_username = ?", username).
		Order("timestamp DESC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list sales records for %s: %w", username, err)
	}
	return records, nil
}

// ListAllWithSubmitter returns every record joined with the submitting
// user's display name, newest first. The join runs as two queries, the same
// shape the relation had in the original schema. A record whose submitter no
// longer resolves fails the whole call; users are never deleted, so hitting
// that path means the store is inconsistent.
func (r *GORMSalesRepository) ListAllWithSubmitter(ctx context.Context) ([]models.SalesRecordWithSubmitter, error) {
	var records []models.SalesRecord
	err := r.db.WithContext(ctx).
		Order("timestamp DESC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list sales records: %w", err)
	}
	if len(records) == 0 {
		return []models.SalesRecordWithSubmitter{}, nil
	}

	usernames := make([]string, 0, len(records))
	seen := make(map[string]bool)
	for _, rec := range records {
		if !seen[rec.SalesUsername] {
			seen[rec.SalesUsername] = true
			usernames = append(usernames, rec.SalesUsername)
		}
	}

	var users []models.User
	if err := r.db.WithContext(ctx).Where("username IN ?", usernames).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to resolve submitters: %w", err)
	}
	nameByUsername := make(map[string]string, len(users))
	for _, u := range users {
		nameByUsername[u.Username] = u.Name
	}

	result := make([]models.SalesRecordWithSubmitter, 0, len(records))
	for _, rec := range records {
		name, ok := nameByUsername[rec.SalesUsername]
		if !ok {
			return nil, fmt.Errorf("submitter %s of record %d: %w", rec.SalesUsername, rec.ID, ErrUserNotFound)
		}
		result = append(result, models.SalesRecordWithSubmitter{
			SalesRecord:   rec,
			SubmitterName: name,
		})
	}
	return result, nil
}

// SumByUsernameAndMonth sums one agent's amounts for records in the given
// local calendar month (zero-based index). Bucketing happens here rather
// than in SQL so the result is identical across the sqlite and postgres
// drivers. The month index carries no year, so same-month records from prior
// years are included; the schema stores no year bucket to distinguish them.
func (r *GORMSalesRepository) SumByUsernameAndMonth(ctx context.Context, username string, monthIndex int) (int64, error) {
	type row struct {
		Timestamp int64
		Amount    int64
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&models.SalesRecord{}).
		Select("timestamp", "amount").
		Where("sales_username = ?", username).
		Find(&rows).Error
	if err != nil {
		return 0, fmt.Errorf("failed to sum sales for %s: %w", username, err)
	}

	var total int64
	for _, rw := range rows {
		if int(time.UnixMilli(rw.Timestamp).Month())-1 == monthIndex {
			total += rw.Amount
		}
	}
	return total, nil
}
