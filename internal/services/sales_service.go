package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"salesku/internal/models"
	"salesku/internal/repositories"
)

// ErrLocationRequired is returned when a submission arrives without a
// captured location. Both coordinates being exactly zero is the "not yet
// captured" marker, not a real fix.
var ErrLocationRequired = errors.New("location has not been captured")

// Geocoder resolves coordinates to a display address, best effort.
type Geocoder interface {
	Reverse(ctx context.Context, lat, lng float64) string
}

// EventPublisher publishes domain events to the message broker.
type EventPublisher interface {
	Publish(routingKey string, body []byte) error
}

// SalesService handles business logic for sales record submission.
type SalesService struct {
	salesRepo repositories.SalesRepository
	geocoder  Geocoder
	events    EventPublisher
	now       func() time.Time
}

// NewSalesService creates a new SalesService. geocoder and events may be nil
// when the corresponding backends are unavailable; both are best effort.
func NewSalesService(salesRepo repositories.SalesRepository, geocoder Geocoder, events EventPublisher) *SalesService {
	return &SalesService{
		salesRepo: salesRepo,
		geocoder:  geocoder,
		events:    events,
		now:       time.Now,
	}
}

// SubmitInput is the data a sales agent submits for one store visit.
type SubmitInput struct {
	StoreName    string
	StoreAddress string
	Latitude     float64
	Longitude    float64
	Amount       int64
}

// SubmitResult is the stored record plus the resolved location label.
type SubmitResult struct {
	Record        models.SalesRecord
	LocationLabel string
}

// Submit validates and stores a sales record for the given agent, then
// publishes a sales.created event. The record is immutable once written.
func (s *SalesService) Submit(ctx context.Context, username string, input SubmitInput) (*SubmitResult, error) {
	if input.Latitude == 0.0 && input.Longitude == 0.0 {
		return nil, ErrLocationRequired
	}

	record := &models.SalesRecord{
		Timestamp:     s.now().UnixMilli(),
		StoreName:     input.StoreName,
		StoreAddress:  input.StoreAddress,
		Latitude:      input.Latitude,
		Longitude:     input.Longitude,
		Amount:        input.Amount,
		SalesUsername: username,
	}
	id, err := s.salesRepo.Insert(ctx, record)
	if err != nil {
		return nil, fmt.Errorf("failed to store sales record: %w", err)
	}
	record.ID = id

	locationLabel := fmt.Sprintf("Lat: %.6f, Long: %.6f", input.Latitude, input.Longitude)
	if s.geocoder != nil {
		locationLabel = s.geocoder.Reverse(ctx, input.Latitude, input.Longitude)
	}

	if s.events != nil {
		event := map[string]interface{}{
			"record_id":      record.ID,
			"sales_username": record.SalesUsername,
			"store_name":     record.StoreName,
			"amount":         record.Amount,
			"timestamp":      record.Timestamp,
		}
		body, err := json.Marshal(event)
		if err != nil {
			log.Printf("Failed to marshal sales event: %v", err)
		} else if err := s.events.Publish("sales.created", body); err != nil {
			log.Printf("Warning: failed to publish sales.created for record %d: %v", record.ID, err)
		}
	} else {
		log.Println("Event publisher is not initialized. Skipping message publication.")
	}

	return &SubmitResult{
		Record:        *record,
		LocationLabel: locationLabel,
	}, nil
}

// ListByUsername returns one agent's submission history, newest first.
func (s *SalesService) ListByUsername(ctx context.Context, username string) ([]models.SalesRecord, error) {
	return s.salesRepo.ListByUsername(ctx, username)
}
