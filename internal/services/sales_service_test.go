package services_test

import (
	"context"
	"testing"
	"time"

	"salesku/internal/models"
	"salesku/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockSalesRepository is a mock implementation of repositories.SalesRepository
type MockSalesRepository struct {
	mock.Mock
}

func (m *MockSalesRepository) Insert(ctx context.Context, record *models.SalesRecord) (int64, error) {
	args := m.Called(ctx, record)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSalesRepository) ListByUsername(ctx context.Context, username string) ([]models.SalesRecord, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.SalesRecord), args.Error(1)
}

func (m *MockSalesRepository) ListAllWithSubmitter(ctx context.Context) ([]models.SalesRecordWithSubmitter, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.SalesRecordWithSubmitter), args.Error(1)
}

func (m *MockSalesRepository) SumByUsernameAndMonth(ctx context.Context, username string, monthIndex int) (int64, error) {
	args := m.Called(ctx, username, monthIndex)
	return args.Get(0).(int64), args.Error(1)
}

type stubGeocoder struct {
	label string
}

func (s *stubGeocoder) Reverse(_ context.Context, _, _ float64) string {
	return s.label
}

type capturePublisher struct {
	routingKey string
	body       []byte
}

func (p *capturePublisher) Publish(routingKey string, body []byte) error {
	p.routingKey = routingKey
	p.body = body
	return nil
}

func TestSalesService_Submit(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockSalesRepository)
	geocoder := &stubGeocoder{label: "Jl. Sudirman No. 1, Jakarta"}
	publisher := &capturePublisher{}
	salesService := services.NewSalesService(mockRepo, geocoder, publisher)

	before := time.Now().UnixMilli()
	mockRepo.On("Insert", ctx, mock.MatchedBy(func(r *models.SalesRecord) bool {
		return r.StoreName == "Toko Maju" &&
			r.SalesUsername == "budi" &&
			r.Amount == 300_000 &&
			r.Timestamp >= before
	})).Return(int64(7), nil).Once()

	result, err := salesService.Submit(ctx, "budi", services.SubmitInput{
		StoreName:    "Toko Maju",
		StoreAddress: "Jl. Sudirman No. 1",
		Latitude:     -6.2,
		Longitude:    106.8,
		Amount:       300_000,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(7), result.Record.ID)
	assert.Equal(t, "Jl. Sudirman No. 1, Jakarta", result.LocationLabel)

	// A sales.created event goes out for every accepted submission.
	assert.Equal(t, "sales.created", publisher.routingKey)
	assert.Contains(t, string(publisher.body), `"sales_username":"budi"`)
	mockRepo.AssertExpectations(t)
}

func TestSalesService_Submit_LocationRequired(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockSalesRepository)
	salesService := services.NewSalesService(mockRepo, nil, nil)

	// Both coordinates at exactly zero means the location was never
	// captured; the submission is blocked before any write.
	_, err := salesService.Submit(ctx, "budi", services.SubmitInput{
		StoreName:    "Toko Maju",
		StoreAddress: "Jl. Sudirman No. 1",
		Latitude:     0.0,
		Longitude:    0.0,
		Amount:       300_000,
	})
	assert.ErrorIs(t, err, services.ErrLocationRequired)
	mockRepo.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)

	// A single zero coordinate is a legitimate fix (the equator and the
	// prime meridian exist), only the 0,0 pair is the sentinel.
	mockRepo.On("Insert", ctx, mock.AnythingOfType("*models.SalesRecord")).Return(int64(1), nil).Once()
	_, err = salesService.Submit(ctx, "budi", services.SubmitInput{
		StoreName:    "Toko Khatulistiwa",
		StoreAddress: "Pontianak",
		Latitude:     0.0,
		Longitude:    109.3,
		Amount:       100_000,
	})
	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

func TestSalesService_Submit_WithoutOptionalBackends(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockSalesRepository)
	salesService := services.NewSalesService(mockRepo, nil, nil)

	mockRepo.On("Insert", ctx, mock.AnythingOfType("*models.SalesRecord")).Return(int64(3), nil).Once()

	// No geocoder: the label degrades to the raw coordinates.
	result, err := salesService.Submit(ctx, "budi", services.SubmitInput{
		StoreName:    "Toko Maju",
		StoreAddress: "Jl. Sudirman No. 1",
		Latitude:     -6.2,
		Longitude:    106.8,
		Amount:       300_000,
	})
	require.NoError(t, err)
	assert.Equal(t, "Lat: -6.200000, Long: 106.800000", result.LocationLabel)
	mockRepo.AssertExpectations(t)
}

func TestSalesService_ListByUsername(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockSalesRepository)
	salesService := services.NewSalesService(mockRepo, nil, nil)

	expected := []models.SalesRecord{
		{ID: 2, SalesUsername: "budi", Amount: 400_000},
		{ID: 1, SalesUsername: "budi", Amount: 300_000},
	}
	mockRepo.On("ListByUsername", ctx, "budi").Return(expected, nil).Once()

	records, err := salesService.ListByUsername(ctx, "budi")
	require.NoError(t, err)
	assert.Equal(t, expected, records)
	mockRepo.AssertExpectations(t)
}
