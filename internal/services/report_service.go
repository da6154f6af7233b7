package services

import (
	"context"
	"fmt"
	"time"

	"salesku/internal/models"
	"salesku/internal/repositories"
	"salesku/pkg/currency"

	"github.com/shopspring/decimal"
)

// AchievementIndicator is the cosmetic band a monthly achievement falls in.
// It drives display color only, nothing else.
type AchievementIndicator string

const (
	IndicatorGreen  AchievementIndicator = "green"  // >= 100%
	IndicatorBlue   AchievementIndicator = "blue"   // >= 75%
	IndicatorOrange AchievementIndicator = "orange" // >= 50%
	IndicatorRed    AchievementIndicator = "red"    // below 50%
)

func indicatorFor(achievement float64) AchievementIndicator {
	switch {
	case achievement >= 100:
		return IndicatorGreen
	case achievement >= 75:
		return IndicatorBlue
	case achievement >= 50:
		return IndicatorOrange
	default:
		return IndicatorRed
	}
}

// MonthlyAchievement is one sales agent's current-month total against their
// target. It is derived on every call, never stored.
type MonthlyAchievement struct {
	UserID        string               `json:"user_id"`
	Name          string               `json:"name"`
	TargetOmset   int64                `json:"target_omset"`
	TargetDisplay string               `json:"target_display"`
	TotalOmset    int64                `json:"total_omset"`
	TotalDisplay  string               `json:"total_display"`
	Achievement   float64              `json:"achievement"`
	Indicator     AchievementIndicator `json:"indicator"`
}

// DailyProgressEntry is one row of the admin review feed.
type DailyProgressEntry struct {
	models.SalesRecordWithSubmitter
	AmountDisplay string `json:"amount_display"`
	DateDisplay   string `json:"date_display"`
}

// DailyProgressReport is the reverse-chronological feed of all submissions
// with the grand total.
type DailyProgressReport struct {
	Entries      []DailyProgressEntry `json:"entries"`
	TotalAmount  int64                `json:"total_amount"`
	TotalDisplay string               `json:"total_display"`
}

// ReportService computes the two admin read-only views.
type ReportService struct {
	userRepo  repositories.UserRepository
	salesRepo repositories.SalesRepository
	now       func() time.Time
}

// NewReportService creates a new ReportService.
func NewReportService(userRepo repositories.UserRepository, salesRepo repositories.SalesRepository) *ReportService {
	return &ReportService{
		userRepo:  userRepo,
		salesRepo: salesRepo,
		now:       time.Now,
	}
}

// MonthlyAchievements returns every sales agent's current-month total and
// achievement percentage, sorted by agent name. Achievement is defined as 0
// when no positive target is set; otherwise 100 * total / target, which can
// exceed 100.
func (s *ReportService) MonthlyAchievements(ctx context.Context) ([]MonthlyAchievement, error) {
	monthIndex := int(s.now().Month()) - 1

	users, err := s.userRepo.ListSalesUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list sales users: %w", err)
	}

	achievements := make([]MonthlyAchievement, 0, len(users))
	for _, user := range users {
		total, err := s.salesRepo.SumByUsernameAndMonth(ctx, user.Username, monthIndex)
		if err != nil {
			return nil, fmt.Errorf("failed to total sales for %s: %w", user.Username, err)
		}

		var achievement float64
		var target int64
		if user.TargetOmset != nil && *user.TargetOmset > 0 {
			target = *user.TargetOmset
			achievement, _ = decimal.NewFromInt(total).
				Mul(decimal.NewFromInt(100)).
				Div(decimal.NewFromInt(target)).
				Float64()
		}

		achievements = append(achievements, MonthlyAchievement{
			UserID:        user.ID,
			Name:          user.Name,
			TargetOmset:   target,
			TargetDisplay: currency.FormatRupiah(target),
			TotalOmset:    total,
			TotalDisplay:  currency.FormatRupiah(total),
			Achievement:   achievement,
			Indicator:     indicatorFor(achievement),
		})
	}
	return achievements, nil
}

// DailyProgress returns all submissions joined with submitter names, newest
// first, plus the grand total.
func (s *ReportService) DailyProgress(ctx context.Context) (*DailyProgressReport, error) {
	rows, err := s.salesRepo.ListAllWithSubmitter(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load daily progress: %w", err)
	}

	var total int64
	entries := make([]DailyProgressEntry, 0, len(rows))
	for _, row := range rows {
		total += row.Amount
		entries = append(entries, DailyProgressEntry{
			SalesRecordWithSubmitter: row,
			AmountDisplay:            currency.FormatRupiah(row.Amount),
			DateDisplay:              row.SubmittedAt().Format("02/01/2006 15:04"),
		})
	}

	return &DailyProgressReport{
		Entries:      entries,
		TotalAmount:  total,
		TotalDisplay: currency.FormatRupiah(total),
	}, nil
}
