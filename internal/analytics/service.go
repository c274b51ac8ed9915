package analytics

import (
	"context"
	"log"
	"time"

	"vatrentals/internal/caching"
	"vatrentals/internal/models"
	"vatrentals/internal/repositories"
	"vatrentals/internal/services"
)

const dashboardTTL = 10 * time.Minute

// Service assembles the owner dashboard: fleet utilization, monthly
// revenue, booking status breakdown, outstanding balances and expense
// totals. Everything is derived from the ledger; nothing is stored.
type Service interface {
	Dashboard(ctx context.Context) (map[string]interface{}, error)
	RefreshDashboard(ctx context.Context) (map[string]interface{}, error)
}

type service struct {
	bookingRepo repositories.BookingRepository
	carRepo     repositories.CarRepository
	expenseRepo repositories.ExpenseRepository
	cacheSvc    caching.CacheService
	now         func() time.Time
}

func NewService(bookingRepo repositories.BookingRepository, carRepo repositories.CarRepository,
	expenseRepo repositories.ExpenseRepository, cacheSvc caching.CacheService) Service {
	return &service{
		bookingRepo: bookingRepo,
		carRepo:     carRepo,
		expenseRepo: expenseRepo,
		cacheSvc:    cacheSvc,
		now:         time.Now,
	}
}

func (s *service) Dashboard(ctx context.Context) (map[string]interface{}, error) {
	if cached, err := s.cacheSvc.GetDashboard(ctx); err == nil && cached != nil {
		return cached, nil
	}
	return s.RefreshDashboard(ctx)
}

// RefreshDashboard recomputes every dashboard figure for the current
// calendar month and rewrites the cache.
func (s *service) RefreshDashboard(ctx context.Context) (map[string]interface{}, error) {
	now := s.now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	monthEnd := monthStart.AddDate(0, 1, 0).Add(-time.Nanosecond)

	fleetCounts, err := s.carRepo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	totalCars := 0
	for _, count := range fleetCounts {
		totalCars += count
	}
	utilization := 0.0
	if totalCars > 0 {
		utilization = float64(fleetCounts[models.CarStatusRented]) / float64(totalCars) * 100
	}

	bookings, err := s.bookingRepo.ListCreatedBetween(ctx, monthStart, monthEnd)
	if err != nil {
		return nil, err
	}

	var revenueBilled, revenueReceived, outstanding float64
	statusCounts := make(map[string]int)
	pendingRefunds := 0
	for _, b := range bookings {
		statusCounts[b.Status]++
		revenueBilled += b.TotalAmount
		revenueReceived += b.TotalRentReceived
		if b.Status != models.BookingStatusCancelled {
			if due := services.BalanceDue(b.TotalAmount, b.TotalRentReceived); due > 0 {
				outstanding += due
			}
		}
		if b.Status == models.BookingStatusReturned && !b.DepositRefunded {
			pendingRefunds++
		}
	}

	expenseTotals, err := s.expenseRepo.TotalsByCategory(ctx, monthStart, monthEnd)
	if err != nil {
		return nil, err
	}
	totalExpenses := 0.0
	for _, amount := range expenseTotals {
		totalExpenses += amount
	}

	dashboard := map[string]interface{}{
		"month":                 monthStart.Format("2006-01"),
		"fleet_counts":          fleetCounts,
		"fleet_size":            totalCars,
		"fleet_utilization_pct": utilization,
		"bookings_created":      len(bookings),
		"booking_status_counts": statusCounts,
		"revenue_billed":        revenueBilled,
		"revenue_received":      revenueReceived,
		"outstanding_balance":   outstanding,
		"pending_deposit_refunds": pendingRefunds,
		"expense_totals":        expenseTotals,
		"total_expenses":        totalExpenses,
		"net_revenue":           revenueReceived - totalExpenses,
		"generated_at":          now,
	}

	if err := s.cacheSvc.SetDashboard(ctx, dashboard, dashboardTTL); err != nil {
		log.Printf("WARN: failed to cache dashboard: %v", err)
	}
	return dashboard, nil
}
