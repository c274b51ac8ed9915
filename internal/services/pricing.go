package services

import (
	"math"
	"strings"
	"time"

	"vatrentals/internal/models"
)

// FlatDefaultDailyRate applies when neither the booking input, the car
// record, nor the model rate table provides a rate.
const FlatDefaultDailyRate float64 = 1800

// modelRates is a static policy table, not a pricing engine. Keys are
// matched as normalized substrings of the car model name.
var modelRates = map[string]float64{
	"swift":    1500,
	"baleno":   1600,
	"i20":      1600,
	"city":     2200,
	"creta":    2500,
	"innova":   3000,
	"fortuner": 4500,
}

// RentalDuration returns the booking duration in whole days for an
// inclusive [start, end] calendar range: ceil of the elapsed days, with
// a minimum of one. Callers must reject end < start before calling.
func RentalDuration(start, end time.Time) int {
	days := int(math.Ceil(end.Sub(start).Hours() / 24))
	if days < 1 {
		return 1
	}
	return days
}

// TotalAmount derives the booking total from the daily rate and duration.
func TotalAmount(dailyRate float64, duration int) float64 {
	return dailyRate * float64(duration)
}

// BalanceDue is the outstanding amount. Negative means overpaid; it is
// deliberately not clamped.
func BalanceDue(totalAmount, totalRentReceived float64) float64 {
	return totalAmount - totalRentReceived
}

// DefaultDailyRate looks up the model rate table by normalized substring
// match, falling back to the flat default.
func DefaultDailyRate(model string) float64 {
	normalized := strings.ToLower(strings.TrimSpace(model))
	for key, rate := range modelRates {
		if strings.Contains(normalized, key) {
			return rate
		}
	}
	return FlatDefaultDailyRate
}

// ResolveDailyRate picks the effective rate for a booking: explicit
// input wins, then the car's configured rate, then the model table.
// A missing rate is a policy fallback, never a hard failure.
func ResolveDailyRate(requested *float64, car *models.Car) float64 {
	if requested != nil && *requested > 0 {
		return *requested
	}
	if car.DailyRate != nil && *car.DailyRate > 0 {
		return *car.DailyRate
	}
	return DefaultDailyRate(car.Model)
}
