package services

import (
	"context"
	"log"
	"time"

	"vatrentals/internal/caching"
	"vatrentals/internal/models"
	"vatrentals/internal/repositories"
)

const (
	reminderFeedTTL = 30 * time.Minute

	// Bookings ending within this window count as due_soon.
	dueSoonWindowDays = 2
)

// ReminderService derives the due/overdue feed from Active bookings.
// The feed is computed from end dates at read time, never persisted.
type ReminderService interface {
	ReminderFeed(ctx context.Context) ([]*models.Reminder, error)
	RefreshFeed(ctx context.Context) ([]*models.Reminder, error)
}

type reminderService struct {
	bookingRepo repositories.BookingRepository
	cacheSvc    caching.CacheService
	now         func() time.Time
}

func NewReminderService(bookingRepo repositories.BookingRepository, cacheSvc caching.CacheService) ReminderService {
	return &reminderService{
		bookingRepo: bookingRepo,
		cacheSvc:    cacheSvc,
		now:         time.Now,
	}
}

// ReminderFeed returns the cached feed when present, recomputing it
// otherwise.
func (s *reminderService) ReminderFeed(ctx context.Context) ([]*models.Reminder, error) {
	if cached, err := s.cacheSvc.GetReminderFeed(ctx); err == nil && cached != nil {
		return cached, nil
	}
	return s.RefreshFeed(ctx)
}

// RefreshFeed recomputes the feed from Active bookings and rewrites the
// cache. Called by the background scheduler and on cache misses.
func (s *reminderService) RefreshFeed(ctx context.Context) ([]*models.Reminder, error) {
	today := truncateToDay(s.now())
	horizon := today.AddDate(0, 0, dueSoonWindowDays)

	bookings, err := s.bookingRepo.ListActiveEndingOnOrBefore(ctx, horizon)
	if err != nil {
		return nil, err
	}

	feed := make([]*models.Reminder, 0, len(bookings))
	for _, b := range bookings {
		endDay := truncateToDay(b.EndDate)
		reminder := &models.Reminder{
			BookingID:    b.ID,
			BookingCode:  b.BookingID,
			CustomerName: b.CustomerName,
			CarDetails:   b.CarDetails,
			EndDate:      b.EndDate,
		}
		switch {
		case endDay.Before(today):
			reminder.Kind = models.ReminderOverdue
			reminder.DaysOverdue = int(today.Sub(endDay).Hours() / 24)
		case endDay.Equal(today):
			reminder.Kind = models.ReminderDueToday
		default:
			reminder.Kind = models.ReminderDueSoon
		}
		feed = append(feed, reminder)
	}

	if err := s.cacheSvc.SetReminderFeed(ctx, feed, reminderFeedTTL); err != nil {
		log.Printf("WARN: failed to cache reminder feed: %v", err)
	}
	return feed, nil
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
