package services

import (
	"context"
	"testing"
	"time"

	"vatrentals/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type ReminderServiceTestSuite struct {
	suite.Suite
	bookingRepo *MockBookingRepository
	cacheSvc    *MockCacheService
	service     *reminderService
	ctx         context.Context
	now         time.Time
}

func (suite *ReminderServiceTestSuite) SetupTest() {
	suite.bookingRepo = new(MockBookingRepository)
	suite.cacheSvc = new(MockCacheService)
	suite.ctx = context.Background()
	suite.now = time.Date(2024, 12, 10, 9, 30, 0, 0, time.UTC)

	svc := NewReminderService(suite.bookingRepo, suite.cacheSvc)
	suite.service = svc.(*reminderService)
	suite.service.now = func() time.Time { return suite.now }
}

func TestReminderServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ReminderServiceTestSuite))
}

func (suite *ReminderServiceTestSuite) TestRefreshFeed_ClassifiesByEndDate() {
	overdue := &models.Booking{
		ID:           uuid.New(),
		BookingID:    "VAT-20241205-001",
		CustomerName: "Ravi Kumar",
		Status:       models.BookingStatusActive,
		EndDate:      day(8),
	}
	dueToday := &models.Booking{
		ID:           uuid.New(),
		BookingID:    "VAT-20241207-001",
		CustomerName: "Anita Shah",
		Status:       models.BookingStatusActive,
		EndDate:      day(10),
	}
	dueSoon := &models.Booking{
		ID:           uuid.New(),
		BookingID:    "VAT-20241209-003",
		CustomerName: "John Mathew",
		Status:       models.BookingStatusActive,
		EndDate:      day(12),
	}

	horizon := day(12)
	suite.bookingRepo.On("ListActiveEndingOnOrBefore", suite.ctx, horizon).
		Return([]*models.Booking{overdue, dueToday, dueSoon}, nil)
	suite.cacheSvc.On("SetReminderFeed", suite.ctx, mock.Anything, reminderFeedTTL).Return(nil)

	feed, err := suite.service.RefreshFeed(suite.ctx)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), feed, 3)

	assert.Equal(suite.T(), models.ReminderOverdue, feed[0].Kind)
	assert.Equal(suite.T(), 2, feed[0].DaysOverdue)
	assert.Equal(suite.T(), models.ReminderDueToday, feed[1].Kind)
	assert.Equal(suite.T(), 0, feed[1].DaysOverdue)
	assert.Equal(suite.T(), models.ReminderDueSoon, feed[2].Kind)
}

func (suite *ReminderServiceTestSuite) TestReminderFeed_UsesCache() {
	cached := []*models.Reminder{
		{BookingCode: "VAT-20241209-001", Kind: models.ReminderDueToday},
	}
	suite.cacheSvc.On("GetReminderFeed", suite.ctx).Return(cached, nil)

	feed, err := suite.service.ReminderFeed(suite.ctx)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), cached, feed)

	suite.bookingRepo.AssertNotCalled(suite.T(), "ListActiveEndingOnOrBefore", mock.Anything, mock.Anything)
}

func (suite *ReminderServiceTestSuite) TestReminderFeed_RecomputesOnMiss() {
	suite.cacheSvc.On("GetReminderFeed", suite.ctx).Return(nil, nil)
	suite.bookingRepo.On("ListActiveEndingOnOrBefore", suite.ctx, day(12)).
		Return([]*models.Booking{}, nil)
	suite.cacheSvc.On("SetReminderFeed", suite.ctx, mock.Anything, reminderFeedTTL).Return(nil)

	feed, err := suite.service.ReminderFeed(suite.ctx)
	assert.NoError(suite.T(), err)
	assert.Empty(suite.T(), feed)
}
