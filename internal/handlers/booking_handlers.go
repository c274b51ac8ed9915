package handlers

import (
	"net/http"
	"strconv"
	"time"

	"vatrentals/internal/common"
	"vatrentals/internal/models"
	"vatrentals/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// BookingHandlers handles HTTP requests for the booking ledger
type BookingHandlers struct {
	bookingService  services.BookingServiceInterface
	reminderService services.ReminderService
}

// NewBookingHandlers creates a new booking handlers instance
func NewBookingHandlers(bookingService services.BookingServiceInterface, reminderService services.ReminderService) *BookingHandlers {
	return &BookingHandlers{
		bookingService:  bookingService,
		reminderService: reminderService,
	}
}

// CreateBooking handles POST /bookings
func (h *BookingHandlers) CreateBooking(c echo.Context) error {
	ctx := c.Request().Context()

	var req struct {
		CustomerID        string   `json:"customer_id"`
		CarID             string   `json:"car_id"`
		StartDate         string   `json:"start_date"`
		EndDate           string   `json:"end_date"`
		StartTime         string   `json:"start_time"`
		EndTime           string   `json:"end_time"`
		DailyRate         *float64 `json:"daily_rate"`
		DepositAmount     float64  `json:"deposit_amount"`
		TotalRentReceived float64  `json:"total_rent_received"`
		PaymentMode       string   `json:"payment_mode"`
		Notes             *string  `json:"notes"`
	}

	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	customerID, err := common.ValidateUUID(req.CustomerID, "customer_id")
	if err != nil {
		return common.SendValidationError(c, "customer_id", err.Error())
	}
	carID, err := common.ValidateUUID(req.CarID, "car_id")
	if err != nil {
		return common.SendValidationError(c, "car_id", err.Error())
	}
	startDate, err := common.ParseDate(req.StartDate, "start_date")
	if err != nil {
		return common.SendValidationError(c, "start_date", err.Error())
	}
	endDate, err := common.ParseDate(req.EndDate, "end_date")
	if err != nil {
		return common.SendValidationError(c, "end_date", err.Error())
	}

	booking, err := h.bookingService.CreateBooking(ctx, &services.CreateBookingRequest{
		CustomerID:        customerID,
		CarID:             carID,
		StartDate:         startDate,
		EndDate:           endDate,
		StartTime:         req.StartTime,
		EndTime:           req.EndTime,
		DailyRate:         req.DailyRate,
		DepositAmount:     req.DepositAmount,
		TotalRentReceived: req.TotalRentReceived,
		PaymentMode:       req.PaymentMode,
		Notes:             req.Notes,
	})
	if err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusCreated, booking)
}

// GetBookings handles GET /bookings
func (h *BookingHandlers) GetBookings(c echo.Context) error {
	ctx := c.Request().Context()

	limit := 50
	offset := 0
	if limitParam := c.QueryParam("limit"); limitParam != "" {
		if l, err := strconv.Atoi(limitParam); err == nil && l > 0 {
			limit = l
		}
	}
	if offsetParam := c.QueryParam("offset"); offsetParam != "" {
		if o, err := strconv.Atoi(offsetParam); err == nil && o >= 0 {
			offset = o
		}
	}

	bookings, err := h.bookingService.ListBookings(ctx, limit, offset)
	if err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"bookings": bookings,
		"limit":    limit,
		"offset":   offset,
	})
}

// GetBookingByID handles GET /bookings/:id
func (h *BookingHandlers) GetBookingByID(c echo.Context) error {
	ctx := c.Request().Context()

	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return common.SendClientError(c, "Invalid booking ID")
	}

	booking, err := h.bookingService.GetBookingByID(ctx, bookingID)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusOK, booking)
}

// GetBookingByCode handles GET /bookings/code/:code
func (h *BookingHandlers) GetBookingByCode(c echo.Context) error {
	ctx := c.Request().Context()

	code := c.Param("code")
	if code == "" {
		return common.SendClientError(c, "Booking code is required")
	}

	booking, err := h.bookingService.GetBookingByCode(ctx, code)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusOK, booking)
}

// SearchBookings handles GET /bookings/search
func (h *BookingHandlers) SearchBookings(c echo.Context) error {
	ctx := c.Request().Context()

	filter := &models.BookingSearchFilter{
		Query:     c.QueryParam("q"),
		SortBy:    c.QueryParam("sort_by"),
		SortOrder: c.QueryParam("sort_order"),
	}

	if status := c.QueryParam("status"); status != "" {
		filter.Status = &status
	}
	if carParam := c.QueryParam("car_id"); carParam != "" {
		carID, err := common.ValidateUUID(carParam, "car_id")
		if err != nil {
			return common.SendValidationError(c, "car_id", err.Error())
		}
		filter.CarID = &carID
	}
	if customerParam := c.QueryParam("customer_id"); customerParam != "" {
		customerID, err := common.ValidateUUID(customerParam, "customer_id")
		if err != nil {
			return common.SendValidationError(c, "customer_id", err.Error())
		}
		filter.CustomerID = &customerID
	}
	if fromParam := c.QueryParam("from"); fromParam != "" {
		from, err := common.ParseDate(fromParam, "from")
		if err != nil {
			return common.SendValidationError(c, "from", err.Error())
		}
		filter.From = &from
	}
	if toParam := c.QueryParam("to"); toParam != "" {
		to, err := common.ParseDate(toParam, "to")
		if err != nil {
			return common.SendValidationError(c, "to", err.Error())
		}
		filter.To = &to
	}
	if limitParam := c.QueryParam("limit"); limitParam != "" {
		if l, err := strconv.Atoi(limitParam); err == nil && l > 0 {
			filter.Limit = l
		}
	}
	if offsetParam := c.QueryParam("offset"); offsetParam != "" {
		if o, err := strconv.Atoi(offsetParam); err == nil && o >= 0 {
			filter.Offset = o
		}
	}

	bookings, err := h.bookingService.SearchBookings(ctx, filter)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"bookings": bookings,
		"count":    len(bookings),
	})
}

// UpdateBooking handles PUT /bookings/:id
// Dates, rate and status are immutable here; status moves through the
// lifecycle endpoints below.
func (h *BookingHandlers) UpdateBooking(c echo.Context) error {
	ctx := c.Request().Context()

	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return common.SendClientError(c, "Invalid booking ID")
	}

	var req struct {
		StartTime         *string  `json:"start_time"`
		EndTime           *string  `json:"end_time"`
		DepositAmount     *float64 `json:"deposit_amount"`
		TotalRentReceived *float64 `json:"total_rent_received"`
		PaymentMode       *string  `json:"payment_mode"`
		Notes             *string  `json:"notes"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	booking, err := h.bookingService.UpdateBooking(ctx, &services.UpdateBookingRequest{
		ID:                bookingID,
		StartTime:         req.StartTime,
		EndTime:           req.EndTime,
		DepositAmount:     req.DepositAmount,
		TotalRentReceived: req.TotalRentReceived,
		PaymentMode:       req.PaymentMode,
		Notes:             req.Notes,
	})
	if err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusOK, booking)
}

// ReturnBooking handles POST /bookings/:id/return
func (h *BookingHandlers) ReturnBooking(c echo.Context) error {
	ctx := c.Request().Context()

	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return common.SendClientError(c, "Invalid booking ID")
	}

	booking, err := h.bookingService.MarkReturned(ctx, bookingID)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusOK, booking)
}

// RefundDeposit handles POST /bookings/:id/refund-deposit
func (h *BookingHandlers) RefundDeposit(c echo.Context) error {
	ctx := c.Request().Context()

	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return common.SendClientError(c, "Invalid booking ID")
	}

	refunded, err := h.bookingService.RefundDeposit(ctx, bookingID)
	if err != nil {
		return common.SendDomainError(c, err)
	}

	message := "Deposit refunded"
	if !refunded {
		message = "Deposit not refunded: booking is not returned or was already refunded"
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"refunded": refunded,
		"message":  message,
	})
}

// CancelBooking handles POST /bookings/:id/cancel
func (h *BookingHandlers) CancelBooking(c echo.Context) error {
	ctx := c.Request().Context()

	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return common.SendClientError(c, "Invalid booking ID")
	}

	if err := h.bookingService.CancelBooking(ctx, bookingID); err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{
		"message": "Booking cancelled",
	})
}

// GetCalendar handles GET /bookings/calendar
// Defaults to the current calendar month when no range is given.
func (h *BookingHandlers) GetCalendar(c echo.Context) error {
	ctx := c.Request().Context()

	now := time.Now()
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	to := from.AddDate(0, 1, -1)

	if fromParam := c.QueryParam("from"); fromParam != "" {
		parsed, err := common.ParseDate(fromParam, "from")
		if err != nil {
			return common.SendValidationError(c, "from", err.Error())
		}
		from = parsed
	}
	if toParam := c.QueryParam("to"); toParam != "" {
		parsed, err := common.ParseDate(toParam, "to")
		if err != nil {
			return common.SendValidationError(c, "to", err.Error())
		}
		to = parsed
	}

	bookings, err := h.bookingService.CalendarView(ctx, from, to)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"from":     from.Format("2006-01-02"),
		"to":       to.Format("2006-01-02"),
		"bookings": bookings,
	})
}

// GetNextBookingCode handles GET /bookings/next-code
func (h *BookingHandlers) GetNextBookingCode(c echo.Context) error {
	ctx := c.Request().Context()

	code, err := h.bookingService.NextBookingCode(ctx)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{
		"next_booking_code": code,
	})
}

// GetReminders handles GET /bookings/reminders
func (h *BookingHandlers) GetReminders(c echo.Context) error {
	ctx := c.Request().Context()

	feed, err := h.reminderService.ReminderFeed(ctx)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"reminders": feed,
		"count":     len(feed),
	})
}
