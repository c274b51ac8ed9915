package handlers

import (
	"net/http"
	"strconv"

	"vatrentals/internal/common"
	"vatrentals/internal/models"
	"vatrentals/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// CarHandlers handles HTTP requests for the fleet directory
type CarHandlers struct {
	fleetService services.FleetService
}

// NewCarHandlers creates a new car handlers instance
func NewCarHandlers(fleetService services.FleetService) *CarHandlers {
	return &CarHandlers{fleetService: fleetService}
}

// CreateCar handles POST /cars
func (h *CarHandlers) CreateCar(c echo.Context) error {
	ctx := c.Request().Context()

	var req struct {
		Make         string   `json:"make"`
		Model        string   `json:"model"`
		Year         int      `json:"year"`
		PlateNumber  string   `json:"plate_number"`
		FuelType     string   `json:"fuel_type"`
		Transmission string   `json:"transmission"`
		DailyRate    *float64 `json:"daily_rate"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	car := &models.Car{
		Make:         req.Make,
		Model:        req.Model,
		Year:         req.Year,
		PlateNumber:  req.PlateNumber,
		FuelType:     req.FuelType,
		Transmission: req.Transmission,
		DailyRate:    req.DailyRate,
	}

	if err := h.fleetService.CreateCar(ctx, car); err != nil {
		return common.SendClientError(c, err.Error())
	}
	return c.JSON(http.StatusCreated, car)
}

// GetCars handles GET /cars
func (h *CarHandlers) GetCars(c echo.Context) error {
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

	var cars []*models.Car
	var err error
	if status := c.QueryParam("status"); status != "" {
		cars, err = h.fleetService.ListCarsByStatus(ctx, status, limit, offset)
	} else {
		cars, err = h.fleetService.ListCars(ctx, limit, offset)
	}
	if err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"cars":   cars,
		"limit":  limit,
		"offset": offset,
	})
}

// GetCarByID handles GET /cars/:id
func (h *CarHandlers) GetCarByID(c echo.Context) error {
	ctx := c.Request().Context()

	carID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return common.SendClientError(c, "Invalid car ID")
	}

	car, err := h.fleetService.GetCarByID(ctx, carID)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusOK, car)
}

// SearchCars handles GET /cars/search
func (h *CarHandlers) SearchCars(c echo.Context) error {
	ctx := c.Request().Context()

	filter := &models.CarSearchFilter{
		Query:     c.QueryParam("q"),
		SortBy:    c.QueryParam("sort_by"),
		SortOrder: c.QueryParam("sort_order"),
	}
	if status := c.QueryParam("status"); status != "" {
		filter.Status = &status
	}
	if fuelType := c.QueryParam("fuel_type"); fuelType != "" {
		filter.FuelType = &fuelType
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

	cars, err := h.fleetService.SearchCars(ctx, filter)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"cars":  cars,
		"count": len(cars),
	})
}

// UpdateCar handles PUT /cars/:id
func (h *CarHandlers) UpdateCar(c echo.Context) error {
	ctx := c.Request().Context()

	carID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return common.SendClientError(c, "Invalid car ID")
	}

	var req struct {
		Make         string   `json:"make"`
		Model        string   `json:"model"`
		Year         int      `json:"year"`
		PlateNumber  string   `json:"plate_number"`
		FuelType     string   `json:"fuel_type"`
		Transmission string   `json:"transmission"`
		DailyRate    *float64 `json:"daily_rate"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	car := &models.Car{
		ID:           carID,
		Make:         req.Make,
		Model:        req.Model,
		Year:         req.Year,
		PlateNumber:  req.PlateNumber,
		FuelType:     req.FuelType,
		Transmission: req.Transmission,
		DailyRate:    req.DailyRate,
	}

	if err := h.fleetService.UpdateCar(ctx, car); err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusOK, car)
}

// UpdateCarStatus handles PUT /cars/:id/status
func (h *CarHandlers) UpdateCarStatus(c echo.Context) error {
	ctx := c.Request().Context()

	carID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return common.SendClientError(c, "Invalid car ID")
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	if err := h.fleetService.SetCarStatus(ctx, carID, req.Status); err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{
		"message": "Car status updated",
	})
}

// DeleteCar handles DELETE /cars/:id
func (h *CarHandlers) DeleteCar(c echo.Context) error {
	ctx := c.Request().Context()

	carID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return common.SendClientError(c, "Invalid car ID")
	}

	if err := h.fleetService.DeleteCar(ctx, carID); err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{
		"message": "Car deleted",
	})
}
