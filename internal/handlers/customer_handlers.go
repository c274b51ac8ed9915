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

// CustomerHandlers handles HTTP requests for the customer directory
type CustomerHandlers struct {
	customerService services.CustomerService
}

// NewCustomerHandlers creates a new customer handlers instance
func NewCustomerHandlers(customerService services.CustomerService) *CustomerHandlers {
	return &CustomerHandlers{customerService: customerService}
}

// CreateCustomer handles POST /customers
func (h *CustomerHandlers) CreateCustomer(c echo.Context) error {
	ctx := c.Request().Context()

	var req struct {
		Name          string  `json:"name"`
		Phone         string  `json:"phone"`
		Address       *string `json:"address"`
		AadharNumber  *string `json:"aadhar_number"`
		LicenseNumber *string `json:"license_number"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	customer, err := h.customerService.CreateCustomer(ctx, &services.CreateCustomerRequest{
		Name:          req.Name,
		Phone:         req.Phone,
		Address:       req.Address,
		AadharNumber:  req.AadharNumber,
		LicenseNumber: req.LicenseNumber,
	})
	if err != nil {
		return common.SendClientError(c, err.Error())
	}
	return c.JSON(http.StatusCreated, customer)
}

// GetCustomers handles GET /customers
func (h *CustomerHandlers) GetCustomers(c echo.Context) error {
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

	customers, err := h.customerService.ListCustomers(ctx, limit, offset)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"customers": customers,
		"limit":     limit,
		"offset":    offset,
	})
}

// GetCustomerByID handles GET /customers/:id
func (h *CustomerHandlers) GetCustomerByID(c echo.Context) error {
	ctx := c.Request().Context()

	customerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return common.SendClientError(c, "Invalid customer ID")
	}

	customer, err := h.customerService.GetCustomerByID(ctx, customerID)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusOK, customer)
}

// SearchCustomers handles GET /customers/search
func (h *CustomerHandlers) SearchCustomers(c echo.Context) error {
	ctx := c.Request().Context()

	query := c.QueryParam("q")
	if query == "" {
		return common.SendValidationError(c, "q", "search query is required")
	}

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

	customers, err := h.customerService.SearchCustomers(ctx, query, limit, offset)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"customers": customers,
		"count":     len(customers),
	})
}

// UpdateCustomer handles PUT /customers/:id
func (h *CustomerHandlers) UpdateCustomer(c echo.Context) error {
	ctx := c.Request().Context()

	customerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return common.SendClientError(c, "Invalid customer ID")
	}

	var req struct {
		Name          string  `json:"name"`
		Phone         string  `json:"phone"`
		Address       *string `json:"address"`
		AadharNumber  *string `json:"aadhar_number"`
		LicenseNumber *string `json:"license_number"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	customer := &models.Customer{
		ID:            customerID,
		Name:          req.Name,
		Phone:         req.Phone,
		Address:       req.Address,
		AadharNumber:  req.AadharNumber,
		LicenseNumber: req.LicenseNumber,
	}

	if err := h.customerService.UpdateCustomer(ctx, customer); err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusOK, customer)
}

// DeleteCustomer handles DELETE /customers/:id
func (h *CustomerHandlers) DeleteCustomer(c echo.Context) error {
	ctx := c.Request().Context()

	customerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return common.SendClientError(c, "Invalid customer ID")
	}

	if err := h.customerService.DeleteCustomer(ctx, customerID); err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{
		"message": "Customer deleted",
	})
}
