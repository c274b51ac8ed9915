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

// ExpenseHandlers handles HTTP requests for fleet expenses
type ExpenseHandlers struct {
	expenseService services.ExpenseService
}

// NewExpenseHandlers creates a new expense handlers instance
func NewExpenseHandlers(expenseService services.ExpenseService) *ExpenseHandlers {
	return &ExpenseHandlers{expenseService: expenseService}
}

// CreateExpense handles POST /expenses
func (h *ExpenseHandlers) CreateExpense(c echo.Context) error {
	ctx := c.Request().Context()

	var req struct {
		CarID       *string `json:"car_id"`
		Category    string  `json:"category"`
		Amount      float64 `json:"amount"`
		ExpenseDate string  `json:"expense_date"`
		Notes       *string `json:"notes"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	expense := &models.Expense{
		Category: req.Category,
		Amount:   req.Amount,
		Notes:    req.Notes,
	}

	if req.CarID != nil && *req.CarID != "" {
		carID, err := common.ValidateUUID(*req.CarID, "car_id")
		if err != nil {
			return common.SendValidationError(c, "car_id", err.Error())
		}
		expense.CarID = &carID
	}
	if req.ExpenseDate != "" {
		expenseDate, err := common.ParseDate(req.ExpenseDate, "expense_date")
		if err != nil {
			return common.SendValidationError(c, "expense_date", err.Error())
		}
		expense.ExpenseDate = expenseDate
	}

	if err := h.expenseService.CreateExpense(ctx, expense); err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusCreated, expense)
}

// GetExpenses handles GET /expenses
// Filters by car when ?car_id= is given.
func (h *ExpenseHandlers) GetExpenses(c echo.Context) error {
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

	var expenses []*models.Expense
	var err error
	if carParam := c.QueryParam("car_id"); carParam != "" {
		carID, verr := common.ValidateUUID(carParam, "car_id")
		if verr != nil {
			return common.SendValidationError(c, "car_id", verr.Error())
		}
		expenses, err = h.expenseService.ListExpensesByCar(ctx, carID, limit, offset)
	} else {
		expenses, err = h.expenseService.ListExpenses(ctx, limit, offset)
	}
	if err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"expenses": expenses,
		"limit":    limit,
		"offset":   offset,
	})
}

// GetExpenseByID handles GET /expenses/:id
func (h *ExpenseHandlers) GetExpenseByID(c echo.Context) error {
	ctx := c.Request().Context()

	expenseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return common.SendClientError(c, "Invalid expense ID")
	}

	expense, err := h.expenseService.GetExpenseByID(ctx, expenseID)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusOK, expense)
}

// UpdateExpense handles PUT /expenses/:id
func (h *ExpenseHandlers) UpdateExpense(c echo.Context) error {
	ctx := c.Request().Context()

	expenseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return common.SendClientError(c, "Invalid expense ID")
	}

	var req struct {
		CarID       *string `json:"car_id"`
		Category    string  `json:"category"`
		Amount      float64 `json:"amount"`
		ExpenseDate string  `json:"expense_date"`
		Notes       *string `json:"notes"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	expense := &models.Expense{
		ID:       expenseID,
		Category: req.Category,
		Amount:   req.Amount,
		Notes:    req.Notes,
	}
	if req.CarID != nil && *req.CarID != "" {
		carID, verr := common.ValidateUUID(*req.CarID, "car_id")
		if verr != nil {
			return common.SendValidationError(c, "car_id", verr.Error())
		}
		expense.CarID = &carID
	}
	if req.ExpenseDate != "" {
		expenseDate, verr := common.ParseDate(req.ExpenseDate, "expense_date")
		if verr != nil {
			return common.SendValidationError(c, "expense_date", verr.Error())
		}
		expense.ExpenseDate = expenseDate
	}

	if err := h.expenseService.UpdateExpense(ctx, expense); err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusOK, expense)
}

// DeleteExpense handles DELETE /expenses/:id
func (h *ExpenseHandlers) DeleteExpense(c echo.Context) error {
	ctx := c.Request().Context()

	expenseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return common.SendClientError(c, "Invalid expense ID")
	}

	if err := h.expenseService.DeleteExpense(ctx, expenseID); err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{
		"message": "Expense deleted",
	})
}
