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

// InsuranceHandlers handles HTTP requests for insurance policies
type InsuranceHandlers struct {
	insuranceService services.InsuranceService
}

// NewInsuranceHandlers creates a new insurance handlers instance
func NewInsuranceHandlers(insuranceService services.InsuranceService) *InsuranceHandlers {
	return &InsuranceHandlers{insuranceService: insuranceService}
}

func (h *InsuranceHandlers) bindPolicy(c echo.Context) (*models.InsurancePolicy, error) {
	var req struct {
		CarID        string  `json:"car_id"`
		PolicyNumber string  `json:"policy_number"`
		Provider     string  `json:"provider"`
		Premium      float64 `json:"premium"`
		StartsOn     string  `json:"starts_on"`
		ExpiresOn    string  `json:"expires_on"`
	}
	if err := c.Bind(&req); err != nil {
		return nil, common.SendClientError(c, "Invalid request format")
	}

	carID, err := common.ValidateUUID(req.CarID, "car_id")
	if err != nil {
		return nil, common.SendValidationError(c, "car_id", err.Error())
	}
	startsOn, err := common.ParseDate(req.StartsOn, "starts_on")
	if err != nil {
		return nil, common.SendValidationError(c, "starts_on", err.Error())
	}
	expiresOn, err := common.ParseDate(req.ExpiresOn, "expires_on")
	if err != nil {
		return nil, common.SendValidationError(c, "expires_on", err.Error())
	}

	return &models.InsurancePolicy{
		CarID:        carID,
		PolicyNumber: req.PolicyNumber,
		Provider:     req.Provider,
		Premium:      req.Premium,
		StartsOn:     startsOn,
		ExpiresOn:    expiresOn,
	}, nil
}

// CreatePolicy handles POST /insurance
func (h *InsuranceHandlers) CreatePolicy(c echo.Context) error {
	ctx := c.Request().Context()

	policy, respErr := h.bindPolicy(c)
	if policy == nil {
		return respErr
	}

	if err := h.insuranceService.CreatePolicy(ctx, policy); err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusCreated, policy)
}

// GetPolicies handles GET /insurance
// Filters by car when ?car_id= is given; ?expiring_within_days= lists
// policies lapsing soon.
func (h *InsuranceHandlers) GetPolicies(c echo.Context) error {
	ctx := c.Request().Context()

	if daysParam := c.QueryParam("expiring_within_days"); daysParam != "" {
		days, err := strconv.Atoi(daysParam)
		if err != nil || days <= 0 {
			return common.SendValidationError(c, "expiring_within_days", "must be a positive integer")
		}
		policies, err := h.insuranceService.ListExpiring(ctx, time.Duration(days)*24*time.Hour)
		if err != nil {
			return common.SendDomainError(c, err)
		}
		return c.JSON(http.StatusOK, map[string]interface{}{
			"policies": policies,
			"count":    len(policies),
		})
	}

	if carParam := c.QueryParam("car_id"); carParam != "" {
		carID, err := common.ValidateUUID(carParam, "car_id")
		if err != nil {
			return common.SendValidationError(c, "car_id", err.Error())
		}
		policies, err := h.insuranceService.ListPoliciesByCar(ctx, carID)
		if err != nil {
			return common.SendDomainError(c, err)
		}
		return c.JSON(http.StatusOK, map[string]interface{}{
			"policies": policies,
			"count":    len(policies),
		})
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

	policies, err := h.insuranceService.ListPolicies(ctx, limit, offset)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"policies": policies,
		"limit":    limit,
		"offset":   offset,
	})
}

// GetPolicyByID handles GET /insurance/:id
func (h *InsuranceHandlers) GetPolicyByID(c echo.Context) error {
	ctx := c.Request().Context()

	policyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return common.SendClientError(c, "Invalid policy ID")
	}

	policy, err := h.insuranceService.GetPolicyByID(ctx, policyID)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusOK, policy)
}

// UpdatePolicy handles PUT /insurance/:id
func (h *InsuranceHandlers) UpdatePolicy(c echo.Context) error {
	ctx := c.Request().Context()

	policyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return common.SendClientError(c, "Invalid policy ID")
	}

	policy, respErr := h.bindPolicy(c)
	if policy == nil {
		return respErr
	}
	policy.ID = policyID

	if err := h.insuranceService.UpdatePolicy(ctx, policy); err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusOK, policy)
}

// DeletePolicy handles DELETE /insurance/:id
func (h *InsuranceHandlers) DeletePolicy(c echo.Context) error {
	ctx := c.Request().Context()

	policyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return common.SendClientError(c, "Invalid policy ID")
	}

	if err := h.insuranceService.DeletePolicy(ctx, policyID); err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{
		"message": "Policy deleted",
	})
}
