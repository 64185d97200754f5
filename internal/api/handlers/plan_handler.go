package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/andresuchdata/kitchen-planner/internal/domain"
	"github.com/andresuchdata/kitchen-planner/internal/planner"
	"github.com/andresuchdata/kitchen-planner/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type PlanHandler struct {
	service *service.PlannerService
}

func NewPlanHandler(service *service.PlannerService) *PlanHandler {
	return &PlanHandler{service: service}
}

func (h *PlanHandler) GetBOM(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.BOM())
}

func (h *PlanHandler) GetConfig(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.Defaults())
}

// CreatePlan evaluates a JSON plan request.
func (h *PlanHandler) CreatePlan(c *gin.Context) {
	var req domain.PlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	resp, err := h.service.Plan(c.Request.Context(), req)
	if err != nil {
		writePlanError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetDeliveryStatus evaluates a plan described in the query string and returns only
// the delivery view. Stock is passed as stock[Name]=grams; waste[Name] is optional
// here because it does not affect delivery flags.
//
//	GET /api/v1/plan/delivery?quantity_sold=40&day_type=Weekend&stock[Dough]=9000
func (h *PlanHandler) GetDeliveryStatus(c *gin.Context) {
	req, err := parseDeliveryQuery(c)
	if err != nil {
		writePlanError(c, err)
		return
	}

	resp, err := h.service.Plan(c.Request.Context(), req)
	if err != nil {
		writePlanError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"date":            resp.Date,
		"day_type":        resp.DayType,
		"quantity_sold":   resp.QuantitySold,
		"delivery_status": resp.DeliveryStatus,
	})
}

func parseDeliveryQuery(c *gin.Context) (domain.PlanRequest, error) {
	req := domain.PlanRequest{
		Date:    strings.TrimSpace(c.Query("date")),
		DayType: strings.TrimSpace(c.Query("day_type")),
	}

	if raw := strings.TrimSpace(c.Query("quantity_sold")); raw != "" {
		qty, err := strconv.Atoi(raw)
		if err != nil {
			return req, &planner.InvalidInputError{Field: "quantity_sold", Value: raw, Reason: "must be an integer"}
		}
		req.QuantitySold = &qty
	}

	overrides := &domain.ConfigOverrides{}
	overrideFields := map[string]**float64{
		"safety_factor_normal":  &overrides.SafetyFactorNormal,
		"safety_factor_weekend": &overrides.SafetyFactorWeekend,
		"min_stock_days":        &overrides.MinStockDays,
		"max_stock_days":        &overrides.MaxStockDays,
		"waste_limit_percent":   &overrides.WasteLimitPercent,
	}
	hasOverride := false
	for name, dst := range overrideFields {
		raw := strings.TrimSpace(c.Query(name))
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return req, &planner.InvalidInputError{Field: name, Value: raw, Reason: "must be a number"}
		}
		*dst = &v
		hasOverride = true
	}
	if hasOverride {
		req.Config = overrides
	}

	stock := c.QueryMap("stock")
	waste := c.QueryMap("waste")
	req.Inventory = make(map[string]domain.IngredientInput, len(stock))
	for name, raw := range stock {
		v, err := parseGrams("stock["+name+"]", raw)
		if err != nil {
			return req, err
		}
		in := domain.IngredientInput{CurrentStock: &v}
		if rawWaste, ok := waste[name]; ok {
			w, err := parseGrams("waste["+name+"]", rawWaste)
			if err != nil {
				return req, err
			}
			in.Waste = &w
		} else {
			zero := 0.0
			in.Waste = &zero
		}
		req.Inventory[name] = in
	}
	for name := range waste {
		if _, ok := stock[name]; !ok {
			return req, &planner.InvalidInputError{Field: "waste[" + name + "]", Value: waste[name], Reason: "has no matching stock value"}
		}
	}

	return req, nil
}

func parseGrams(field, raw string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, &planner.InvalidInputError{Field: field, Value: raw, Reason: "must be a number"}
	}
	return v, nil
}

func writePlanError(c *gin.Context, err error) {
	var invalidErr *planner.InvalidInputError
	var cfgErr *planner.ConfigurationError

	switch {
	case errors.As(err, &invalidErr):
		c.JSON(http.StatusBadRequest, gin.H{
			"error": invalidErr.Error(),
			"field": invalidErr.Field,
			"value": invalidErr.Value,
		})
	case errors.As(err, &cfgErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": cfgErr.Error()})
	default:
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("plan evaluation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to evaluate plan"})
	}
}
