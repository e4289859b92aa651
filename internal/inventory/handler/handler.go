package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/chickencore/order-service/internal/apperr"
	"github.com/chickencore/order-service/internal/auth"
	"github.com/chickencore/order-service/internal/httpx"
	"github.com/chickencore/order-service/internal/inventory"
	"github.com/chickencore/order-service/internal/inventory/dto"
	"github.com/chickencore/order-service/pkg/logger"
)

type InventoryHandler struct {
	uc     inventory.UseCase
	logger logger.ZapLogger
}

func NewInventoryHandler(uc inventory.UseCase, log logger.ZapLogger) *InventoryHandler {
	return &InventoryHandler{uc: uc, logger: log}
}

// AdjustStock handles POST /products/:id/stock.
func (h *InventoryHandler) AdjustStock(c *gin.Context) {
	var req dto.AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.Error(c, apperr.Wrap(apperr.Validation, "invalid request body", err))
		return
	}

	actorID := auth.UserID(c)
	movement, err := h.uc.AdjustInventory(c.Request.Context(), &dto.AdjustInput{
		ProductID:    c.Param("id"),
		MovementType: req.MovementType,
		Quantity:     req.Quantity,
		Reason:       req.Reason,
		ActorID:      &actorID,
	})
	if err != nil {
		httpx.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, movement)
}

// ListMovements handles GET /inventory/movements.
func (h *InventoryHandler) ListMovements(c *gin.Context) {
	filters := &dto.MovementFilters{
		ProductID:    c.Query("product_id"),
		MovementType: c.Query("movement_type"),
		Page:         intQuery(c, "page", 1),
		PageSize:     intQuery(c, "page_size", 20),
	}
	if raw := c.Query("start_date"); raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			filters.StartDate = &t
		}
	}
	if raw := c.Query("end_date"); raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			filters.EndDate = &t
		}
	}

	movements, total, err := h.uc.ListMovements(c.Request.Context(), filters)
	if err != nil {
		httpx.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"movements": movements,
		"total":     total,
		"page":      filters.Page,
		"page_size": filters.PageSize,
	})
}

func intQuery(c *gin.Context, key string, fallback int) int {
	if raw := c.Query(key); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			return v
		}
	}
	return fallback
}
