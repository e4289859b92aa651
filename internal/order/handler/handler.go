package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/chickencore/order-service/internal/apperr"
	"github.com/chickencore/order-service/internal/auth"
	"github.com/chickencore/order-service/internal/httpx"
	"github.com/chickencore/order-service/internal/order"
	"github.com/chickencore/order-service/internal/order/dto"
)

type OrderHandler struct {
	uc order.UseCase
}

func NewOrderHandler(uc order.UseCase) *OrderHandler {
	return &OrderHandler{uc: uc}
}

func (h *OrderHandler) Checkout(c *gin.Context) {
	var input dto.CheckoutInput
	if err := c.ShouldBindJSON(&input); err != nil {
		httpx.Error(c, apperr.Wrap(apperr.Validation, "invalid request body", err))
		return
	}

	o, err := h.uc.Checkout(c.Request.Context(), auth.UserID(c), &input)
	if err != nil {
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, o)
}

func (h *OrderHandler) Get(c *gin.Context) {
	o, err := h.uc.GetOrder(c.Request.Context(), auth.UserID(c), auth.Role(c), c.Param("id"))
	if err != nil {
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

func (h *OrderHandler) List(c *gin.Context) {
	filters := &dto.OrderFilters{
		Status:    c.Query("status"),
		OrderType: c.Query("order_type"),
		Page:      intQuery(c, "page", 1),
		PageSize:  intQuery(c, "page_size", 20),
	}
	if v := c.Query("start_date"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			filters.StartDate = &t
		}
	}
	if v := c.Query("end_date"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			filters.EndDate = &t
		}
	}

	orders, count, err := h.uc.ListOrders(c.Request.Context(), auth.UserID(c), auth.Role(c), filters)
	if err != nil {
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"orders": orders,
		"total":  count,
		"page":   filters.Page,
	})
}

func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	var input dto.UpdateStatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		httpx.Error(c, apperr.Wrap(apperr.Validation, "invalid request body", err))
		return
	}

	o, err := h.uc.UpdateStatus(c.Request.Context(), auth.UserID(c), c.Param("id"), &input)
	if err != nil {
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

func (h *OrderHandler) Cancel(c *gin.Context) {
	var input dto.CancelInput
	if err := c.ShouldBindJSON(&input); err != nil && err.Error() != "EOF" {
		httpx.Error(c, apperr.Wrap(apperr.Validation, "invalid request body", err))
		return
	}

	o, err := h.uc.Cancel(c.Request.Context(), auth.UserID(c), auth.Role(c), c.Param("id"), &input)
	if err != nil {
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

func (h *OrderHandler) Today(c *gin.Context) {
	orders, err := h.uc.TodaysOrders(c.Request.Context())
	if err != nil {
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

func (h *OrderHandler) Scheduled(c *gin.Context) {
	orders, err := h.uc.ScheduledOrders(c.Request.Context(), intQuery(c, "days", 0))
	if err != nil {
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

func (h *OrderHandler) Stats(c *gin.Context) {
	stats, err := h.uc.Stats(c.Request.Context())
	if err != nil {
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func intQuery(c *gin.Context, key string, def int) int {
	v := c.Query(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return def
	}
	return n
}
