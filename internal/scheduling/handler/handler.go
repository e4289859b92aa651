package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/chickencore/order-service/internal/apperr"
	"github.com/chickencore/order-service/internal/auth"
	"github.com/chickencore/order-service/internal/httpx"
	"github.com/chickencore/order-service/internal/scheduling"
	"github.com/chickencore/order-service/internal/scheduling/dto"
)

type SchedulingHandler struct {
	uc scheduling.UseCase
}

func NewSchedulingHandler(uc scheduling.UseCase) *SchedulingHandler {
	return &SchedulingHandler{uc: uc}
}

func (h *SchedulingHandler) CreateRule(c *gin.Context) {
	var input dto.CreateRuleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		httpx.Error(c, apperr.Wrap(apperr.Validation, "invalid request body", err))
		return
	}

	rule, err := h.uc.CreateRule(c.Request.Context(), &input)
	if err != nil {
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, rule)
}

func (h *SchedulingHandler) UpdateRule(c *gin.Context) {
	var input dto.UpdateRuleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		httpx.Error(c, apperr.Wrap(apperr.Validation, "invalid request body", err))
		return
	}
	input.ID = c.Param("id")

	rule, err := h.uc.UpdateRule(c.Request.Context(), &input)
	if err != nil {
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, rule)
}

func (h *SchedulingHandler) DeleteRule(c *gin.Context) {
	if err := h.uc.DeleteRule(c.Request.Context(), c.Param("id")); err != nil {
		httpx.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *SchedulingHandler) ListRules(c *gin.Context) {
	rules, err := h.uc.ListRules(c.Request.Context())
	if err != nil {
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rules": rules})
}

func (h *SchedulingHandler) WeekInfo(c *gin.Context) {
	week, err := h.uc.WeekInfo(c.Request.Context())
	if err != nil {
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"week": week})
}

func (h *SchedulingHandler) Validate(c *gin.Context) {
	var input dto.ValidateScheduleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		httpx.Error(c, apperr.Wrap(apperr.Validation, "invalid request body", err))
		return
	}

	target, err := time.Parse(time.RFC3339, input.ScheduledFor)
	if err != nil {
		httpx.Error(c, apperr.Wrap(apperr.Validation, "scheduled_for must be RFC 3339", err))
		return
	}

	result, err := h.uc.ValidateSchedule(c.Request.Context(), auth.UserID(c), target)
	if err != nil {
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
