package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/chickencore/order-service/internal/apperr"
	"github.com/chickencore/order-service/internal/auth"
	"github.com/chickencore/order-service/internal/cart"
	"github.com/chickencore/order-service/internal/cart/dto"
	"github.com/chickencore/order-service/internal/httpx"
)

type CartHandler struct {
	uc cart.UseCase
}

func NewCartHandler(uc cart.UseCase) *CartHandler {
	return &CartHandler{uc: uc}
}

func (h *CartHandler) Get(c *gin.Context) {
	userID := auth.UserID(c)
	crt, summary, err := h.uc.GetCart(c.Request.Context(), userID)
	if err != nil {
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cart": crt, "summary": summary})
}

func (h *CartHandler) AddItem(c *gin.Context) {
	var input dto.AddItemInput
	if err := c.ShouldBindJSON(&input); err != nil {
		httpx.Error(c, apperr.Wrap(apperr.Validation, "invalid request body", err))
		return
	}

	crt, err := h.uc.AddItem(c.Request.Context(), auth.UserID(c), &input)
	if err != nil {
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, crt)
}

func (h *CartHandler) UpdateItem(c *gin.Context) {
	var input dto.UpdateItemInput
	if err := c.ShouldBindJSON(&input); err != nil {
		httpx.Error(c, apperr.Wrap(apperr.Validation, "invalid request body", err))
		return
	}

	crt, err := h.uc.UpdateItem(c.Request.Context(), auth.UserID(c), c.Param("itemId"), &input)
	if err != nil {
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, crt)
}

func (h *CartHandler) RemoveItem(c *gin.Context) {
	if err := h.uc.RemoveItem(c.Request.Context(), auth.UserID(c), c.Param("itemId")); err != nil {
		httpx.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *CartHandler) Clear(c *gin.Context) {
	if err := h.uc.ClearCart(c.Request.Context(), auth.UserID(c)); err != nil {
		httpx.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
