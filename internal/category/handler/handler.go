package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/chickencore/order-service/internal/apperr"
	"github.com/chickencore/order-service/internal/category"
	"github.com/chickencore/order-service/internal/category/dto"
	"github.com/chickencore/order-service/internal/httpx"
)

type CategoryHandler struct {
	uc category.UseCase
}

func NewCategoryHandler(uc category.UseCase) *CategoryHandler {
	return &CategoryHandler{uc: uc}
}

func (h *CategoryHandler) Create(c *gin.Context) {
	var input dto.CreateCategoryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		httpx.Error(c, apperr.Wrap(apperr.Validation, "invalid request body", err))
		return
	}

	cat, err := h.uc.CreateCategory(c.Request.Context(), &input)
	if err != nil {
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, cat)
}

func (h *CategoryHandler) Update(c *gin.Context) {
	var input dto.UpdateCategoryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		httpx.Error(c, apperr.Wrap(apperr.Validation, "invalid request body", err))
		return
	}
	input.ID = c.Param("id")

	cat, err := h.uc.UpdateCategory(c.Request.Context(), &input)
	if err != nil {
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, cat)
}

func (h *CategoryHandler) Delete(c *gin.Context) {
	if err := h.uc.DeleteCategory(c.Request.Context(), c.Param("id")); err != nil {
		httpx.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *CategoryHandler) Get(c *gin.Context) {
	cat, err := h.uc.GetCategory(c.Request.Context(), c.Param("id"))
	if err != nil {
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, cat)
}

func (h *CategoryHandler) List(c *gin.Context) {
	activeOnly := c.Query("active") == "true"
	categories, err := h.uc.ListCategories(c.Request.Context(), activeOnly)
	if err != nil {
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}
