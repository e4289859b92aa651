package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/chickencore/order-service/internal/apperr"
	"github.com/chickencore/order-service/internal/auth"
	"github.com/chickencore/order-service/internal/auth/dto"
	"github.com/chickencore/order-service/internal/httpx"
	"github.com/chickencore/order-service/pkg/logger"
)

type AuthHandler struct {
	uc     auth.UseCase
	logger logger.ZapLogger
}

func NewAuthHandler(uc auth.UseCase, log logger.ZapLogger) *AuthHandler {
	return &AuthHandler{uc: uc, logger: log}
}

func (h *AuthHandler) Login(c *gin.Context) {
	var input dto.LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		httpx.Error(c, apperr.Wrap(apperr.Validation, "invalid request body", err))
		return
	}

	token, user, err := h.uc.Login(c.Request.Context(), &input)
	if err != nil {
		httpx.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}

func (h *AuthHandler) Register(c *gin.Context) {
	var input dto.RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		httpx.Error(c, apperr.Wrap(apperr.Validation, "invalid request body", err))
		return
	}

	user, err := h.uc.Register(c.Request.Context(), &input)
	if err != nil {
		httpx.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, user)
}
