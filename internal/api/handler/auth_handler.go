package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/emmoscript/AutoSlot/internal/domain"
	"github.com/emmoscript/AutoSlot/internal/service"
)

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(as *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: as}
}

// POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var dto domain.LoginUserDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		badRequest(c, "Missing required fields: username, password")
		return
	}

	authResponse, err := h.authService.Login(dto)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, authResponse)
}
