package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pharmatrust/docvault/internal/middleware"
	"github.com/pharmatrust/docvault/internal/pkg/errcode"
	"github.com/pharmatrust/docvault/internal/pkg/response"
	"github.com/pharmatrust/docvault/internal/service"
)

type AuthHandler struct {
	auth *service.AuthService
}

func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, errcode.ErrInvalid, "invalid request")
		return
	}
	if req.Email == "" || req.Password == "" {
		response.Error(c, http.StatusBadRequest, errcode.ErrInvalid, "email and password required")
		return
	}
	result, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, result)
}

func (h *AuthHandler) Me(c *gin.Context) {
	response.Success(c, middleware.Actor(c))
}
