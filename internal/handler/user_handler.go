package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pharmatrust/docvault/internal/middleware"
	"github.com/pharmatrust/docvault/internal/model"
	"github.com/pharmatrust/docvault/internal/pkg/errcode"
	"github.com/pharmatrust/docvault/internal/pkg/response"
	"github.com/pharmatrust/docvault/internal/service"
)

type UserHandler struct {
	users *service.UserService
}

func NewUserHandler(users *service.UserService) *UserHandler {
	return &UserHandler{users: users}
}

type userCreateRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func (h *UserHandler) Create(c *gin.Context) {
	var req userCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, errcode.ErrInvalid, "invalid request")
		return
	}
	user, err := h.users.Create(c.Request.Context(), middleware.Actor(c), service.UserCreateInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     model.Role(req.Role),
	}, provenance(c))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, user)
}

func (h *UserHandler) List(c *gin.Context) {
	users, err := h.users.List(c.Request.Context(), middleware.Actor(c), queryUint(c, "limit"), queryUint(c, "offset"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, users)
}

type userRoleRequest struct {
	Role string `json:"role"`
}

func (h *UserHandler) UpdateRole(c *gin.Context) {
	var req userRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, errcode.ErrInvalid, "invalid request")
		return
	}
	err := h.users.UpdateRole(c.Request.Context(), middleware.Actor(c), c.Param("id"), model.Role(req.Role), provenance(c))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, nil)
}

func (h *UserHandler) Disable(c *gin.Context) {
	err := h.users.Disable(c.Request.Context(), middleware.Actor(c), c.Param("id"), provenance(c))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, nil)
}
