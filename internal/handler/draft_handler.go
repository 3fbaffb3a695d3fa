package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pharmatrust/docvault/internal/middleware"
	"github.com/pharmatrust/docvault/internal/model"
	"github.com/pharmatrust/docvault/internal/pkg/errcode"
	"github.com/pharmatrust/docvault/internal/pkg/response"
	"github.com/pharmatrust/docvault/internal/repo"
	"github.com/pharmatrust/docvault/internal/service"
)

type DraftHandler struct {
	drafts *service.DraftService
}

func NewDraftHandler(drafts *service.DraftService) *DraftHandler {
	return &DraftHandler{drafts: drafts}
}

type draftCreateRequest struct {
	BaseVersionID string           `json:"base_version_id"`
	Name          string           `json:"name"`
	Description   string           `json:"description"`
	Content       model.ContentRef `json:"content"`
}

func (h *DraftHandler) Create(c *gin.Context) {
	var req draftCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, errcode.ErrInvalid, "invalid request")
		return
	}
	if req.Name == "" {
		response.Error(c, http.StatusBadRequest, errcode.ErrInvalid, "name required")
		return
	}
	draft, err := h.drafts.Create(c.Request.Context(), middleware.Actor(c), service.DraftCreateInput{
		DocumentID:    c.Param("id"),
		BaseVersionID: req.BaseVersionID,
		Name:          req.Name,
		Description:   req.Description,
		Content:       req.Content,
	}, provenance(c))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, draft)
}

func (h *DraftHandler) List(c *gin.Context) {
	drafts, err := h.drafts.List(c.Request.Context(), repo.DraftFilter{
		DocumentID: c.Query("document_id"),
		CreatedBy:  c.Query("created_by"),
		Status:     c.Query("status"),
		Limit:      queryUint(c, "limit"),
		Offset:     queryUint(c, "offset"),
	})
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, drafts)
}

func (h *DraftHandler) Get(c *gin.Context) {
	draft, err := h.drafts.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, draft)
}

func (h *DraftHandler) Update(c *gin.Context) {
	var patch service.DraftPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		response.Error(c, http.StatusBadRequest, errcode.ErrInvalid, "invalid request")
		return
	}
	draft, err := h.drafts.Update(c.Request.Context(), middleware.Actor(c), c.Param("id"), patch, provenance(c))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, draft)
}

func (h *DraftHandler) Delete(c *gin.Context) {
	err := h.drafts.Delete(c.Request.Context(), middleware.Actor(c), c.Param("id"), provenance(c))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, nil)
}
