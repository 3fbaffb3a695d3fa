package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pharmatrust/docvault/internal/middleware"
	"github.com/pharmatrust/docvault/internal/pkg/errcode"
	"github.com/pharmatrust/docvault/internal/pkg/response"
	"github.com/pharmatrust/docvault/internal/repo"
	"github.com/pharmatrust/docvault/internal/service"
)

type MergeHandler struct {
	merges *service.MergeService
}

func NewMergeHandler(merges *service.MergeService) *MergeHandler {
	return &MergeHandler{merges: merges}
}

type submitRequest struct {
	ApproverID string `json:"approver_id"`
	Summary    string `json:"summary"`
}

func (h *MergeHandler) Submit(c *gin.Context) {
	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, errcode.ErrInvalid, "invalid request")
		return
	}
	request, err := h.merges.Submit(c.Request.Context(), middleware.Actor(c), service.SubmitInput{
		DraftID:    c.Param("id"),
		ApproverID: req.ApproverID,
		Summary:    req.Summary,
	}, provenance(c))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, request)
}

func (h *MergeHandler) List(c *gin.Context) {
	items, err := h.merges.List(c.Request.Context(), repo.MergeRequestFilter{
		DocumentID: c.Query("document_id"),
		DraftID:    c.Query("draft_id"),
		ApproverID: c.Query("approver_id"),
		CreatedBy:  c.Query("created_by"),
		Status:     c.Query("status"),
		Limit:      queryUint(c, "limit"),
		Offset:     queryUint(c, "offset"),
	})
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, items)
}

func (h *MergeHandler) Get(c *gin.Context) {
	request, err := h.merges.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, request)
}

func (h *MergeHandler) Approve(c *gin.Context) {
	version, err := h.merges.Approve(c.Request.Context(), middleware.Actor(c), c.Param("id"), provenance(c))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, version)
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

func (h *MergeHandler) Reject(c *gin.Context) {
	var req rejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, errcode.ErrInvalid, "invalid request")
		return
	}
	if req.Reason == "" {
		response.Error(c, http.StatusBadRequest, errcode.ErrInvalid, "reason required")
		return
	}
	err := h.merges.Reject(c.Request.Context(), middleware.Actor(c), c.Param("id"), req.Reason, provenance(c))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, nil)
}
