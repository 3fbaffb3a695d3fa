package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pharmatrust/docvault/internal/middleware"
	"github.com/pharmatrust/docvault/internal/pkg/errcode"
	"github.com/pharmatrust/docvault/internal/pkg/response"
	"github.com/pharmatrust/docvault/internal/service"
)

type ReportHandler struct {
	reports *service.ReportService
}

func NewReportHandler(reports *service.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

func (h *ReportHandler) Request(c *gin.Context) {
	docID := c.Param("id")
	if docID == "" {
		response.Error(c, http.StatusBadRequest, errcode.ErrInvalid, "document id required")
		return
	}
	job, err := h.reports.Request(c.Request.Context(), middleware.Actor(c), docID, provenance(c))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, job)
}

func (h *ReportHandler) Status(c *gin.Context) {
	job, err := h.reports.Status(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, job)
}
