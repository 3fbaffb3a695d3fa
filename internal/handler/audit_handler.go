package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/pharmatrust/docvault/internal/middleware"
	"github.com/pharmatrust/docvault/internal/pkg/response"
	"github.com/pharmatrust/docvault/internal/repo"
	"github.com/pharmatrust/docvault/internal/service"
)

type AuditHandler struct {
	audit *service.AuditService
}

func NewAuditHandler(audit *service.AuditService) *AuditHandler {
	return &AuditHandler{audit: audit}
}

func (h *AuditHandler) List(c *gin.Context) {
	entries, err := h.audit.List(c.Request.Context(), middleware.Actor(c), repo.AuditFilter{
		ActorID:    c.Query("actor_id"),
		Action:     c.Query("action"),
		DocumentID: c.Query("document_id"),
		Limit:      queryUint(c, "limit"),
		Offset:     queryUint(c, "offset"),
	})
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, entries)
}
