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

type DocumentHandler struct {
	documents *service.DocumentService
}

func NewDocumentHandler(documents *service.DocumentService) *DocumentHandler {
	return &DocumentHandler{documents: documents}
}

type documentCreateRequest struct {
	Title          string           `json:"title"`
	Description    string           `json:"description"`
	Classification string           `json:"classification"`
	Content        model.ContentRef `json:"content"`
}

func (h *DocumentHandler) Create(c *gin.Context) {
	var req documentCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, errcode.ErrInvalid, "invalid request")
		return
	}
	if req.Title == "" {
		response.Error(c, http.StatusBadRequest, errcode.ErrInvalid, "title required")
		return
	}
	doc, err := h.documents.Create(c.Request.Context(), middleware.Actor(c), service.DocumentCreateInput{
		Title:          req.Title,
		Description:    req.Description,
		Classification: req.Classification,
		Content:        req.Content,
	}, provenance(c))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, doc)
}

func (h *DocumentHandler) List(c *gin.Context) {
	docs, err := h.documents.List(c.Request.Context(), repo.DocumentFilter{
		OwnerID:        c.Query("owner_id"),
		Classification: c.Query("classification"),
		Status:         c.Query("status"),
		Limit:          queryUint(c, "limit"),
		Offset:         queryUint(c, "offset"),
	})
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, docs)
}

func (h *DocumentHandler) Get(c *gin.Context) {
	doc, err := h.documents.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, doc)
}

func (h *DocumentHandler) Update(c *gin.Context) {
	var patch service.DocumentPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		response.Error(c, http.StatusBadRequest, errcode.ErrInvalid, "invalid request")
		return
	}
	err := h.documents.UpdateMeta(c.Request.Context(), middleware.Actor(c), c.Param("id"), patch, provenance(c))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, nil)
}

func (h *DocumentHandler) Archive(c *gin.Context) {
	err := h.documents.Archive(c.Request.Context(), middleware.Actor(c), c.Param("id"), provenance(c))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, nil)
}
