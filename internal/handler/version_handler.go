package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/pharmatrust/docvault/internal/pkg/errcode"
	"github.com/pharmatrust/docvault/internal/pkg/response"
	"github.com/pharmatrust/docvault/internal/service"
)

type VersionHandler struct {
	documents *service.DocumentService
}

func NewVersionHandler(documents *service.DocumentService) *VersionHandler {
	return &VersionHandler{documents: documents}
}

func (h *VersionHandler) List(c *gin.Context) {
	versions, err := h.documents.ListVersions(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, versions)
}

func (h *VersionHandler) Get(c *gin.Context) {
	versionNumber, err := strconv.Atoi(c.Param("version"))
	if err != nil || versionNumber <= 0 {
		response.Error(c, http.StatusBadRequest, errcode.ErrInvalid, "invalid version")
		return
	}
	version, err := h.documents.GetVersion(c.Request.Context(), c.Param("id"), versionNumber)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, version)
}

func (h *VersionHandler) GetOfficial(c *gin.Context) {
	version, err := h.documents.GetOfficialVersion(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, version)
}
