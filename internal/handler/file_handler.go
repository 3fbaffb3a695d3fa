package handler

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pharmatrust/docvault/internal/filestore"
	"github.com/pharmatrust/docvault/internal/model"
	"github.com/pharmatrust/docvault/internal/pkg/errcode"
	"github.com/pharmatrust/docvault/internal/pkg/response"
)

const maxUploadBytes = 64 << 20

type FileHandler struct {
	store filestore.Store
}

func NewFileHandler(store filestore.Store) *FileHandler {
	return &FileHandler{store: store}
}

// Upload stores a blob and answers with the content reference the workflow
// endpoints take: {path, size, sha256}. Bytes are never inspected.
func (h *FileHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, http.StatusBadRequest, errcode.ErrInvalidFile, "file required")
		return
	}
	if fileHeader.Size <= 0 || fileHeader.Size > maxUploadBytes {
		response.Error(c, http.StatusBadRequest, errcode.ErrInvalidFile, "invalid file size")
		return
	}
	src, err := fileHeader.Open()
	if err != nil {
		response.Error(c, http.StatusInternalServerError, errcode.ErrUploadFailed, "open upload failed")
		return
	}
	defer src.Close()
	data, err := io.ReadAll(io.LimitReader(src, maxUploadBytes+1))
	if err != nil || int64(len(data)) != fileHeader.Size {
		response.Error(c, http.StatusBadRequest, errcode.ErrUploadFailed, "read upload failed")
		return
	}
	sum := sha256.Sum256(data)
	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	key := "uploads/" + hex.EncodeToString(sum[:]) + ext
	if err := h.store.Save(c.Request.Context(), key, filestore.NewBytesReader(data), int64(len(data))); err != nil {
		response.Error(c, http.StatusInternalServerError, errcode.ErrUploadFailed, "store upload failed")
		return
	}
	response.Success(c, model.ContentRef{
		Path:   key,
		Size:   int64(len(data)),
		Sha256: hex.EncodeToString(sum[:]),
	})
}

func (h *FileHandler) Get(c *gin.Context) {
	key := strings.TrimPrefix(c.Param("key"), "/")
	reader, err := h.store.Open(c.Request.Context(), key)
	if err != nil {
		response.Error(c, http.StatusNotFound, errcode.ErrNotFound, "file not found")
		return
	}
	defer reader.Close()
	c.Header("Content-Disposition", "attachment; filename=\""+filepath.Base(key)+"\"")
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, reader)
}
