package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/pharmatrust/docvault/internal/middleware"
	"github.com/pharmatrust/docvault/internal/model"
	"github.com/pharmatrust/docvault/internal/pkg/errcode"
	appErr "github.com/pharmatrust/docvault/internal/pkg/errors"
	"github.com/pharmatrust/docvault/internal/pkg/response"
)

func provenance(c *gin.Context) model.Provenance {
	return model.Provenance{
		IP:        c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}
}

func handleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	actor := middleware.Actor(c)
	logutil.GetLogger(c.Request.Context()).Warn("request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.String("actor_id", actor.ID),
		zap.Error(err))
	switch {
	case appErr.IsNotFound(err):
		response.Error(c, http.StatusNotFound, errcode.ErrNotFound, "not found")
	case appErr.IsConflict(err):
		response.Error(c, http.StatusConflict, errcode.ErrConflict, "conflict")
	case appErr.IsForbidden(err):
		response.Error(c, http.StatusForbidden, errcode.ErrForbidden, "forbidden")
	case err == appErr.ErrUnauthorized:
		response.Error(c, http.StatusUnauthorized, errcode.ErrUnauthorized, "unauthorized")
	case err == appErr.ErrInvalid:
		response.Error(c, http.StatusBadRequest, errcode.ErrInvalid, "invalid request")
	case err == appErr.ErrTooMany:
		response.Error(c, http.StatusTooManyRequests, errcode.ErrTooMany, "too many requests")
	default:
		response.Error(c, http.StatusInternalServerError, errcode.ErrInternal, "internal error")
	}
}

func queryUint(c *gin.Context, name string) uint {
	value := c.Query(name)
	if value == "" {
		return 0
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed < 0 {
		return 0
	}
	return uint(parsed)
}
