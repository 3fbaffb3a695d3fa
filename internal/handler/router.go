package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pharmatrust/docvault/internal/middleware"
	"github.com/pharmatrust/docvault/internal/service"
)

type RouterDeps struct {
	Auth      *AuthHandler
	Users     *UserHandler
	Documents *DocumentHandler
	Versions  *VersionHandler
	Drafts    *DraftHandler
	Merges    *MergeHandler
	Audit     *AuditHandler
	Reports   *ReportHandler
	Files     *FileHandler
	AuthSvc   *service.AuthService
	JWTSecret []byte
}

func RegisterRoutes(api *gin.RouterGroup, deps RouterDeps) {
	api.POST("/auth/login", middleware.RateLimit(time.Second), deps.Auth.Login)

	authGroup := api.Group("")
	authGroup.Use(middleware.Auth(deps.JWTSecret, deps.AuthSvc))

	authGroup.GET("/auth/me", deps.Auth.Me)

	authGroup.POST("/users", deps.Users.Create)
	authGroup.GET("/users", deps.Users.List)
	authGroup.PUT("/users/:id/role", deps.Users.UpdateRole)
	authGroup.PUT("/users/:id/disable", deps.Users.Disable)

	authGroup.POST("/documents", deps.Documents.Create)
	authGroup.GET("/documents", deps.Documents.List)
	authGroup.GET("/documents/:id", deps.Documents.Get)
	authGroup.PUT("/documents/:id", deps.Documents.Update)
	authGroup.DELETE("/documents/:id", deps.Documents.Archive)

	authGroup.GET("/documents/:id/versions", deps.Versions.List)
	authGroup.GET("/documents/:id/versions/official", deps.Versions.GetOfficial)
	authGroup.GET("/documents/:id/versions/:version", deps.Versions.Get)

	authGroup.POST("/documents/:id/drafts", deps.Drafts.Create)
	authGroup.GET("/drafts", deps.Drafts.List)
	authGroup.GET("/drafts/:id", deps.Drafts.Get)
	authGroup.PUT("/drafts/:id", deps.Drafts.Update)
	authGroup.DELETE("/drafts/:id", deps.Drafts.Delete)

	authGroup.POST("/drafts/:id/merge-requests", deps.Merges.Submit)
	authGroup.GET("/merge-requests", deps.Merges.List)
	authGroup.GET("/merge-requests/:id", deps.Merges.Get)
	authGroup.POST("/merge-requests/:id/approve", deps.Merges.Approve)
	authGroup.POST("/merge-requests/:id/reject", deps.Merges.Reject)

	authGroup.GET("/audit-logs", deps.Audit.List)

	authGroup.POST("/documents/:id/reports", deps.Reports.Request)
	authGroup.GET("/reports/:id", deps.Reports.Status)

	authGroup.POST("/files/upload", deps.Files.Upload)
	authGroup.GET("/files/*key", deps.Files.Get)
}
