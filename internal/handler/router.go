package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/teamboardhq/teamboard/internal/middleware"
)

type RouterDeps struct {
	Collab      *CollabHandler
	Versions    *VersionHandler
	Attachments *AttachmentHandler
	JWTSecret   []byte
}

func RegisterRoutes(api *gin.RouterGroup, deps RouterDeps) {
	// The editor service calls these two directly; no user token involved.
	api.POST("/editor/callback", deps.Collab.Callback)
	api.GET("/attachments/:id/download", deps.Collab.Download)

	authGroup := api.Group("")
	authGroup.Use(middleware.JWTAuth(deps.JWTSecret))
	authGroup.GET("/attachments/:id/editor-config", deps.Collab.EditorConfig)
	authGroup.GET("/attachments/:id/versions", deps.Versions.List)
	authGroup.POST("/attachments/:id/versions", deps.Versions.Snapshot)
	authGroup.POST("/attachments/:id/restore/:versionID", deps.Versions.Restore)
	authGroup.POST("/cards/:id/attachments", deps.Attachments.Upload)
	authGroup.DELETE("/attachments/:id", deps.Attachments.Delete)
}
