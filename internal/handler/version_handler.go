package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/teamboardhq/teamboard/internal/pkg/response"
	"github.com/teamboardhq/teamboard/internal/service"
)

type VersionHandler struct {
	collab *service.CollabService
}

func NewVersionHandler(collab *service.CollabService) *VersionHandler {
	return &VersionHandler{collab: collab}
}

func (h *VersionHandler) List(c *gin.Context) {
	attachmentID, ok := paramID(c, "id")
	if !ok {
		return
	}
	if _, err := h.collab.GetAuthorized(c.Request.Context(), attachmentID, getUserID(c)); err != nil {
		handleError(c, err)
		return
	}
	versions, err := h.collab.ListVersions(c.Request.Context(), attachmentID)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"versions": versions})
}

type snapshotRequest struct {
	Summary string `json:"summary"`
}

func (h *VersionHandler) Snapshot(c *gin.Context) {
	attachmentID, ok := paramID(c, "id")
	if !ok {
		return
	}
	if _, err := h.collab.GetAuthorized(c.Request.Context(), attachmentID, getUserID(c)); err != nil {
		handleError(c, err)
		return
	}
	var req snapshotRequest
	_ = c.ShouldBindJSON(&req)
	version, err := h.collab.SnapshotNow(c.Request.Context(), attachmentID, getUserID(c), req.Summary)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, version)
}

func (h *VersionHandler) Restore(c *gin.Context) {
	attachmentID, ok := paramID(c, "id")
	if !ok {
		return
	}
	versionID, ok := paramID(c, "versionID")
	if !ok {
		return
	}
	if _, err := h.collab.GetAuthorized(c.Request.Context(), attachmentID, getUserID(c)); err != nil {
		handleError(c, err)
		return
	}
	result, err := h.collab.Restore(c.Request.Context(), attachmentID, versionID, getUserID(c))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, result)
}
