package handler

import (
	"io"
	"mime"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/teamboardhq/teamboard/internal/config"
	"github.com/teamboardhq/teamboard/internal/docserver"
	"github.com/teamboardhq/teamboard/internal/filestore"
	appErr "github.com/teamboardhq/teamboard/internal/pkg/errors"
	"github.com/teamboardhq/teamboard/internal/pkg/response"
	"github.com/teamboardhq/teamboard/internal/repo"
	"github.com/teamboardhq/teamboard/internal/service"
)

type CollabHandler struct {
	collab   *service.CollabService
	sessions *docserver.SessionBuilder
	users    *repo.UserRepo
	store    filestore.Store
	cfg      config.DocServerConfig
}

func NewCollabHandler(collab *service.CollabService, sessions *docserver.SessionBuilder, users *repo.UserRepo, store filestore.Store, cfg config.DocServerConfig) *CollabHandler {
	return &CollabHandler{collab: collab, sessions: sessions, users: users, store: store, cfg: cfg}
}

type editorConfigResponse struct {
	Config    *docserver.SessionConfig `json:"config"`
	EditorURL string                   `json:"editor_url"`
}

// EditorConfig hands the UI everything it needs to open the editor against
// the attachment's current content.
func (h *CollabHandler) EditorConfig(c *gin.Context) {
	attachmentID, ok := paramID(c, "id")
	if !ok {
		return
	}
	attachment, err := h.collab.GetAuthorized(c.Request.Context(), attachmentID, getUserID(c))
	if err != nil {
		handleError(c, err)
		return
	}
	actor, err := h.users.GetByID(c.Request.Context(), getUserID(c))
	if err != nil {
		handleError(c, err)
		return
	}
	session, err := h.sessions.Build(attachment, actor)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, editorConfigResponse{Config: session, EditorURL: h.cfg.URL})
}

// Callback receives the editor's lifecycle notifications. The contract is
// strictly body-level: always HTTP 200 with {"error":0} or {"error":1}; the
// editor understands nothing else.
func (h *CollabHandler) Callback(c *gin.Context) {
	var cb service.CallbackRequest
	if err := c.ShouldBindJSON(&cb); err != nil {
		c.JSON(http.StatusOK, gin.H{"error": 1})
		return
	}
	if err := h.collab.HandleCallback(c.Request.Context(), &cb); err != nil {
		logutil.GetLogger(c.Request.Context()).Error("save callback failed",
			zap.String("key", cb.Key), zap.Int("status", cb.Status), zap.Error(err))
		c.JSON(http.StatusOK, gin.H{"error": 1})
		return
	}
	c.JSON(http.StatusOK, gin.H{"error": 0})
}

// Download streams the current bytes of an attachment. This is the fetch URL
// embedded in the session config, so it carries no user auth; the editor
// service calls it directly.
func (h *CollabHandler) Download(c *gin.Context) {
	attachmentID, ok := paramID(c, "id")
	if !ok {
		return
	}
	attachment, err := h.collab.GetAttachment(c.Request.Context(), attachmentID)
	if err != nil {
		if appErr.IsNotFound(err) {
			c.Status(http.StatusNotFound)
		} else {
			c.Status(http.StatusInternalServerError)
		}
		return
	}
	file, err := h.store.Open(c.Request.Context(), attachment.FileKey)
	if err != nil {
		c.Status(http.StatusNotFound)
		return
	}
	defer file.Close()
	contentType := mime.TypeByExtension(filepath.Ext(attachment.OriginalFilename))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Content-Type", contentType)
	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": attachment.OriginalFilename}))
	_, _ = io.Copy(c.Writer, file)
}
