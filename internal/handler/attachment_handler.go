package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/teamboardhq/teamboard/internal/pkg/errcode"
	"github.com/teamboardhq/teamboard/internal/pkg/response"
	"github.com/teamboardhq/teamboard/internal/repo"
	"github.com/teamboardhq/teamboard/internal/service"
)

type AttachmentHandler struct {
	collab  *service.CollabService
	members *repo.MemberRepo
}

func NewAttachmentHandler(collab *service.CollabService, members *repo.MemberRepo) *AttachmentHandler {
	return &AttachmentHandler{collab: collab, members: members}
}

// Upload stores a new attachment on a card. The card→project resolution
// belongs to the surrounding board application; here the project id rides
// along in the form.
func (h *AttachmentHandler) Upload(c *gin.Context) {
	cardID, ok := paramID(c, "id")
	if !ok {
		return
	}
	projectID, err := strconv.ParseInt(c.PostForm("project_id"), 10, 64)
	if err != nil || projectID <= 0 {
		response.Error(c, errcode.ErrInvalid, "invalid project_id")
		return
	}
	member, err := h.members.IsMember(c.Request.Context(), projectID, getUserID(c))
	if err != nil {
		handleError(c, err)
		return
	}
	if !member {
		response.Error(c, errcode.ErrForbidden, "forbidden")
		return
	}
	file, err := c.FormFile("file")
	if err != nil {
		response.Error(c, errcode.ErrInvalidFile, "file is required")
		return
	}
	opened, err := file.Open()
	if err != nil {
		response.Error(c, errcode.ErrInvalidFile, "failed to open file")
		return
	}
	defer opened.Close()
	attachment, err := h.collab.CreateAttachment(c.Request.Context(), cardID, projectID, file.Filename, opened)
	if err != nil {
		response.Error(c, errcode.ErrUploadFailed, "failed to store file")
		return
	}
	response.Success(c, attachment)
}

func (h *AttachmentHandler) Delete(c *gin.Context) {
	attachmentID, ok := paramID(c, "id")
	if !ok {
		return
	}
	if _, err := h.collab.GetAuthorized(c.Request.Context(), attachmentID, getUserID(c)); err != nil {
		handleError(c, err)
		return
	}
	if err := h.collab.DeleteAttachment(c.Request.Context(), attachmentID); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"deleted": true})
}
