package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/teamboardhq/teamboard/internal/middleware"
	"github.com/teamboardhq/teamboard/internal/pkg/errcode"
	appErr "github.com/teamboardhq/teamboard/internal/pkg/errors"
	"github.com/teamboardhq/teamboard/internal/pkg/response"
)

func getUserID(c *gin.Context) int64 {
	value, _ := c.Get(middleware.ContextUserIDKey)
	userID, _ := value.(int64)
	return userID
}

func paramID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, errcode.ErrInvalid, "invalid "+name)
		return 0, false
	}
	return id, true
}

func handleError(c *gin.Context, err error) {
	switch {
	case err == nil:
		return
	case errors.Is(err, appErr.ErrUnauthorized):
		response.Error(c, errcode.ErrUnauthorized, "unauthorized")
	case errors.Is(err, appErr.ErrForbidden):
		response.Error(c, errcode.ErrForbidden, "forbidden")
	case errors.Is(err, appErr.ErrAttachmentNotFound):
		response.Error(c, errcode.ErrNotFound, "attachment not found")
	case errors.Is(err, appErr.ErrNotFound):
		response.Error(c, errcode.ErrNotFound, "not found")
	case errors.Is(err, appErr.ErrUnsupportedDocumentType):
		response.Error(c, errcode.ErrUnsupportedDocType, "file type is not editable")
	case errors.Is(err, appErr.ErrVersionMismatch):
		response.Error(c, errcode.ErrVersionMismatch, "version does not belong to attachment")
	case errors.Is(err, appErr.ErrVersionBlobMissing):
		response.Error(c, errcode.ErrVersionFileMissing, "version file missing")
	case errors.Is(err, appErr.ErrAttachmentBlobMissing):
		response.Error(c, errcode.ErrVersionFileMissing, "attachment file missing")
	case errors.Is(err, appErr.ErrInvalid):
		response.Error(c, errcode.ErrInvalid, "invalid request")
	default:
		response.Error(c, errcode.ErrInternal, "internal error")
	}
}
