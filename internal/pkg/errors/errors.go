package errors

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalid      = errors.New("invalid")
	ErrConflict     = errors.New("conflict")
	ErrInternal     = errors.New("internal")

	ErrUnsupportedDocumentType = errors.New("unsupported document type")
	ErrAttachmentNotFound      = errors.New("attachment not found")
	ErrAttachmentBlobMissing   = errors.New("attachment file missing")
	ErrVersionMismatch         = errors.New("version does not belong to attachment")
	ErrVersionBlobMissing      = errors.New("version file missing")
	ErrContentFetchFailed      = errors.New("content fetch failed")
	ErrUnknownKey              = errors.New("unknown document key")
)

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrAttachmentNotFound)
}
