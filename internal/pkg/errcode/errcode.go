package errcode

const (
	ErrUnknown = 10000000 + iota
	ErrUnauthorized
	ErrForbidden
	ErrNotFound
	ErrInvalid
	ErrConflict
	ErrInternal
	ErrInvalidFile
	ErrUnsupportedDocType
	ErrVersionMismatch
	ErrVersionFileMissing
	ErrUploadFailed
)
