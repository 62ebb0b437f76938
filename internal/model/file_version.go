package model

// FileVersion is an immutable snapshot of an attachment's content taken right
// before the current blob was overwritten. The live blob is never represented
// here, only its predecessors.
type FileVersion struct {
	ID            int64  `json:"id"`
	AttachmentID  int64  `json:"attachment_id"`
	VersionNumber int    `json:"version_number"`
	FileKey       string `json:"-"`
	FileSize      int64  `json:"file_size"`
	EditedBy      int64  `json:"edited_by"`
	ChangeSummary string `json:"change_summary"`
	Ctime         int64  `json:"ctime"`
}
