package model

// Attachment is the live file object whose content and version history the
// collaboration subsystem manages. FileKey names the current blob in the
// store; Mtime is unix milliseconds and is bumped on every successful save or
// restore, which in turn rotates the document key handed to the editor.
type Attachment struct {
	ID               int64  `json:"id"`
	CardID           int64  `json:"card_id"`
	ProjectID        int64  `json:"project_id"`
	FileKey          string `json:"-"`
	OriginalFilename string `json:"original_filename"`
	FileType         string `json:"file_type"`
	FileSize         int64  `json:"file_size"`
	Content          string `json:"-"`
	Mtime            int64  `json:"mtime"`
}
