package docserver

import (
	"fmt"
	"strconv"
	"strings"

	appErr "github.com/teamboardhq/teamboard/internal/pkg/errors"
)

// The document key identifies a document revision inside the editor's cache.
// Format: "<attachmentID>_<mtimeMillis>". Millisecond precision guarantees two
// saves within the same second still rotate the key.

func DeriveKey(attachmentID, mtimeMillis int64) string {
	return fmt.Sprintf("%d_%d", attachmentID, mtimeMillis)
}

// ParseKey extracts the attachment id and mtime from a document key. Malformed
// keys are reported as ErrUnknownKey, never a panic; the callback handler acks
// those without persisting.
func ParseKey(key string) (attachmentID int64, mtimeMillis int64, err error) {
	idPart, mtimePart, ok := strings.Cut(key, "_")
	if !ok {
		return 0, 0, appErr.ErrUnknownKey
	}
	attachmentID, err = strconv.ParseInt(idPart, 10, 64)
	if err != nil || attachmentID <= 0 {
		return 0, 0, appErr.ErrUnknownKey
	}
	mtimeMillis, err = strconv.ParseInt(mtimePart, 10, 64)
	if err != nil || mtimeMillis < 0 {
		return 0, 0, appErr.ErrUnknownKey
	}
	return attachmentID, mtimeMillis, nil
}
