package service

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"io"
	"path/filepath"
	"strings"

	"github.com/teamboardhq/teamboard/internal/model"
	"github.com/teamboardhq/teamboard/internal/pkg/timeutil"
)

// CreateAttachment stores the uploaded bytes and registers the attachment
// record. No version is recorded for the initial content; versions only ever
// capture superseded content.
func (s *CollabService) CreateAttachment(ctx context.Context, cardID, projectID int64, filename string, r io.Reader) (*model.Attachment, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	fileKey := buildFileKey(filename)
	if err := s.store.Save(ctx, fileKey, bytes.NewReader(data), int64(len(data))); err != nil {
		return nil, err
	}
	attachment := &model.Attachment{
		CardID:           cardID,
		ProjectID:        projectID,
		FileKey:          fileKey,
		OriginalFilename: filename,
		FileType:         strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), "."),
		FileSize:         int64(len(data)),
		Mtime:            timeutil.NowMillis(),
	}
	if err := s.attachments.Create(ctx, attachment); err != nil {
		return nil, err
	}
	s.extractContent(ctx, attachment, data)
	return attachment, nil
}

func buildFileKey(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	buf := make([]byte, 8)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf) + ext
}
