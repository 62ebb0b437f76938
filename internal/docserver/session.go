package docserver

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	jwtlib "github.com/golang-jwt/jwt/v5"

	"github.com/teamboardhq/teamboard/internal/config"
	"github.com/teamboardhq/teamboard/internal/model"
	appErr "github.com/teamboardhq/teamboard/internal/pkg/errors"
)

type Permissions struct {
	Edit     bool `json:"edit"`
	Download bool `json:"download"`
	Print    bool `json:"print"`
	Review   bool `json:"review"`
	Comment  bool `json:"comment"`
}

type Document struct {
	FileType    string      `json:"fileType"`
	Key         string      `json:"key"`
	Title       string      `json:"title"`
	URL         string      `json:"url"`
	Permissions Permissions `json:"permissions"`
}

type EditorUser struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Customization struct {
	Autosave      bool `json:"autosave"`
	Forcesave     bool `json:"forcesave"`
	Chat          bool `json:"chat"`
	Comments      bool `json:"comments"`
	CompactHeader bool `json:"compactHeader"`
	Feedback      bool `json:"feedback"`
	Help          bool `json:"help"`
}

type EditorConfig struct {
	Mode          string        `json:"mode"`
	Lang          string        `json:"lang"`
	CallbackURL   string        `json:"callbackUrl"`
	User          EditorUser    `json:"user"`
	Customization Customization `json:"customization"`
}

// SessionConfig is the signed descriptor the external editor needs to open a
// document. Token is an HS256 signature over the rest of the descriptor; the
// editor recomputes it with the shared secret.
type SessionConfig struct {
	Document     Document     `json:"document"`
	DocumentType string       `json:"documentType"`
	EditorConfig EditorConfig `json:"editorConfig"`
	Token        string       `json:"token"`
}

var documentTypes = map[string]string{
	"docx": "word",
	"doc":  "word",
	"xlsx": "cell",
	"xls":  "cell",
	"pptx": "slide",
	"ppt":  "slide",
}

// DocumentTypeFor maps a filename to the editor's document category, or ""
// when the type is not editable.
func DocumentTypeFor(filename string) (fileType, documentType string) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	return ext, documentTypes[ext]
}

type SessionBuilder struct {
	cfg config.DocServerConfig
}

func NewSessionBuilder(cfg config.DocServerConfig) *SessionBuilder {
	return &SessionBuilder{cfg: cfg}
}

// Build derives the document key from the attachment's current mtime, fills
// the descriptor and signs it. Pure: no side effects, safe to call
// concurrently.
func (b *SessionBuilder) Build(attachment *model.Attachment, actor *model.User) (*SessionConfig, error) {
	fileType, documentType := DocumentTypeFor(attachment.OriginalFilename)
	if documentType == "" {
		return nil, appErr.ErrUnsupportedDocumentType
	}
	base := strings.TrimSuffix(b.cfg.InternalURL, "/")
	session := &SessionConfig{
		Document: Document{
			FileType: fileType,
			Key:      DeriveKey(attachment.ID, attachment.Mtime),
			Title:    attachment.OriginalFilename,
			URL:      fmt.Sprintf("%s/api/v1/attachments/%d/download", base, attachment.ID),
			Permissions: Permissions{
				Edit:     true,
				Download: true,
				Print:    true,
				Review:   true,
				Comment:  true,
			},
		},
		DocumentType: documentType,
		EditorConfig: EditorConfig{
			Mode:        "edit",
			Lang:        b.cfg.Lang,
			CallbackURL: base + "/api/v1/editor/callback",
			User: EditorUser{
				ID:   strconv.FormatInt(actor.ID, 10),
				Name: actor.Username,
			},
			Customization: Customization{
				Autosave:  true,
				Forcesave: true,
				Chat:      true,
				Comments:  true,
			},
		},
	}
	token, err := signPayload(session, []byte(b.cfg.Secret))
	if err != nil {
		return nil, fmt.Errorf("sign session config: %w", err)
	}
	session.Token = token
	return session, nil
}

// signPayload signs the JSON form of payload with HS256. The token field is
// zero-valued at this point and is excluded from the claims, keeping the
// canonicalization stable for the editor's own validation.
func signPayload(payload interface{}, secret []byte) (string, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	claims := jwtlib.MapClaims{}
	if err := json.Unmarshal(raw, &claims); err != nil {
		return "", err
	}
	delete(claims, "token")
	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims)
	return token.SignedString(secret)
}
