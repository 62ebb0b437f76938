package docserver

import (
	"testing"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/teamboardhq/teamboard/internal/config"
	"github.com/teamboardhq/teamboard/internal/model"
	appErr "github.com/teamboardhq/teamboard/internal/pkg/errors"
)

func testDocServerConfig() config.DocServerConfig {
	return config.DocServerConfig{
		URL:         "http://docserver:8080",
		InternalURL: "http://app:5000",
		Secret:      "shared-secret",
		Lang:        "en-US",
	}
}

func TestSessionBuilderBuild(t *testing.T) {
	builder := NewSessionBuilder(testDocServerConfig())
	attachment := &model.Attachment{
		ID:               12,
		OriginalFilename: "report.docx",
		Mtime:            1700000000123,
	}
	actor := &model.User{ID: 5, Username: "alice"}

	session, err := builder.Build(attachment, actor)
	require.NoError(t, err)
	require.Equal(t, "docx", session.Document.FileType)
	require.Equal(t, "word", session.DocumentType)
	require.Equal(t, "12_1700000000123", session.Document.Key)
	require.Equal(t, "report.docx", session.Document.Title)
	require.Equal(t, "http://app:5000/api/v1/attachments/12/download", session.Document.URL)
	require.Equal(t, "http://app:5000/api/v1/editor/callback", session.EditorConfig.CallbackURL)
	require.Equal(t, "5", session.EditorConfig.User.ID)
	require.Equal(t, "alice", session.EditorConfig.User.Name)
	require.True(t, session.Document.Permissions.Edit)
	require.True(t, session.Document.Permissions.Comment)
	require.True(t, session.EditorConfig.Customization.Forcesave)
	require.NotEmpty(t, session.Token)

	// The editor validates the signature with the shared secret.
	claims := jwtlib.MapClaims{}
	parsed, err := jwtlib.ParseWithClaims(session.Token, claims, func(token *jwtlib.Token) (interface{}, error) {
		return []byte("shared-secret"), nil
	})
	require.NoError(t, err)
	require.True(t, parsed.Valid)
	doc, ok := claims["document"].(map[string]interface{})
	require.True(t, ok)
	require.Equal(t, "12_1700000000123", doc["key"])
	_, hasToken := claims["token"]
	require.False(t, hasToken)
}

func TestSessionBuilderDocumentTypes(t *testing.T) {
	builder := NewSessionBuilder(testDocServerConfig())
	actor := &model.User{ID: 1, Username: "system"}
	cases := map[string]string{
		"a.docx": "word",
		"a.doc":  "word",
		"a.xlsx": "cell",
		"a.XLS":  "cell",
		"a.pptx": "slide",
		"a.ppt":  "slide",
	}
	for filename, want := range cases {
		session, err := builder.Build(&model.Attachment{ID: 1, OriginalFilename: filename, Mtime: 1}, actor)
		require.NoError(t, err, filename)
		require.Equal(t, want, session.DocumentType, filename)
	}
}

func TestSessionBuilderUnsupportedType(t *testing.T) {
	builder := NewSessionBuilder(testDocServerConfig())
	actor := &model.User{ID: 1, Username: "system"}
	for _, filename := range []string{"a.pdf", "a.png", "noext", "a.txt"} {
		_, err := builder.Build(&model.Attachment{ID: 1, OriginalFilename: filename, Mtime: 1}, actor)
		require.ErrorIs(t, err, appErr.ErrUnsupportedDocumentType, filename)
	}
}
