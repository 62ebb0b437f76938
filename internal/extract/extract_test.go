package extract_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/teamboardhq/teamboard/internal/extract"
)

func TestText(t *testing.T) {
	cases := []struct {
		name     string
		filename string
		input    string
		want     string
	}{
		{"plain text", "notes.txt", "hello world", "hello world"},
		{"markdown", "README.md", "# title", "# title"},
		{"uppercase extension", "DATA.CSV", "a,b,c", "a,b,c"},
		{"office binary skipped", "report.docx", "PK\x03\x04...", ""},
		{"no extension skipped", "Makefile", "all:", ""},
		{"invalid utf8 skipped", "junk.txt", "ok\xff\xfe", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := extract.Text(tc.filename, strings.NewReader(tc.input), 0)
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestTextTruncatesAtMaxChars(t *testing.T) {
	got, err := extract.Text("big.log", strings.NewReader(strings.Repeat("ab", 100)), 10)
	require.NoError(t, err)
	require.Equal(t, "ababababab", got)
}

func TestTextReadCutMidRune(t *testing.T) {
	// maxChars 4 reads at most 16 bytes, slicing 日 (3 bytes) in half; the
	// partial rune must be dropped instead of failing utf8 validation.
	input := strings.Repeat("a", 15) + "日" + strings.Repeat("b", 20)
	got, err := extract.Text("notes.txt", strings.NewReader(input), 4)
	require.NoError(t, err)
	require.Equal(t, "aaaa", got)
}
