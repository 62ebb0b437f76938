// Package extract pulls searchable text out of freshly saved attachment
// bytes. It is a best-effort post-save hook: failures are logged by the
// caller and never surfaced to the editor.
package extract

import (
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

const DefaultMaxChars = 50000

var textExtensions = map[string]struct{}{
	"txt":  {},
	"md":   {},
	"csv":  {},
	"json": {},
	"log":  {},
	"html": {},
	"xml":  {},
}

// Text reads up to maxChars of searchable content. Binary office formats are
// skipped with an empty result; indexing them needs a format parser this
// service does not carry.
func Text(filename string, r io.Reader, maxChars int) (string, error) {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	if _, ok := textExtensions[ext]; !ok {
		return "", nil
	}
	// maxChars*4 bounds the read; a rune is at most 4 bytes.
	limit := int64(maxChars) * 4
	data, err := io.ReadAll(io.LimitReader(r, limit))
	if err != nil {
		return "", err
	}
	// A read cut at the limit may end mid-rune; drop the partial tail so a
	// large valid file is not mistaken for binary.
	if int64(len(data)) == limit {
		for i := 0; i < utf8.UTFMax-1 && len(data) > 0; i++ {
			r, size := utf8.DecodeLastRune(data)
			if r != utf8.RuneError || size != 1 {
				break
			}
			data = data[:len(data)-1]
		}
	}
	if !utf8.Valid(data) {
		return "", nil
	}
	text := string(data)
	if utf8.RuneCountInString(text) > maxChars {
		runes := []rune(text)
		text = string(runes[:maxChars])
	}
	return text, nil
}
