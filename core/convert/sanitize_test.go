package convert

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain title untouched", "Never Gonna Give You Up", "Never Gonna Give You Up"},
		{"path separators stripped", "AC/DC - Back\\In Black", "ACDC - BackIn Black"},
		{"hostile punctuation stripped", `What? <Is> "This": Thing|*`, "What Is This Thing"},
		{"control characters separate words", "tab\there\nnewline", "tab here newline"},
		{"control characters collapse with spaces", "a\t \r\n b", "a b"},
		{"whitespace collapsed", "too    many   spaces", "too many spaces"},
		{"trailing dots trimmed", "ends with dots...", "ends with dots"},
		{"everything hostile", `\/:*?"<>|`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeName(tt.input))
		})
	}
}

func TestAttachmentFilename(t *testing.T) {
	name := AttachmentFilename("My Song", 320, "dQw4w9WgXcQ")
	assert.Equal(t, "My Song (320kbps).mp3", name)

	// The requested bitrate always appears in the filename.
	for _, b := range SupportedBitrates {
		assert.Contains(t, AttachmentFilename("x", b, "dQw4w9WgXcQ"), fmt.Sprintf("(%dkbps)", b))
	}

	// A title that sanitizes to nothing falls back to the identifier.
	name = AttachmentFilename(`\/:*?"<>|`, 192, "dQw4w9WgXcQ")
	assert.Equal(t, "audio-dQw4w9WgXcQ.mp3", name)
}

func TestAttachmentFilenameIsHeaderSafe(t *testing.T) {
	name := AttachmentFilename("bad\"quote/slash\x00nul", 256, "dQw4w9WgXcQ")
	assert.NotContains(t, name, `"`)
	assert.NotContains(t, name, "/")
	assert.NotContains(t, name, "\x00")
	assert.Contains(t, name, "256")
}

func TestSanitizeTag(t *testing.T) {
	assert.Equal(t, "Artist Name", SanitizeTag("  Artist Name\x00\x1f "))
	// Tags keep characters that filenames cannot.
	assert.Equal(t, "AC/DC: Live?", SanitizeTag("AC/DC: Live?"))
}
