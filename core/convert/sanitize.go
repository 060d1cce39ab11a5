package convert

import (
	"fmt"
	"regexp"
	"strings"
)

// Characters that are hostile in filenames or Content-Disposition headers:
// control characters plus the usual path/shell offenders and double quotes.
var hostileChars = regexp.MustCompile("[\x00-\x1f\x7f<>:\"/\\\\|?*]")
var controlChars = regexp.MustCompile("[\x00-\x1f\x7f]")
var multipleSpaces = regexp.MustCompile(`\s+`)

// SanitizeName strips control and path-hostile characters and collapses
// whitespace. Control characters separate words, so they become spaces
// rather than vanish. The result may be empty; callers decide the fallback.
func SanitizeName(name string) string {
	name = controlChars.ReplaceAllString(name, " ")
	name = hostileChars.ReplaceAllString(name, "")
	name = multipleSpaces.ReplaceAllString(name, " ")
	name = strings.Trim(name, " .")
	return name
}

// SanitizeTag cleans a value destined for an ID3 metadata tag. Tags have no
// path restrictions but control characters still break the option plumbing.
func SanitizeTag(value string) string {
	value = controlChars.ReplaceAllString(value, "")
	return strings.TrimSpace(value)
}

// AttachmentFilename builds the download filename for a finished conversion:
// `<sanitized title> (<bitrate>kbps).mp3`, or `audio-<id>.mp3` when the title
// sanitizes to nothing.
func AttachmentFilename(title string, bitrate int, videoID string) string {
	safe := SanitizeName(title)
	if safe == "" {
		return fmt.Sprintf("audio-%s.mp3", videoID)
	}
	return fmt.Sprintf("%s (%dkbps).mp3", safe, bitrate)
}
