package convert

import (
	"errors"
	"net/url"
	"regexp"
	"strconv"
)

// ErrInvalidIdentifier is returned when the video id is missing or does not
// match the source identifier syntax. It is the only validation failure the
// convert endpoint reports; bitrate and trim inputs degrade silently instead.
var ErrInvalidIdentifier = errors.New("invalid or missing video id")

// DefaultBitrate is substituted whenever the requested bitrate is absent or
// not one of the supported values.
const DefaultBitrate = 192

// SupportedBitrates are the accepted constant target bitrates in kbps.
var SupportedBitrates = []int{128, 192, 256, 320}

var videoIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// Request is a validated conversion job descriptor. StartSec and EndSec are
// -1 when no trim bound was provided.
type Request struct {
	VideoID  string
	Bitrate  int
	StartSec int
	EndSec   int
}

// HasTrim reports whether the encoder should seek before reading input.
func (r Request) HasTrim() bool {
	return r.StartSec >= 0
}

// ParseRequest validates raw convert query parameters.
// Policy: the identifier is strict (format check only, no network call);
// bitrate falls back to DefaultBitrate; a malformed start/end is treated as
// absent; an end bound at or before start is dropped.
func ParseRequest(query url.Values) (Request, error) {
	id := query.Get("id")
	if !videoIDPattern.MatchString(id) {
		return Request{}, ErrInvalidIdentifier
	}

	bitrate := DefaultBitrate
	if v, err := strconv.Atoi(query.Get("bitrate")); err == nil {
		for _, b := range SupportedBitrates {
			if v == b {
				bitrate = v
				break
			}
		}
	}

	req := Request{
		VideoID:  id,
		Bitrate:  bitrate,
		StartSec: -1,
		EndSec:   -1,
	}

	start, startOK := ParseTimeWindow(query.Get("start"))
	end, endOK := ParseTimeWindow(query.Get("end"))
	if startOK {
		req.StartSec = start
	}
	// An end bound is only meaningful with a start bound below it.
	if startOK && endOK && end > start {
		req.EndSec = end
	}
	return req, nil
}
