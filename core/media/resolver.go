package media

import (
	"context"
	"errors"
	"fmt"
	"io"

	"TubeFM/logger"

	"github.com/kkdai/youtube/v2"
)

// ErrSourceUnavailable marks a lookup or stream-open failure at the source
// catalog. It is fatal to the conversion request that hit it.
var ErrSourceUnavailable = errors.New("source unavailable")

// Metadata is the descriptive part of a resolved media item.
type Metadata struct {
	Title    string
	Author   string
	CoverURL string // empty when the source has no usable cover image
}

// Resolver turns a validated media identifier into a live audio byte stream
// plus its metadata. The stream is single-use and unseekable; the caller owns
// it and must close it on every exit path.
type Resolver interface {
	Resolve(ctx context.Context, videoID string) (*Metadata, io.ReadCloser, error)
}

// YouTubeResolver resolves identifiers against YouTube and opens the
// highest-bitrate audio-only representation.
type YouTubeResolver struct {
	client    youtube.Client
	watermark int // prefetch buffer size in bytes
}

// NewYouTubeResolver creates a resolver whose streams prefetch up to
// watermarkBytes ahead of the consumer, so a slow encoder does not stall the
// producer side.
func NewYouTubeResolver(watermarkBytes int) *YouTubeResolver {
	return &YouTubeResolver{watermark: watermarkBytes}
}

// Resolve looks up the video and opens its audio stream.
func (r *YouTubeResolver) Resolve(ctx context.Context, videoID string) (*Metadata, io.ReadCloser, error) {
	video, err := r.client.GetVideoContext(ctx, videoID)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: lookup %s: %v", ErrSourceUnavailable, videoID, err)
	}

	format := pickAudioFormat(video)
	if format == nil {
		return nil, nil, fmt.Errorf("%w: no audio format for %s", ErrSourceUnavailable, videoID)
	}

	stream, size, err := r.client.GetStreamContext(ctx, video, format)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: open stream %s: %v", ErrSourceUnavailable, videoID, err)
	}

	logger.Debug("source stream opened",
		logger.String("videoId", videoID),
		logger.Int("bitrate", format.Bitrate),
		logger.Int64("size", size))

	meta := &Metadata{
		Title:    video.Title,
		Author:   video.Author,
		CoverURL: coverURL(video),
	}
	return meta, newPrefetchReader(stream, r.watermark), nil
}

// pickAudioFormat selects the highest-bitrate audio-only format, falling back
// to the highest-bitrate muxed format when the item has no audio-only ones.
func pickAudioFormat(video *youtube.Video) *youtube.Format {
	formats := video.Formats.Type("audio")
	if len(formats) == 0 {
		formats = video.Formats
	}

	var best *youtube.Format
	for i := range formats {
		if best == nil || formats[i].Bitrate > best.Bitrate {
			best = &formats[i]
		}
	}
	return best
}

// coverURL picks the largest thumbnail; the source orders them ascending.
func coverURL(video *youtube.Video) string {
	if len(video.Thumbnails) == 0 {
		return ""
	}
	return video.Thumbnails[len(video.Thumbnails)-1].URL
}
