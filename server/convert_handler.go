package server

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"TubeFM/cache"
	"TubeFM/config"
	"TubeFM/core/convert"
	"TubeFM/core/media"
	"TubeFM/logger"

	"github.com/google/uuid"
)

// maxCoverBytes bounds a cover art download; anything larger is not a
// thumbnail and gets dropped.
const maxCoverBytes = 10 << 20

// Transcoder starts one encoding process per job and exposes its output as a
// byte stream with an asynchronous completion signal.
type Transcoder interface {
	Start(ctx context.Context, spec convert.JobSpec, audio io.Reader) (*convert.Stream, error)
}

// ConvertHandler runs the per-request conversion pipeline:
// source stream -> encoder -> HTTP response. Each request gets an
// independent pipeline; nothing is shared across requests.
type ConvertHandler struct {
	resolver   media.Resolver
	transcoder Transcoder
	httpClient *http.Client
	cfg        *config.Config
}

// NewConvertHandler creates the convert endpoint handler.
func NewConvertHandler(resolver media.Resolver, transcoder Transcoder, cfg *config.Config) *ConvertHandler {
	return &ConvertHandler{
		resolver:   resolver,
		transcoder: transcoder,
		httpClient: &http.Client{},
		cfg:        cfg,
	}
}

// ServeHTTP handles GET /api/convert?id=&bitrate=&start=&end=.
//
// Failures before the first encoded byte produce a JSON error body. Once
// bytes are on the wire the headers cannot be retracted; a late failure
// aborts the connection so the client sees a truncated download rather than
// a silently complete one.
func (h *ConvertHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	req, err := convert.ParseRequest(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid or missing video id")
		return
	}

	ctx := r.Context()
	jobID := uuid.NewString()

	logger.Info("conversion requested",
		logger.String("jobId", jobID),
		logger.String("videoId", req.VideoID),
		logger.Int("bitrate", req.Bitrate),
		logger.Int("startSec", req.StartSec),
		logger.Int("endSec", req.EndSec),
		logger.Bool("trimmed", req.HasTrim()))

	meta, audio, err := h.resolver.Resolve(ctx, req.VideoID)
	if err != nil {
		logger.Error("source resolution failed",
			logger.String("jobId", jobID),
			logger.String("videoId", req.VideoID),
			logger.ErrorField(err))
		writeError(w, http.StatusServiceUnavailable, "Source unavailable")
		return
	}
	defer audio.Close()

	var cover []byte
	if meta.CoverURL != "" {
		cover = h.fetchCover(ctx, req.VideoID, meta.CoverURL)
	}

	artist := meta.Author
	if artist == "" {
		artist = "Unknown Artist"
	}

	spec := convert.JobSpec{
		ID:     jobID,
		Req:    req,
		Title:  meta.Title,
		Artist: artist,
		Cover:  cover,
	}

	stream, err := h.transcoder.Start(ctx, spec, audio)
	if err != nil {
		logger.Error("encoder start failed",
			logger.String("jobId", jobID),
			logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Transcoding failed")
		return
	}
	defer stream.Close()

	// Wait for the first encoded bytes before committing to a 200. An
	// encoder that dies without output still gets a clean JSON error.
	first := make([]byte, 32*1024)
	n, readErr := stream.Output.Read(first)
	if n == 0 && readErr != nil {
		audio.Close()
		encErr := <-stream.Done
		logger.Error("encoder produced no output",
			logger.String("jobId", jobID),
			logger.ErrorField(encErr))
		writeError(w, http.StatusInternalServerError, "Transcoding failed")
		return
	}

	// Headers go out exactly once, before any body byte. Length is unknown:
	// trimming and encoding change the size, so the response streams.
	filename := convert.AttachmentFilename(meta.Title, req.Bitrate, req.VideoID)
	w.Header().Set("Content-Type", "audio/mpeg")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))

	out := newFlushWriter(w)
	written, copyErr := out.Write(first[:n])
	if copyErr == nil && readErr == nil {
		var rest int64
		rest, copyErr = io.Copy(out, stream.Output)
		written += int(rest)
	}

	// Unblock the encoder's stdin feed before waiting on its exit status.
	audio.Close()
	encErr := <-stream.Done

	switch {
	case copyErr != nil:
		// Client went away or the socket broke; context cancellation has
		// already killed the encoder. Nothing more can be sent.
		logger.Warn("client connection lost mid-stream",
			logger.String("jobId", jobID),
			logger.Int("bytesWritten", written),
			logger.ErrorField(copyErr))
	case encErr != nil:
		logger.Error("encoder failed mid-stream",
			logger.String("jobId", jobID),
			logger.Int("bytesWritten", written),
			logger.ErrorField(encErr))
		// Headers are already on the wire. Abort the connection; the client
		// must see a truncated download, not a clean end.
		panic(http.ErrAbortHandler)
	default:
		logger.Info("conversion complete",
			logger.String("jobId", jobID),
			logger.String("videoId", req.VideoID),
			logger.Int("bytesWritten", written))
	}
}

// fetchCover attempts one bounded fetch of the cover image, consulting the
// shared cache first. Any failure degrades to audio-only output; it never
// fails or retries the conversion.
func (h *ConvertHandler) fetchCover(ctx context.Context, videoID, coverURL string) []byte {
	if data, ok := cache.GetCover(ctx, videoID); ok {
		return data
	}

	fetchCtx, cancel := context.WithTimeout(ctx, h.cfg.CoverFetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(fetchCtx, http.MethodGet, coverURL, nil)
	if err != nil {
		return nil
	}

	resp, err := h.httpClient.Do(req)
	if err != nil {
		logger.Warn("cover art fetch failed",
			logger.String("videoId", videoID),
			logger.ErrorField(err))
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logger.Warn("cover art fetch rejected",
			logger.String("videoId", videoID),
			logger.Int("status", resp.StatusCode))
		return nil
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxCoverBytes))
	if err != nil {
		logger.Warn("cover art download interrupted",
			logger.String("videoId", videoID),
			logger.ErrorField(err))
		return nil
	}

	cache.SetCover(context.WithoutCancel(ctx), videoID, data, h.cfg.CoverCacheTTL)
	return data
}

// flushWriter pushes each chunk to the client as soon as the encoder
// produces it instead of letting the response buffer batch them.
type flushWriter struct {
	w http.ResponseWriter
	f http.Flusher
}

func newFlushWriter(w http.ResponseWriter) *flushWriter {
	f, _ := w.(http.Flusher)
	return &flushWriter{w: w, f: f}
}

func (fw *flushWriter) Write(p []byte) (int, error) {
	n, err := fw.w.Write(p)
	if err == nil && fw.f != nil {
		fw.f.Flush()
	}
	return n, err
}
