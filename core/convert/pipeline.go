package convert

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"TubeFM/logger"
)

// ErrEncoder marks a failure of the external encoding process, whether at
// start or mid-stream.
var ErrEncoder = errors.New("encoder failed")

// provenanceComment is embedded in every produced file.
const provenanceComment = "Downloaded via TubeFM"

// JobSpec describes one encoding invocation: the validated request plus the
// metadata and optional cover art resolved for it.
type JobSpec struct {
	ID     string // correlation id for logs
	Req    Request
	Title  string
	Artist string
	Cover  []byte // nil when no cover art is available
}

// Stream is a running encoder's output. Output yields encoded bytes as the
// process emits them and hits EOF when the process exits. Done receives
// exactly one value after process exit: nil on clean completion, an
// ErrEncoder-wrapped error otherwise.
type Stream struct {
	Output io.ReadCloser
	Done   <-chan error

	cancel context.CancelFunc
}

// Close terminates the encoder process if it is still running and releases
// the output pipe. It is safe on every exit path, including after a clean
// completion.
func (s *Stream) Close() {
	if s.cancel != nil {
		s.cancel()
	}
	if s.Output != nil {
		s.Output.Close()
	}
}

// Pipeline builds and starts ffmpeg processes for conversion jobs.
type Pipeline struct {
	ffmpegPath string
}

// NewPipeline creates a Pipeline using the given ffmpeg binary.
func NewPipeline(ffmpegPath string) *Pipeline {
	return &Pipeline{ffmpegPath: ffmpegPath}
}

// buildArgs composes the ffmpeg invocation for a job.
// The audio stream arrives on stdin; when cover art is present it is fed as a
// second image input on fd 3 and mapped as an embedded mjpeg album cover.
func buildArgs(spec JobSpec) []string {
	args := []string{"-hide_banner", "-loglevel", "error"}

	// Input seek: start reading the source at the trim offset.
	if spec.Req.StartSec > 0 {
		args = append(args, "-ss", strconv.Itoa(spec.Req.StartSec))
	}
	args = append(args, "-i", "pipe:0")

	withCover := len(spec.Cover) > 0
	if withCover {
		args = append(args, "-f", "image2", "-i", "pipe:3")
		args = append(args,
			"-map", "0:a",
			"-map", "1:v",
			"-c:v", "mjpeg",
			"-metadata:s:v", "title=Album cover",
			"-metadata:s:v", "comment=Cover (front)",
		)
	}

	args = append(args,
		"-c:a", "libmp3lame",
		"-b:a", fmt.Sprintf("%dk", spec.Req.Bitrate),
	)

	// Output duration bound; only meaningful together with a start offset.
	if spec.Req.StartSec >= 0 && spec.Req.EndSec > spec.Req.StartSec {
		args = append(args, "-t", strconv.Itoa(spec.Req.EndSec-spec.Req.StartSec))
	}

	args = append(args,
		"-id3v2_version", "3",
		"-metadata", "title="+SanitizeTag(spec.Title),
		"-metadata", "artist="+SanitizeTag(spec.Artist),
		"-metadata", "comment="+provenanceComment,
		"-f", "mp3",
		"pipe:1",
	)
	return args
}

// Start launches the encoder for one job. The process lifetime is bound to
// ctx: cancelling it (client disconnect, handler return) kills the process.
// The caller owns the audio reader and must close it itself.
func (p *Pipeline) Start(ctx context.Context, spec JobSpec, audio io.Reader) (*Stream, error) {
	ctx, cancel := context.WithCancel(ctx)

	args := buildArgs(spec)
	cmd := exec.CommandContext(ctx, p.ffmpegPath, args...)
	cmd.Stdin = audio

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	// Explicit stdout pipe: the child is the only writer, so the read side
	// sees EOF exactly when the process exits, with nothing discarded by an
	// early Wait.
	stdoutRead, stdoutWrite, err := os.Pipe()
	if err != nil {
		cancel()
		return nil, fmt.Errorf("%w: stdout pipe: %v", ErrEncoder, err)
	}
	cmd.Stdout = stdoutWrite

	// Cover art rides on fd 3: ExtraFiles[0] becomes the child's pipe:3.
	var coverRead, coverWrite *os.File
	if len(spec.Cover) > 0 {
		coverRead, coverWrite, err = os.Pipe()
		if err != nil {
			cancel()
			stdoutRead.Close()
			stdoutWrite.Close()
			return nil, fmt.Errorf("%w: cover pipe: %v", ErrEncoder, err)
		}
		cmd.ExtraFiles = []*os.File{coverRead}
	}

	logger.Debug("starting ffmpeg",
		logger.String("jobId", spec.ID),
		logger.String("args", strings.Join(args, " ")))

	if err := cmd.Start(); err != nil {
		cancel()
		stdoutRead.Close()
		stdoutWrite.Close()
		if coverRead != nil {
			coverRead.Close()
			coverWrite.Close()
		}
		return nil, fmt.Errorf("%w: start: %v", ErrEncoder, err)
	}

	// The child holds its own copies of the write/read ends now.
	stdoutWrite.Close()

	if coverRead != nil {
		coverRead.Close()
		go func(data []byte, w *os.File) {
			defer w.Close()
			if _, err := w.Write(data); err != nil {
				logger.Debug("cover art pipe write interrupted",
					logger.String("jobId", spec.ID),
					logger.ErrorField(err))
			}
		}(spec.Cover, coverWrite)
	}

	done := make(chan error, 1)
	go func() {
		waitErr := cmd.Wait()
		if waitErr != nil {
			done <- fmt.Errorf("%w: %v: %s", ErrEncoder, waitErr, lastStderrLine(&stderr))
			return
		}
		done <- nil
	}()

	return &Stream{
		Output: stdoutRead,
		Done:   done,
		cancel: cancel,
	}, nil
}

// lastStderrLine extracts the most useful part of ffmpeg's stderr for error
// reporting; ffmpeg puts the fatal reason on the final non-empty line.
func lastStderrLine(buf *bytes.Buffer) string {
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return "no encoder output"
}
