package media

import (
	"bytes"
	"crypto/rand"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// slowChunkReader yields data in odd-sized pieces to exercise chunking.
type slowChunkReader struct {
	data []byte
	step int
	err  error // returned after the data runs out, instead of EOF
}

func (r *slowChunkReader) Read(p []byte) (int, error) {
	if len(r.data) == 0 {
		if r.err != nil {
			return 0, r.err
		}
		return 0, io.EOF
	}
	n := r.step
	if n > len(r.data) {
		n = len(r.data)
	}
	if n > len(p) {
		n = len(p)
	}
	copy(p, r.data[:n])
	r.data = r.data[n:]
	return n, nil
}

func (r *slowChunkReader) Close() error { return nil }

func TestPrefetchReaderDeliversAllBytesInOrder(t *testing.T) {
	payload := make([]byte, 1<<20)
	_, err := rand.Read(payload)
	require.NoError(t, err)

	src := &slowChunkReader{data: append([]byte(nil), payload...), step: 4099}
	r := newPrefetchReader(src, 256*1024)
	defer r.Close()

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.True(t, bytes.Equal(payload, got), "payload should round trip unchanged")
}

func TestPrefetchReaderPropagatesSourceError(t *testing.T) {
	srcErr := errors.New("connection reset")
	src := &slowChunkReader{data: []byte("partial"), step: 3, err: srcErr}
	r := newPrefetchReader(src, 64*1024)
	defer r.Close()

	got, err := io.ReadAll(r)
	assert.Equal(t, "partial", string(got))
	assert.ErrorIs(t, err, srcErr)
}

func TestPrefetchReaderCloseUnblocksPump(t *testing.T) {
	// A source much larger than the watermark keeps the pump blocked on a
	// full queue; Close must still let it exit.
	src := &slowChunkReader{data: make([]byte, 8<<20), step: chunkSize}
	r := newPrefetchReader(src, chunkSize) // queue depth 1

	buf := make([]byte, 1024)
	_, err := r.Read(buf)
	require.NoError(t, err)

	require.NoError(t, r.Close())

	// After close, reads report EOF rather than teardown noise.
	deadline := time.After(2 * time.Second)
	done := make(chan error, 1)
	go func() {
		_, err := io.Copy(io.Discard, r)
		done <- err
	}()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-deadline:
		t.Fatal("read did not unblock after Close")
	}
}
