package media

import (
	"io"
	"sync"
)

const chunkSize = 64 * 1024

// prefetchReader decouples the producer (source download) from the consumer
// (encoder stdin) with a bounded chunk queue. The pump goroutine keeps
// reading ahead until the queue holds roughly the configured watermark, so
// encoder backpressure never stalls the network side; the queue bound keeps
// memory use fixed.
type prefetchReader struct {
	src io.ReadCloser

	chunks chan []byte
	errCh  chan error
	cur    []byte

	done      chan struct{}
	closeOnce sync.Once
}

func newPrefetchReader(src io.ReadCloser, watermark int) io.ReadCloser {
	depth := watermark / chunkSize
	if depth < 1 {
		depth = 1
	}
	p := &prefetchReader{
		src:    src,
		chunks: make(chan []byte, depth),
		errCh:  make(chan error, 1),
		done:   make(chan struct{}),
	}
	go p.pump()
	return p
}

func (p *prefetchReader) pump() {
	defer close(p.chunks)
	for {
		buf := make([]byte, chunkSize)
		n, err := p.src.Read(buf)
		if n > 0 {
			select {
			case p.chunks <- buf[:n]:
			case <-p.done:
				return
			}
		}
		if err != nil {
			if err != io.EOF {
				p.errCh <- err
			}
			return
		}
	}
}

func (p *prefetchReader) Read(b []byte) (int, error) {
	for len(p.cur) == 0 {
		select {
		case <-p.done:
			// After Close the stream reports a plain EOF; whatever the pump
			// hit while being torn down is not a real source failure.
			return 0, io.EOF
		default:
		}

		chunk, ok := <-p.chunks
		if !ok {
			select {
			case err := <-p.errCh:
				return 0, err
			default:
				return 0, io.EOF
			}
		}
		p.cur = chunk
	}

	n := copy(b, p.cur)
	p.cur = p.cur[n:]
	return n, nil
}

func (p *prefetchReader) Close() error {
	p.closeOnce.Do(func() {
		close(p.done)
	})
	return p.src.Close()
}
