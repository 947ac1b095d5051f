package rest

import (
	"fmt"
	"io"
	"iter"
	"net/http"
)

// DefaultChunkSize is the chunk size used by the streaming and iterator
// transfer modes when the caller does not specify one.
const DefaultChunkSize = 1024

// Response is the handle returned by Client.Get. In buffered mode the body
// has already been read and closed; in streamed mode the underlying network
// connection stays open until the chunk sequence is consumed (or abandoned,
// which also closes it).
type Response struct {
	status int
	header http.Header
	data   []byte        // buffered mode only
	body   io.ReadCloser // streamed mode only
}

// StatusCode returns the HTTP status of the response.
func (r *Response) StatusCode() int { return r.status }

// Header returns the response headers.
func (r *Response) Header() http.Header { return r.header }

// Bytes returns the whole response body. Only valid for buffered responses;
// the slice is non-nil even when the server returned an empty body.
func (r *Response) Bytes() []byte {
	if r.data == nil {
		return []byte{}
	}
	return r.data
}

// Close releases the underlying connection of a streamed response. It is a
// no-op for buffered responses and after the chunk sequence has been fully
// consumed.
func (r *Response) Close() error {
	if r.body == nil {
		return nil
	}
	err := r.body.Close()
	r.body = nil
	return err
}

// Chunks returns the lazy byte-chunk sequence of the response body. Every
// chunk is exactly size bytes except the last, which holds the remainder.
// The sequence is not restartable: once consumed (fully or partially) the
// body is spent.
//
// The connection is released on every exit path: normal completion, an early
// break by the consumer, or a panic inside the consumer — the deferred close
// inside the sequence function runs in all three cases.
func (r *Response) Chunks(size int) iter.Seq2[[]byte, error] {
	if size <= 0 {
		size = DefaultChunkSize
	}
	return func(yield func([]byte, error) bool) {
		if r.body == nil {
			// Buffered response: serve chunks straight from the in-memory
			// copy. This keeps the iterator shape available regardless of
			// how the transfer was requested.
			for off := 0; off < len(r.data); off += size {
				end := min(off+size, len(r.data))
				if !yield(r.data[off:end:end], nil) {
					return
				}
			}
			return
		}
		defer r.Close()
		buf := make([]byte, size)
		for {
			n, err := io.ReadFull(r.body, buf)
			if n > 0 {
				chunk := make([]byte, n)
				copy(chunk, buf[:n])
				if !yield(chunk, nil) {
					return
				}
			}
			switch err {
			case nil:
				continue
			case io.EOF, io.ErrUnexpectedEOF:
				return
			default:
				yield(nil, fmt.Errorf("reading response body: %w", err))
				return
			}
		}
	}
}

// Stream drives the chunk sequence, invoking fn once per chunk in order. A
// nil fn discards the chunks. Stream returns the first error encountered,
// either from the transfer itself or from fn; the connection is released in
// both cases.
func (r *Response) Stream(size int, fn func(chunk []byte) error) error {
	for chunk, err := range r.Chunks(size) {
		if err != nil {
			return err
		}
		if fn == nil {
			continue
		}
		if err := fn(chunk); err != nil {
			return err
		}
	}
	return nil
}
