package rest

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
)

// trackingBody wraps a reader and records whether Close was called.
type trackingBody struct {
	io.Reader
	closed bool
}

func (b *trackingBody) Close() error {
	b.closed = true
	return nil
}

func streamedResponse(body string) (*Response, *trackingBody) {
	tracking := &trackingBody{Reader: strings.NewReader(body)}
	return &Response{status: 200, body: tracking}, tracking
}

func TestResponseChunksExactSizes(t *testing.T) {
	resp, tracking := streamedResponse("abc123")

	var chunks [][]byte
	for chunk, err := range resp.Chunks(2) {
		if err != nil {
			t.Fatalf("chunk error: %v", err)
		}
		chunks = append(chunks, chunk)
	}

	want := [][]byte{[]byte("ab"), []byte("c1"), []byte("23")}
	if len(chunks) != len(want) {
		t.Fatalf("expected %d chunks, got %d", len(want), len(chunks))
	}
	for i := range want {
		if !bytes.Equal(chunks[i], want[i]) {
			t.Fatalf("chunk %d: expected %q, got %q", i, want[i], chunks[i])
		}
	}
	if !tracking.closed {
		t.Fatal("body not closed after full consumption")
	}
}

func TestResponseChunksTrailingRemainder(t *testing.T) {
	resp, _ := streamedResponse("abcde")

	var total []byte
	var sizes []int
	for chunk, err := range resp.Chunks(2) {
		if err != nil {
			t.Fatalf("chunk error: %v", err)
		}
		total = append(total, chunk...)
		sizes = append(sizes, len(chunk))
	}

	if string(total) != "abcde" {
		t.Fatalf("expected concatenation 'abcde', got %q", total)
	}
	if len(sizes) != 3 || sizes[2] != 1 {
		t.Fatalf("expected sizes [2 2 1], got %v", sizes)
	}
}

func TestResponseChunksEmptyBody(t *testing.T) {
	resp, tracking := streamedResponse("")

	count := 0
	for _, err := range resp.Chunks(2) {
		if err != nil {
			t.Fatalf("chunk error: %v", err)
		}
		count++
	}
	if count != 0 {
		t.Fatalf("expected zero chunks for empty body, got %d", count)
	}
	if !tracking.closed {
		t.Fatal("body not closed for empty stream")
	}
}

func TestResponseChunksEarlyBreakClosesBody(t *testing.T) {
	resp, tracking := streamedResponse("abcdef")

	for range resp.Chunks(2) {
		break
	}
	if !tracking.closed {
		t.Fatal("body not closed after early break")
	}
}

func TestResponseChunksNotRestartable(t *testing.T) {
	resp, _ := streamedResponse("abcd")

	first := 0
	for range resp.Chunks(2) {
		first++
	}
	second := 0
	for range resp.Chunks(2) {
		second++
	}
	if first != 2 || second != 0 {
		t.Fatalf("expected 2 then 0 chunks, got %d then %d", first, second)
	}
}

// failingReader yields some bytes, then a read error.
type failingReader struct {
	data []byte
	err  error
	off  int
}

func (r *failingReader) Read(p []byte) (int, error) {
	if r.off < len(r.data) {
		n := copy(p, r.data[r.off:])
		r.off += n
		return n, nil
	}
	return 0, r.err
}

func TestResponseChunksPropagatesReadError(t *testing.T) {
	readErr := errors.New("connection reset")
	resp := &Response{status: 200, body: &trackingBody{Reader: &failingReader{data: []byte("ab"), err: readErr}}}

	var got []byte
	var lastErr error
	for chunk, err := range resp.Chunks(2) {
		if err != nil {
			lastErr = err
			break
		}
		got = append(got, chunk...)
	}
	if string(got) != "ab" {
		t.Fatalf("expected bytes before failure, got %q", got)
	}
	if lastErr == nil || !errors.Is(lastErr, readErr) {
		t.Fatalf("expected wrapped read error, got %v", lastErr)
	}
}

func TestResponseStreamHandlerError(t *testing.T) {
	resp, tracking := streamedResponse("abcdef")

	handlerErr := errors.New("disk full")
	calls := 0
	err := resp.Stream(2, func(chunk []byte) error {
		calls++
		if calls == 2 {
			return handlerErr
		}
		return nil
	})
	if !errors.Is(err, handlerErr) {
		t.Fatalf("expected handler error, got %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected handler to stop after failure, got %d calls", calls)
	}
	if !tracking.closed {
		t.Fatal("body not closed after handler error")
	}
}

func TestResponseStreamNilHandlerDiscards(t *testing.T) {
	resp, tracking := streamedResponse("abcdef")

	if err := resp.Stream(4, nil); err != nil {
		t.Fatalf("stream: %v", err)
	}
	if !tracking.closed {
		t.Fatal("body not closed after discard stream")
	}
}

func TestResponseBytesEmptyIsNonNil(t *testing.T) {
	resp := &Response{status: 200}
	data := resp.Bytes()
	if data == nil {
		t.Fatal("expected non-nil slice for empty buffered body")
	}
	if len(data) != 0 {
		t.Fatalf("expected empty slice, got %d bytes", len(data))
	}
}

func TestBufferedResponseChunks(t *testing.T) {
	resp := &Response{status: 200, data: []byte("abc123")}

	var chunks [][]byte
	for chunk, err := range resp.Chunks(4) {
		if err != nil {
			t.Fatalf("chunk error: %v", err)
		}
		chunks = append(chunks, chunk)
	}
	if len(chunks) != 2 || string(chunks[0]) != "abc1" || string(chunks[1]) != "23" {
		t.Fatalf("unexpected chunks: %q", chunks)
	}
}
