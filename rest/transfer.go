package rest

import (
	"iter"
	"net/url"
)

// TransferOptions selects the shape a download operation hands back and
// carries per-request extras. The zero value requests a buffered transfer.
//
// Precedence when several modes are set: Iterator wins over Streamed, which
// wins over the buffered default. The modes are deliberately not validated as
// mutually exclusive; callers setting both get the iterator.
type TransferOptions struct {
	// Streamed requests chunked consumption: the body is read in ChunkSize
	// pieces and each piece is passed to OnChunk. The connection stays open
	// for the duration of the call only.
	Streamed bool

	// Iterator requests the lazy pull shape: the payload exposes the chunk
	// sequence directly and the caller drives consumption. OnChunk is never
	// invoked in this mode. The connection stays open until the sequence is
	// consumed or abandoned.
	Iterator bool

	// ChunkSize is the size of each chunk in streamed and iterator modes.
	// Zero or negative means DefaultChunkSize.
	ChunkSize int

	// OnChunk receives each chunk in streamed mode, in order. If nil, chunks
	// are read and discarded. Returning an error aborts the transfer and the
	// error is surfaced to the caller.
	OnChunk func(chunk []byte) error

	// Query holds extra query parameters to send to the server (for example
	// job_token for multi-project pipeline access, or sudo). Merged with the
	// parameters the operation itself sets.
	Query url.Values
}

func (o *TransferOptions) chunkSize() int {
	if o == nil || o.ChunkSize <= 0 {
		return DefaultChunkSize
	}
	return o.ChunkSize
}

// Payload is the materialized result of a download operation. Exactly one
// shape is populated:
//
//   - buffered (default): Data holds the whole body, non-nil even when empty
//   - streamed: both fields are nil, the chunks were already delivered to the
//     OnChunk callback
//   - iterator: Chunks holds the lazy sequence, Data is nil
type Payload struct {
	Data   []byte
	Chunks iter.Seq2[[]byte, error]
}

// Materialize converts a Response into the caller-selected Payload shape per
// the TransferOptions precedence. opts may be nil, selecting buffered mode.
func Materialize(resp *Response, opts *TransferOptions) (*Payload, error) {
	switch {
	case opts != nil && opts.Iterator:
		return &Payload{Chunks: resp.Chunks(opts.chunkSize())}, nil
	case opts != nil && opts.Streamed:
		if err := resp.Stream(opts.chunkSize(), opts.OnChunk); err != nil {
			return nil, err
		}
		return &Payload{}, nil
	default:
		return &Payload{Data: resp.Bytes()}, nil
	}
}
