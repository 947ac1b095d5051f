package rest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaterializeBufferedDefault(t *testing.T) {
	resp := &Response{status: 200, data: []byte("abc123")}

	payload, err := Materialize(resp, nil)
	require.NoError(t, err)
	assert.Equal(t, []byte("abc123"), payload.Data)
	assert.Nil(t, payload.Chunks)
}

func TestMaterializeBufferedEmptyBody(t *testing.T) {
	resp := &Response{status: 200}

	payload, err := Materialize(resp, &TransferOptions{})
	require.NoError(t, err)
	require.NotNil(t, payload.Data)
	assert.Empty(t, payload.Data)
}

func TestMaterializeStreamedInvokesHandlerInOrder(t *testing.T) {
	resp, _ := streamedResponse("abc123")

	var chunks []string
	payload, err := Materialize(resp, &TransferOptions{
		Streamed:  true,
		ChunkSize: 2,
		OnChunk: func(chunk []byte) error {
			chunks = append(chunks, string(chunk))
			return nil
		},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"ab", "c1", "23"}, chunks)
	assert.Nil(t, payload.Data)
	assert.Nil(t, payload.Chunks)
}

func TestMaterializeStreamedEmptyBody(t *testing.T) {
	resp, _ := streamedResponse("")

	calls := 0
	payload, err := Materialize(resp, &TransferOptions{
		Streamed: true,
		OnChunk: func([]byte) error {
			calls++
			return nil
		},
	})
	require.NoError(t, err)
	assert.Zero(t, calls)
	assert.Nil(t, payload.Data)
}

func TestMaterializeIteratorYieldsChunks(t *testing.T) {
	resp, _ := streamedResponse("abc123")

	payload, err := Materialize(resp, &TransferOptions{Iterator: true, ChunkSize: 2})
	require.NoError(t, err)
	require.NotNil(t, payload.Chunks)
	assert.Nil(t, payload.Data)

	var got []string
	for chunk, chunkErr := range payload.Chunks {
		require.NoError(t, chunkErr)
		got = append(got, string(chunk))
	}
	assert.Equal(t, []string{"ab", "c1", "23"}, got)
}

// Iterator wins over streamed: the handler must not be invoked and the
// caller drives consumption.
func TestMaterializeIteratorPrecedence(t *testing.T) {
	resp, _ := streamedResponse("abc123")

	handlerCalls := 0
	payload, err := Materialize(resp, &TransferOptions{
		Iterator:  true,
		Streamed:  true,
		ChunkSize: 3,
		OnChunk: func([]byte) error {
			handlerCalls++
			return nil
		},
	})
	require.NoError(t, err)
	require.NotNil(t, payload.Chunks)

	var total strings.Builder
	for chunk, chunkErr := range payload.Chunks {
		require.NoError(t, chunkErr)
		total.Write(chunk)
	}
	assert.Equal(t, "abc123", total.String())
	assert.Zero(t, handlerCalls, "iterator mode must not invoke the chunk handler")
}

func TestTransferOptionsChunkSizeDefault(t *testing.T) {
	var opts *TransferOptions
	assert.Equal(t, DefaultChunkSize, opts.chunkSize())
	assert.Equal(t, DefaultChunkSize, (&TransferOptions{}).chunkSize())
	assert.Equal(t, DefaultChunkSize, (&TransferOptions{ChunkSize: -1}).chunkSize())
	assert.Equal(t, 64, (&TransferOptions{ChunkSize: 64}).chunkSize())
}
