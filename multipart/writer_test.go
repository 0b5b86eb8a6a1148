package multipart_test

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/badu/streamform/header"
	"github.com/badu/streamform/multipart"
	"github.com/badu/streamform/request"
)

func TestWriterRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("a", "1"))
	fw, err := w.CreateFormFile("upload", "data.bin")
	require.NoError(t, err)
	_, err = fw.Write([]byte("binarydata"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	h := make(header.Header)
	h.Set(header.ContentType, w.FormDataContentType())
	r, err := multipart.NewReader(context.Background(), request.New("POST", h, bytes.NewReader(buf.Bytes())), nil)
	require.NoError(t, err)

	p1, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, "a", p1.FormName())
	text, err := p1.Text()
	require.NoError(t, err)
	assert.Equal(t, "1", text)

	p2, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, "data.bin", p2.FileName())
	content, err := p2.Bytes()
	require.NoError(t, err)
	assert.Equal(t, "binarydata", string(content))

	_, err = r.Next()
	assert.Equal(t, io.EOF, err)
}

func TestWriterBoundaryIsUnique(t *testing.T) {
	w1 := multipart.NewWriter(io.Discard)
	w2 := multipart.NewWriter(io.Discard)
	assert.NotEqual(t, w1.Boundary(), w2.Boundary())
}

func TestWriterSetBoundaryRejectsInvalid(t *testing.T) {
	w := multipart.NewWriter(io.Discard)
	assert.Error(t, w.SetBoundary(""))
	assert.Error(t, w.SetBoundary("has space in middle extra"))
}

func TestWriterSetBoundaryAfterWriteFails(t *testing.T) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("a", "1"))
	assert.Error(t, w.SetBoundary("newboundary"))
}
