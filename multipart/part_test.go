package multipart_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/badu/streamform/header"
	"github.com/badu/streamform/multipart"
	"github.com/badu/streamform/request"
)

func TestPartFormNameIgnoresNonFormData(t *testing.T) {
	boundary := "B"
	body := []byte("--" + boundary + "\r\nContent-Disposition: attachment; filename=\"x.txt\"\r\n\r\ndata\r\n--" + boundary + "--\r\n")
	h := make(header.Header)
	h.Set(header.ContentType, "multipart/form-data; boundary="+boundary)
	r, err := multipart.NewReader(context.Background(), request.New("POST", h, bytes.NewReader(body)), nil)
	require.NoError(t, err)

	p, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, "", p.FormName())
	assert.Equal(t, "x.txt", p.FileName())
}

func TestPartFileNameSplat(t *testing.T) {
	boundary := "B"
	cd := "form-data; name=\"file\"; filename*=UTF-8''%e2%82%ac%20rates.txt"
	body := []byte("--" + boundary + "\r\nContent-Disposition: " + cd + "\r\n\r\ndata\r\n--" + boundary + "--\r\n")
	h := make(header.Header)
	h.Set(header.ContentType, "multipart/form-data; boundary="+boundary)
	r, err := multipart.NewReader(context.Background(), request.New("POST", h, bytes.NewReader(body)), nil)
	require.NoError(t, err)

	p, err := r.Next()
	require.NoError(t, err)

	raw, ok := p.FileNameSplat()
	require.True(t, ok)
	assert.Equal(t, "UTF-8''%e2%82%ac%20rates.txt", raw)
}

func TestPartFileNameSplatAbsent(t *testing.T) {
	boundary := "B"
	body := []byte("--" + boundary + "\r\nContent-Disposition: form-data; name=\"a\"\r\n\r\ndata\r\n--" + boundary + "--\r\n")
	h := make(header.Header)
	h.Set(header.ContentType, "multipart/form-data; boundary="+boundary)
	r, err := multipart.NewReader(context.Background(), request.New("POST", h, bytes.NewReader(body)), nil)
	require.NoError(t, err)

	p, err := r.Next()
	require.NoError(t, err)

	_, ok := p.FileNameSplat()
	assert.False(t, ok)
}

func TestPartMediaType(t *testing.T) {
	boundary := "B"
	body := []byte("--" + boundary + "\r\nContent-Disposition: form-data; name=\"a\"\r\nContent-Type: application/json; charset=utf-8\r\n\r\n{}\r\n--" + boundary + "--\r\n")
	h := make(header.Header)
	h.Set(header.ContentType, "multipart/form-data; boundary="+boundary)
	r, err := multipart.NewReader(context.Background(), request.New("POST", h, bytes.NewReader(body)), nil)
	require.NoError(t, err)

	p, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, "application/json", p.MediaType())
}

func TestPartTextRejectsInvalidUTF8(t *testing.T) {
	boundary := "B"
	var buf bytes.Buffer
	buf.WriteString("--" + boundary + "\r\nContent-Disposition: form-data; name=\"a\"\r\n\r\n")
	buf.Write([]byte{0xff, 0xfe, 0xfd})
	buf.WriteString("\r\n--" + boundary + "--\r\n")

	h := make(header.Header)
	h.Set(header.ContentType, "multipart/form-data; boundary="+boundary)
	r, err := multipart.NewReader(context.Background(), request.New("POST", h, bytes.NewReader(buf.Bytes())), nil)
	require.NoError(t, err)

	p, err := r.Next()
	require.NoError(t, err)
	_, err = p.Text()
	require.Error(t, err)
	var pe *multipart.MultipartParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, multipart.InvalidUTF8, pe.Kind)
}

func TestPartCloseDrainsRemainingBody(t *testing.T) {
	boundary := "B"
	body := []byte("--" + boundary + "\r\nContent-Disposition: form-data; name=\"a\"\r\n\r\nhello world\r\n--" + boundary + "\r\nContent-Disposition: form-data; name=\"b\"\r\n\r\n2\r\n--" + boundary + "--\r\n")
	h := make(header.Header)
	h.Set(header.ContentType, "multipart/form-data; boundary="+boundary)
	r, err := multipart.NewReader(context.Background(), request.New("POST", h, bytes.NewReader(body)), nil)
	require.NoError(t, err)

	first, err := r.Next()
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := r.Next()
	require.NoError(t, err)
	text, err := second.Text()
	require.NoError(t, err)
	assert.Equal(t, "2", text)
}
