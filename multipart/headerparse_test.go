package multipart

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/badu/streamform/header"
)

func TestParseHeaderBlockBasic(t *testing.T) {
	block := []byte("Content-Disposition: form-data; name=\"field\"\r\nContent-Type: text/plain")
	h := parseHeaderBlock(block)
	assert.Equal(t, `form-data; name="field"`, h.Get(header.ContentDisposition))
	assert.Equal(t, "text/plain", h.Get(header.ContentType))
}

func TestParseHeaderBlockDropsMalformedLines(t *testing.T) {
	block := []byte("Content-Disposition: form-data; name=\"f\"\r\nnot-a-header-line\r\n: novalue\r\nContent-Type: text/plain")
	h := parseHeaderBlock(block)
	assert.Equal(t, `form-data; name="f"`, h.Get(header.ContentDisposition))
	assert.Equal(t, "text/plain", h.Get(header.ContentType))
	assert.Len(t, h, 2)
}

func TestParseHeaderBlockEmpty(t *testing.T) {
	h := parseHeaderBlock(nil)
	assert.Empty(t, h)
}
