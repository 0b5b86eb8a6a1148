package multipart

import (
	"mime"
	"strings"

	"github.com/badu/streamform/header"
	"github.com/badu/streamform/request"
)

// boundary holds the raw boundary value and the two derived terminator
// sequences the scanner searches for (§3 of the design).
type boundary struct {
	raw string

	// bStart is "--boundary", the prefix that opens the body.
	bStart []byte
	// bMid is CRLF + "--boundary", the separator between parts.
	bMid []byte
}

func newBoundary(raw string) *boundary {
	start := "--" + raw
	return &boundary{
		raw:    raw,
		bStart: []byte(start),
		bMid:   []byte("\r\n" + start),
	}
}

// parseMediaType delegates to the standard library's mime package, the
// pre-existing header-parsing library this parser treats as an external
// collaborator (the teacher wraps the very same function as
// MIMEParseMediaType rather than re-implementing RFC 2231/2045 parameter
// parsing itself).
func parseMediaType(v string) (string, map[string]string, error) {
	return mime.ParseMediaType(v)
}

// resolveBoundary implements §4.1: read Content-Type, verify the media
// type is multipart/form-data, and extract a non-empty boundary.
func resolveBoundary(h header.Header) (*boundary, error) {
	ct := h.Get(header.ContentType)
	if ct == "" {
		return nil, newParseError(MissingOrInvalidContentType, errNoContentType)
	}
	mediaType, params, err := parseMediaType(ct)
	if err != nil {
		return nil, newParseError(MissingOrInvalidContentType, err)
	}
	if !strings.EqualFold(mediaType, "multipart/form-data") {
		return nil, newParseError(MissingOrInvalidContentType, errNotFormData)
	}
	b, ok := params["boundary"]
	if !ok || b == "" {
		return nil, newParseError(MissingBoundary, errNoBoundaryParam)
	}
	return newBoundary(b), nil
}

// resolveBoundaryFromRequest is the entry point boundary.go exposes to
// NewReader: it reads Content-Type off the adapted Request object (§6,
// "wire expectations").
func resolveBoundaryFromRequest(req *request.Request) (*boundary, error) {
	return resolveBoundary(req.Header)
}
