/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

// Package request is a thin, deliberately incomplete descendant of
// badu/http's Request type. It exists only so the multipart parser has
// something to read a Content-Type header and a body stream from; URL
// derivation, trailers, TLS state, form caching and wire (de)serialization
// all belong to full HTTP request/response modelling, which is out of
// scope here.
package request

import (
	"io"

	"github.com/badu/streamform/header"
)

// Request carries just enough of an HTTP request for boundary resolution
// and body streaming: the header collection the boundary resolver reads,
// and the body as a lazily-drained byte stream.
type Request struct {
	Method string
	Header header.Header
	Body   io.Reader
}

// New wraps an already-framed body reader (e.g. a per-chunk reader
// supplied by the server socket integration) as a Request carrying the
// given headers.
func New(method string, h header.Header, body io.Reader) *Request {
	if h == nil {
		h = make(header.Header)
	}
	return &Request{Method: method, Header: h, Body: body}
}
