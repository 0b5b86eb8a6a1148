/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

// Package header is a trimmed descendant of badu/http's hdr package: just
// enough of a case-insensitive MIME header multimap to carry a Part's
// headers. Wire serialization, RFC822 time parsing and header sorting
// belong to the HTTP request/response modelling this module doesn't do,
// so none of it made the cut.
package header

// Header represents the key-value pairs of a part's headers, keyed in
// canonical form the same way net/http.Header is.
type Header map[string][]string

// Add appends value to the list of values for key, canonicalizing key.
func (h Header) Add(key, value string) {
	key = CanonicalHeaderKey(key)
	h[key] = append(h[key], value)
}

// Set replaces the values for key with a single value, canonicalizing key.
func (h Header) Set(key, value string) {
	h[CanonicalHeaderKey(key)] = []string{value}
}

// Get returns the first value associated with key, or "" if absent.
func (h Header) Get(key string) string {
	if h == nil {
		return ""
	}
	v := h[CanonicalHeaderKey(key)]
	if len(v) == 0 {
		return ""
	}
	return v[0]
}

// Values returns all values associated with key.
func (h Header) Values(key string) []string {
	return h[CanonicalHeaderKey(key)]
}

// Del deletes the values associated with key.
func (h Header) Del(key string) {
	delete(h, CanonicalHeaderKey(key))
}

// Clone returns a deep copy of h.
func (h Header) Clone() Header {
	if h == nil {
		return nil
	}
	h2 := make(Header, len(h))
	for k, vv := range h {
		vv2 := make([]string, len(vv))
		copy(vv2, vv)
		h2[k] = vv2
	}
	return h2
}
