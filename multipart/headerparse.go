package multipart

import (
	"bytes"

	"github.com/badu/streamform/header"
)

// parseHeaderBlock implements the header line parsing described in §4.3:
// split on CRLF, split each line on the first colon, and silently drop
// any line without one (malformed header tolerance, exercised by the
// "Invalid-Header" scenario in §8).
func parseHeaderBlock(block []byte) header.Header {
	h := make(header.Header)
	for _, line := range bytes.Split(block, crlf) {
		if len(line) == 0 {
			continue
		}
		i := bytes.IndexByte(line, ':')
		if i < 0 {
			continue
		}
		key := string(bytes.TrimSpace(line[:i]))
		if key == "" {
			continue
		}
		value := string(bytes.TrimSpace(line[i+1:]))
		h.Add(key, value)
	}
	return h
}
