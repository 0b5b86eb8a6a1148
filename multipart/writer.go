package multipart

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/badu/streamform/header"
)

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}

// boundaryCharTable marks the bytes RFC 2046 §5.1.1 allows inside a
// boundary token, the encoder-side counterpart to header/canonical.go's
// isTokenTable: a precomputed lookup instead of a chain of range/switch
// comparisons. Space is deliberately excluded here — it is valid only as
// the boundary's last character, a positional rule validateBoundary
// checks separately.
var boundaryCharTable = [128]bool{
	'\'': true, '(': true, ')': true, '+': true, '_': true, ',': true,
	'-': true, '.': true, '/': true, ':': true, '=': true, '?': true,
}

func init() {
	for c := '0'; c <= '9'; c++ {
		boundaryCharTable[c] = true
	}
	for c := 'A'; c <= 'Z'; c++ {
		boundaryCharTable[c] = true
	}
	for c := 'a'; c <= 'z'; c++ {
		boundaryCharTable[c] = true
	}
}

func validateBoundary(raw string) error {
	if len(raw) < 1 || len(raw) > 70 {
		return fmt.Errorf("multipart: boundary must be 1-70 bytes, got %d", len(raw))
	}
	last := len(raw) - 1
	for i := 0; i < len(raw); i++ {
		b := raw[i]
		if b == ' ' {
			if i == last {
				continue
			}
			return fmt.Errorf("multipart: boundary space only allowed as last byte")
		}
		if b >= 128 || !boundaryCharTable[b] {
			return fmt.Errorf("multipart: invalid boundary byte %q", b)
		}
	}
	return nil
}

// Writer is the encoder counterpart to Reader: it produces bodies this
// package's own Reader can stream back apart, built around the same
// boundary type boundary.go derives bStart/bMid from, so the separators
// an encoded body needs and the ones the scanner searches for come from
// one place. It exists for this module's round-trip tests and as a
// small, genuinely useful companion to the parser, grounded on
// badu-http/mime/multipart_writer.go's MultipartWriter contract
// (CreatePart/CreateFormField/CreateFormFile/WriteField/Close).
type Writer struct {
	w    io.Writer
	bnd  *boundary
	open *writerPart
}

// NewWriter returns a Writer with a freshly generated boundary, writing
// to w. Boundary generation uses google/uuid rather than the teacher's
// crypto/rand + hex encoding: a UUIDv4's hyphenated hex form is already
// a valid RFC 2046 boundary token without further encoding, and this
// module's retrieval pack favors uuid for exactly this kind of
// identifier generation (see rclone's use of it for temp names).
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w, bnd: newBoundary(uuid.NewString())}
}

// Boundary returns the Writer's boundary.
func (w *Writer) Boundary() string { return w.bnd.raw }

// SetBoundary overrides the Writer's generated boundary with an
// explicit value, validated per RFC 2046 §5.1.1. It must be called
// before any part is created.
func (w *Writer) SetBoundary(raw string) error {
	if w.open != nil {
		return fmt.Errorf("multipart: SetBoundary called after CreatePart")
	}
	if err := validateBoundary(raw); err != nil {
		return err
	}
	w.bnd = newBoundary(raw)
	return nil
}

// FormDataContentType returns the Content-Type header value for an
// HTTP multipart/form-data body using this Writer's boundary.
func (w *Writer) FormDataContentType() string {
	return "multipart/form-data; boundary=" + w.bnd.raw
}

type writerPart struct {
	dst    io.Writer
	closed bool
}

func (p *writerPart) Write(d []byte) (int, error) {
	if p.closed {
		return 0, fmt.Errorf("multipart: write to closed part")
	}
	return p.dst.Write(d)
}

// CreatePart opens a new part with the given header and returns an
// io.Writer its body should be streamed into. Opening a part implicitly
// closes whatever part preceded it; the sequence of writes this produces
// mirrors exactly what Reader.readBodyInto expects to scan back apart.
func (w *Writer) CreatePart(h header.Header) (io.Writer, error) {
	sep := w.bnd.bStart
	if w.open != nil {
		w.open.closed = true
		sep = w.bnd.bMid
	}
	if _, err := w.w.Write(sep); err != nil {
		return nil, err
	}
	if _, err := io.WriteString(w.w, "\r\n"); err != nil {
		return nil, err
	}
	if err := writeHeaderBlock(w.w, h); err != nil {
		return nil, err
	}

	p := &writerPart{dst: w.w}
	w.open = p
	return p, nil
}

// writeHeaderBlock writes h's fields in canonical-key sorted order
// followed by the blank line that ends a part's header block, matching
// the CRLF-terminated-lines-then-blank-line shape headerparse.go reads
// back on the parsing side.
func writeHeaderBlock(dst io.Writer, h header.Header) error {
	keys := make([]string, 0, len(h))
	for k := range h {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		for _, v := range h[k] {
			if _, err := fmt.Fprintf(dst, "%s: %s\r\n", k, v); err != nil {
				return err
			}
		}
	}
	_, err := io.WriteString(dst, "\r\n")
	return err
}

// CreateFormFile is a convenience wrapper around CreatePart producing
// a form-data header carrying both a field name and a file name.
func (w *Writer) CreateFormFile(fieldName, fileName string) (io.Writer, error) {
	h := make(header.Header)
	h.Set(header.ContentDisposition,
		fmt.Sprintf(`form-data; name="%s"; filename="%s"`, escapeQuotes(fieldName), escapeQuotes(fileName)))
	h.Set(header.ContentType, "application/octet-stream")
	return w.CreatePart(h)
}

// CreateFormField calls CreatePart with a header built from fieldName.
func (w *Writer) CreateFormField(fieldName string) (io.Writer, error) {
	h := make(header.Header)
	h.Set(header.ContentDisposition, fmt.Sprintf(`form-data; name="%s"`, escapeQuotes(fieldName)))
	return w.CreatePart(h)
}

// WriteField calls CreateFormField and writes value to it.
func (w *Writer) WriteField(fieldName, value string) error {
	p, err := w.CreateFormField(fieldName)
	if err != nil {
		return err
	}
	_, err = p.Write([]byte(value))
	return err
}

// Close finishes the multipart message, writing the trailing closing
// boundary derived from the same boundary value the opening separators
// used.
func (w *Writer) Close() error {
	if w.open != nil {
		w.open.closed = true
		w.open = nil
	}
	if _, err := w.w.Write(w.bnd.bMid); err != nil {
		return err
	}
	_, err := io.WriteString(w.w, "--\r\n")
	return err
}
