package multipart

import (
	"io"
	"strings"
	"unicode/utf8"

	"github.com/badu/streamform/header"
)

var emptyParams = map[string]string{}

// Part is a single section of a multipart/form-data body: its headers
// plus a single-pass view of its content, line-for-line descended from
// badu/http/mime/part.go's FormName/FileName/parseContentDisposition but
// retargeted at this package's Header and ring-buffer-backed Reader.
type Part struct {
	Header header.Header

	r   *Reader
	gen int // the Reader.curGen value at the moment this Part was created

	disposition       string
	dispositionParams map[string]string
}

func newPart(r *Reader, h header.Header) *Part {
	return &Part{
		Header: h,
		r:      r,
		gen:    r.curGen,
	}
}

func (p *Part) parseContentDisposition() {
	v := p.Header.Get(header.ContentDisposition)
	var err error
	p.disposition, p.dispositionParams, err = parseMediaType(v)
	if err != nil {
		p.disposition = ""
		p.dispositionParams = emptyParams
	}
}

// FormName returns the name parameter if p has a Content-Disposition of
// type "form-data", as RFC 2183 §2 describes. Otherwise it returns "".
func (p *Part) FormName() string {
	if p.dispositionParams == nil {
		p.parseContentDisposition()
	}
	if p.disposition != "form-data" {
		return ""
	}
	return p.dispositionParams["name"]
}

// FileName returns the filename parameter of the Part's
// Content-Disposition header, decoded from either the plain form or the
// RFC 2231 extended form (filename*) — mime.ParseMediaType already
// folds filename* into this same "filename" key, so callers that only
// need the value never have to care which form was on the wire.
func (p *Part) FileName() string {
	if p.dispositionParams == nil {
		p.parseContentDisposition()
	}
	return p.dispositionParams["filename"]
}

// FileNameSplat reports whether the Content-Disposition header used the
// RFC 2231 extended parameter (filename*=charset'lang'pct-encoded-value)
// rather than the plain form, and if so returns the raw parameter value
// exactly as it appeared on the wire (still percent-encoded, charset and
// language tag intact). mime.ParseMediaType decodes and merges filename*
// into the plain filename key, discarding which form was used and the
// charset/language tag; this is a narrow, independent re-scan of the raw
// header value to recover that detail for callers who need it.
func (p *Part) FileNameSplat() (value string, ok bool) {
	return scanFileNameSplat(p.Header.Get(header.ContentDisposition))
}

func scanFileNameSplat(raw string) (string, bool) {
	const key = "filename*="
	for _, seg := range strings.Split(raw, ";") {
		seg = strings.TrimSpace(seg)
		if len(seg) <= len(key) || !strings.EqualFold(seg[:len(key)], key) {
			continue
		}
		return seg[len(key):], true
	}
	return "", false
}

// MediaType returns the Content-Type parameter's media type, ignoring
// its own parameters (charset, boundary and similar never matter to a
// single Part's body).
func (p *Part) MediaType() string {
	mt, _, err := parseMediaType(p.Header.Get(header.ContentType))
	if err != nil {
		return ""
	}
	return mt
}

// Read reads from the Part's body, stopping before the boundary that
// terminates it. Reading a Part after the Reader has moved on to a
// later Part (via Next, without this one having been fully drained)
// returns ErrPartAbandoned instead of silently returning someone else's
// bytes.
func (p *Part) Read(d []byte) (int, error) {
	if p.gen != p.r.curGen {
		return 0, ErrPartAbandoned
	}
	n, done, err := p.r.readBodyInto(d)
	if err != nil {
		return n, p.r.fail(err)
	}
	if done && n == 0 {
		return 0, io.EOF
	}
	return n, nil
}

// Close discards whatever remains of the Part's body so the Reader can
// advance to the next one; it is a no-op if the Part has already been
// abandoned or fully read.
func (p *Part) Close() error {
	if p.gen != p.r.curGen {
		return nil
	}
	_, err := io.Copy(io.Discard, p)
	if err == io.EOF {
		return nil
	}
	return err
}

// Bytes reads the Part's entire body into memory. Callers that need
// bounded memory use Read directly instead; Bytes exists for the common
// case of small form fields.
func (p *Part) Bytes() ([]byte, error) {
	var out []byte
	buf := make([]byte, 4096)
	for {
		n, err := p.Read(buf)
		if n > 0 {
			out = append(out, buf[:n]...)
		}
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return out, err
		}
	}
}

// Text reads the Part's entire body and returns it as a string, failing
// if the bytes are not valid UTF-8. This is the convenience accessor for
// ordinary form fields, which are text by RFC 7578's own default.
func (p *Part) Text() (string, error) {
	b, err := p.Bytes()
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", newParseError(InvalidUTF8, errNotValidUTF8)
	}
	return string(b), nil
}
