package multipart

import (
	"context"
	"errors"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/badu/streamform/request"
)

var errStreamEnded = errors.New("stream ended before the closing boundary")

// Reader is the part emitter of §4.5: a lazy, finite sequence of Parts
// driven by the state machine in state.go over a single ring buffer and
// chunk source. It is the Go expression of the source model's generator
// that yields while still owning the buffer — callers drive it by
// calling Next repeatedly, the same shape as
// badu/http/mime.MultipartReader.NextPart.
type Reader struct {
	ctx  context.Context
	body io.Reader
	opts *Options
	log  *logrus.Logger

	bnd       *boundary
	scanStart *scanner
	scanMid   *scanner
	scanHdr   *scanner

	rb *ringBuffer

	state parserState
	err   *MultipartParseError

	eofReached bool
	partsRead  int

	searchPos int // resume offset for the search currently in progress (preamble/header phase)

	curPart      *Part
	curGen       int // bumped every time Next() is called, invalidating the previous Part's content view
	curBodyBytes int64
	bodySearch   int // resume offset for the in-progress boundary search over a part's body
}

// NewReader resolves req's boundary and constructs a Reader over its
// body. opts may be nil, in which case DefaultOptions() applies.
func NewReader(ctx context.Context, req *request.Request, opts *Options) (*Reader, error) {
	bnd, err := resolveBoundaryFromRequest(req)
	if err != nil {
		return nil, err
	}
	o := opts.withDefaults()
	r := &Reader{
		ctx:       ctx,
		body:      req.Body,
		opts:      o,
		log:       o.Logger,
		bnd:       bnd,
		scanStart: newScanner(bnd.bStart),
		scanMid:   newScanner(bnd.bMid),
		scanHdr:   newScanner(headerTerminator),
		rb:        newRingBuffer(o.InitialBufferSize),
		state:     statePreamble,
	}
	return r, nil
}

// Next advances the emitter: it drains whatever remains of the
// previously-yielded Part, then runs the state machine until it yields a
// new Part, reaches Done (io.EOF), or Failed (the stored error,
// re-raised on every subsequent call).
func (r *Reader) Next() (*Part, error) {
	r.curGen++ // the Part returned last call is abandoned from this point on
	if r.state == stateFailed {
		return nil, r.err
	}
	if r.state == stateDone {
		return nil, io.EOF
	}
	if err := r.drainCurrentPart(); err != nil {
		return nil, r.fail(err)
	}

	for {
		switch r.state {
		case statePreamble:
			part, err := r.advancePreamble()
			if err != nil {
				return nil, r.fail(err)
			}
			if part != nil {
				return part, nil
			}
		case statePartHeaders:
			part, err := r.advancePartHeaders()
			if err != nil {
				return nil, r.fail(err)
			}
			if part != nil {
				return part, nil
			}
		case stateEpilogue:
			if err := r.drainEpilogue(); err != nil {
				return nil, r.fail(err)
			}
			r.state = stateDone
		case stateDone:
			return nil, io.EOF
		case stateFailed:
			return nil, r.err
		}
	}
}

func (r *Reader) fail(err *MultipartParseError) *MultipartParseError {
	r.state = stateFailed
	r.err = err
	r.log.WithField("kind", err.Kind.String()).Debug("multipart: parse failed")
	return err
}

// pullChunk drains one more chunk from the body into the ring buffer.
// It returns a non-nil error only for genuine I/O failures or
// cancellation; reaching the end of the body just sets eofReached.
func (r *Reader) pullChunk() *MultipartParseError {
	if r.ctx != nil {
		if err := r.ctx.Err(); err != nil {
			return newParseError(UnexpectedEnd, context.Cause(r.ctx))
		}
	}
	buf := make([]byte, defaultReadChunk)
	n, err := r.body.Read(buf)
	if n > 0 {
		r.rb.write(buf[:n])
		r.log.WithField("bytes", n).Trace("multipart: read chunk")
	}
	if err != nil {
		if err == io.EOF {
			r.eofReached = true
			return nil
		}
		return newParseError(UnexpectedEnd, err)
	}
	return nil
}

// advancePreamble implements §4.3's Preamble state: discard bytes until
// Bstart is found, then classify what follows it.
func (r *Reader) advancePreamble() (*Part, *MultipartParseError) {
	for {
		view := r.rb.view()
		idx := r.scanStart.indexOf(view, r.searchPos)
		if idx < 0 {
			// Bytes that provably cannot start a match are discarded
			// immediately rather than merely skipped over, so a long
			// preamble never grows the buffer past one boundary's worth
			// of uncertain tail.
			keep := len(r.bnd.bStart) - 1
			safe := len(view) - keep
			if safe > 0 {
				r.rb.advance(safe)
			}
			r.searchPos = r.rb.len() - keep
			if r.searchPos < 0 {
				r.searchPos = 0
			}
			if r.eofReached {
				return nil, newParseError(UnexpectedEnd, errStreamEnded)
			}
			if err := r.pullChunk(); err != nil {
				return nil, err
			}
			continue
		}

		need := idx + len(r.bnd.bStart) + 2
		for r.rb.len() < need && !r.eofReached {
			if err := r.pullChunk(); err != nil {
				return nil, err
			}
		}
		view = r.rb.view()
		if len(view) < need {
			return nil, newParseError(UnexpectedEnd, errStreamEnded)
		}

		follower := view[idx+len(r.bnd.bStart) : need]
		switch {
		case follower[0] == '\r' && follower[1] == '\n':
			r.rb.advance(need)
			r.searchPos = 0
			r.state = statePartHeaders
			return nil, nil
		case follower[0] == '-' && follower[1] == '-':
			r.rb.advance(need)
			r.searchPos = 0
			r.state = stateEpilogue
			return nil, nil
		default:
			// Not a real opening boundary: discard the confirmed
			// preamble bytes before it and resume the search right
			// after its first byte, in case of an overlapping match.
			r.rb.advance(idx + 1)
			r.searchPos = 0
		}
	}
}

// advancePartHeaders implements §4.3's PartHeaders state.
func (r *Reader) advancePartHeaders() (*Part, *MultipartParseError) {
	for {
		view := r.rb.view()
		idx := r.scanHdr.indexOf(view, r.searchPos)
		if idx < 0 {
			if len(view) > r.opts.MaxHeaderSize {
				return nil, newParseError(MaxHeaderSizeExceeded, nil)
			}
			keep := len(headerTerminator) - 1
			r.searchPos = max(0, len(view)-keep)
			if r.eofReached {
				return nil, newParseError(UnexpectedEnd, errStreamEnded)
			}
			if err := r.pullChunk(); err != nil {
				return nil, err
			}
			continue
		}
		if idx > r.opts.MaxHeaderSize {
			return nil, newParseError(MaxHeaderSizeExceeded, nil)
		}

		block := r.rb.take(idx)
		r.rb.advance(len(headerTerminator))
		r.searchPos = 0

		hdrs := parseHeaderBlock(block)
		part := newPart(r, hdrs)
		r.curPart = part
		r.partsRead++
		r.curBodyBytes = 0
		r.bodySearch = 0
		r.state = statePartBody
		return part, nil
	}
}

// afterBoundaryConsumed implements the tail end of §4.3's PartBody state:
// once Bmid itself has been consumed, the next two bytes decide whether
// another part follows or the epilogue begins.
func (r *Reader) afterBoundaryConsumed() *MultipartParseError {
	for r.rb.len() < 2 && !r.eofReached {
		if err := r.pullChunk(); err != nil {
			return err
		}
	}
	view := r.rb.view()
	if len(view) < 2 {
		return newParseError(UnexpectedEnd, errStreamEnded)
	}
	switch {
	case view[0] == '\r' && view[1] == '\n':
		r.rb.advance(2)
		r.state = statePartHeaders
		r.searchPos = 0
		return nil
	case view[0] == '-' && view[1] == '-':
		r.rb.advance(2)
		r.state = stateEpilogue
		return nil
	default:
		return newParseError(InvalidBoundaryFollower, nil)
	}
}

// readBodyInto feeds a part's content view (§4.4): it emits bytes that
// are provably not a prefix of Bmid, pulling more chunks as needed, and
// enforces MaxFileSize on every byte it releases. It is grounded on
// badu/http/mime/utils.go's scanUntilBoundary, adapted from bufio.Reader
// peeking to the ring buffer + Boyer-Moore-Horspool scanner.
func (r *Reader) readBodyInto(dst []byte) (n int, done bool, err *MultipartParseError) {
	switch r.state {
	case statePartBody:
	case stateFailed:
		return 0, false, r.err
	default:
		// The part's terminating boundary has already been consumed.
		return 0, true, nil
	}
	for {
		view := r.rb.view()
		idx := r.scanMid.indexOf(view, r.bodySearch)
		if idx >= 0 {
			if idx == 0 {
				r.rb.advance(len(r.bnd.bMid))
				r.bodySearch = 0
				if e := r.afterBoundaryConsumed(); e != nil {
					return 0, false, e
				}
				return 0, true, nil
			}
			take := idx
			if take > len(dst) {
				take = len(dst)
			}
			n = copy(dst, view[:take])
			r.curBodyBytes += int64(n)
			if r.curBodyBytes > r.opts.MaxFileSize {
				return 0, false, newParseError(MaxFileSizeExceeded, nil)
			}
			r.rb.advance(n)
			r.bodySearch = idx - n
			return n, false, nil
		}

		keep := len(r.bnd.bMid) - 1
		safe := len(view) - keep
		if safe > 0 {
			take := safe
			if take > len(dst) {
				take = len(dst)
			}
			n = copy(dst, view[:take])
			r.curBodyBytes += int64(n)
			if r.curBodyBytes > r.opts.MaxFileSize {
				return 0, false, newParseError(MaxFileSizeExceeded, nil)
			}
			r.rb.advance(n)
			r.bodySearch = 0
			return n, false, nil
		}

		r.bodySearch = max(0, len(view)-keep)
		if r.eofReached {
			return 0, false, newParseError(UnexpectedEnd, errStreamEnded)
		}
		if e := r.pullChunk(); e != nil {
			return 0, false, e
		}
	}
}

// drainCurrentPart implements the abandonment half of §4.4/§4.5: if the
// caller moved on without fully reading the previous Part, the emitter
// consumes the rest of its body itself so the ring buffer lands exactly
// at the next boundary.
func (r *Reader) drainCurrentPart() *MultipartParseError {
	if r.curPart == nil {
		return nil
	}
	buf := make([]byte, defaultReadChunk)
	for {
		_, done, err := r.readBodyInto(buf)
		if err != nil {
			return err
		}
		if done {
			break
		}
	}
	r.curPart = nil
	return nil
}

// drainEpilogue implements §4.3's Epilogue state: discard everything
// through end of stream.
func (r *Reader) drainEpilogue() *MultipartParseError {
	r.rb.advance(r.rb.len())
	for !r.eofReached {
		if err := r.pullChunk(); err != nil {
			return err
		}
		r.rb.advance(r.rb.len())
	}
	return nil
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
