package multipart

import (
	"io"

	"github.com/sirupsen/logrus"
)

const (
	// DefaultInitialBufferSize is the ring buffer's starting capacity.
	DefaultInitialBufferSize = 16 << 10 // 16 KiB
	// DefaultMaxHeaderSize bounds the bytes between a boundary line and
	// the CRLFCRLF that ends a part's headers.
	DefaultMaxHeaderSize = 8 << 10 // 8 KiB
	// DefaultMaxFileSize bounds a single part's body.
	DefaultMaxFileSize = 10 << 20 // 10 MiB
)

// Options configures a Reader. Fields left at zero (or negative) fall
// back to the package defaults, and a nil Logger to a discarding one.
type Options struct {
	// InitialBufferSize is the ring buffer's starting capacity (C0).
	InitialBufferSize int
	// MaxHeaderSize caps a part's header block.
	MaxHeaderSize int
	// MaxFileSize caps a single part's body.
	MaxFileSize int64
	// Logger receives a debug-level entry when parsing fails and a
	// trace-level entry for every chunk read from the body. Nil disables
	// tracing; it is never used for control flow.
	Logger *logrus.Logger
}

// DefaultOptions returns an Options populated with this package's
// defaults (see §4.1 of the design: 16 KiB buffer, 8 KiB header cap,
// 10 MiB body cap) and a logger discarding all output.
func DefaultOptions() *Options {
	discard := logrus.New()
	discard.SetOutput(io.Discard)
	return &Options{
		InitialBufferSize: DefaultInitialBufferSize,
		MaxHeaderSize:     DefaultMaxHeaderSize,
		MaxFileSize:       DefaultMaxFileSize,
		Logger:            discard,
	}
}

func (o *Options) withDefaults() *Options {
	if o == nil {
		return DefaultOptions()
	}
	out := *o
	if out.InitialBufferSize <= 0 {
		out.InitialBufferSize = DefaultInitialBufferSize
	}
	if out.MaxHeaderSize <= 0 {
		out.MaxHeaderSize = DefaultMaxHeaderSize
	}
	if out.MaxFileSize <= 0 {
		out.MaxFileSize = DefaultMaxFileSize
	}
	if out.Logger == nil {
		out.Logger = DefaultOptions().Logger
	}
	return &out
}
