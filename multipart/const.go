package multipart

var (
	crlf             = []byte("\r\n")
	headerTerminator = []byte("\r\n\r\n")
	defaultReadChunk = 32 << 10 // size of the temporary buffer pullChunk reads the body stream into
)
