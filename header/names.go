package header

// Header names the part parser and its collaborators care about. The
// teacher's hdr package carries the full HTTP header vocabulary for
// request/response modelling; only the MIME part subset survives here.
const (
	ContentDisposition      = "Content-Disposition"
	ContentTransferEncoding = "Content-Transfer-Encoding"
	ContentType             = "Content-Type"
)
