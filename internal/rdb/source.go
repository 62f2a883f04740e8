package rdb

import (
	"errors"
	"io"
)

// ByteSource is spec.md §6's external collaborator: an incremental byte
// reader that supplies bytes and signals end-of-stream, kept out of THE
// CORE's scope per spec.md §1(a). The state machine in parser.go drives
// one of these; it never assumes a blocking, always-more-bytes reader.
type ByteSource interface {
	// Read returns bytes_written and one of: nil (more may follow),
	// io.EOF (stream exhausted, no more bytes ever), or another error
	// (IO failure, fatal).
	Read(dst []byte) (int, error)
}

// readerSource adapts any io.Reader to ByteSource, grounded on the
// teacher's bufio.NewReader(reader) plumbing in NewRDBParser — the one
// concrete adapter a CLI reading from a file or a TCP connection needs.
type readerSource struct {
	r io.Reader
}

// NewReaderSource wraps r as a ByteSource.
func NewReaderSource(r io.Reader) ByteSource {
	return &readerSource{r: r}
}

func (s *readerSource) Read(dst []byte) (int, error) {
	n, err := s.r.Read(dst)
	if err != nil && !errors.Is(err, io.EOF) {
		return n, errIO("byte source read", err)
	}
	return n, err
}
