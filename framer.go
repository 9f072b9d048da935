package resocket

import (
	"bytes"
)

// framer reassembles a byte stream into delimiter-terminated messages.
// It is owned by a single receiver goroutine and is not safe for concurrent use.
type framer struct {
	delimiter []byte
	maxSize   int

	// buf holds bytes received after the last complete message.
	buf []byte
	// scanned is the prefix of buf already known not to contain the delimiter.
	scanned int
}

func newFramer(delimiter string, maxSize int) *framer {
	return &framer{
		delimiter: []byte(delimiter),
		maxSize:   maxSize,
	}
}

// feed appends p to the accumulator and returns every message completed by it,
// in stream order and without the delimiter. Bytes following the last
// delimiter are kept as the start of the next message.
//
// Messages returned before an error are still valid. A message longer than
// maxSize, complete or not, is an error.
func (f *framer) feed(p []byte) ([][]byte, error) {
	f.buf = append(f.buf, p...)

	var out [][]byte
	for {
		// Resume just before the unscanned tail so a delimiter split across
		// reads is still found.
		from := f.scanned - len(f.delimiter) + 1
		if from < 0 {
			from = 0
		}

		i := bytes.Index(f.buf[from:], f.delimiter)
		if i < 0 {
			f.scanned = len(f.buf)
			break
		}

		end := from + i
		if end > f.maxSize {
			f.buf = f.buf[end+len(f.delimiter):]
			f.scanned = 0
			return out, ErrMessageTooLarge
		}
		msg := make([]byte, end)
		copy(msg, f.buf[:end])
		out = append(out, msg)

		f.buf = f.buf[end+len(f.delimiter):]
		f.scanned = 0
	}

	if len(f.buf) > f.maxSize {
		return out, ErrMessageTooLarge
	}

	return out, nil
}

// pending returns the number of bytes waiting for a delimiter.
func (f *framer) pending() int {
	return len(f.buf)
}
