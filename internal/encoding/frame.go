// internal/encoding/frame.go
package encoding

import (
	"encoding/binary"
	"io"
)

// All on-disk integers in the log and file headers are little-endian with
// fixed widths. These helpers read and write them against streams; block
// formats use encoding/binary directly on mapped memory.

// WriteU32 writes v to w as 4 little-endian bytes.
func WriteU32(w io.Writer, v uint32) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

// ReadU32 reads 4 little-endian bytes from r.
func ReadU32(r io.Reader) (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}

// WriteBytes writes b verbatim, with no length prefix or terminator.
func WriteBytes(w io.Writer, b []byte) error {
	_, err := w.Write(b)
	return err
}

// ReadBytes reads exactly n bytes from r.
func ReadBytes(r io.Reader, n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, err
	}
	return b, nil
}
