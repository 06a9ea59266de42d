package id3

import (
	"bytes"
	"errors"
	"fmt"
	"io"
)

var (
	ErrNoTag              = errors.New("no ID3v2 tag")
	ErrUnsupportedVersion = errors.New("unsupported ID3v2 version")
)

const (
	headerSize = 10

	// Upper bound for a tag body; syncsafe sizes cannot exceed 256 MiB anyway.
	MaxTagSize = 64 << 20

	flagUnsynchronisation = 0x80
	flagExtendedHeader    = 0x40
)

type Header struct {
	// Major version, 3 or 4.
	Version  byte
	Revision byte
	Flags    byte
	// Size of the tag body, excluding the 10 byte header.
	Size int
}

func (h *Header) unsynchronised() bool {
	return h.Flags&flagUnsynchronisation != 0
}

func parseHeader(b []byte) (*Header, error) {
	if len(b) < headerSize || !bytes.HasPrefix(b, []byte("ID3")) {
		return nil, ErrNoTag
	}
	h := &Header{
		Version:  b[3],
		Revision: b[4],
		Flags:    b[5],
	}
	if h.Version != 3 && h.Version != 4 {
		return nil, fmt.Errorf("%w: 2.%d", ErrUnsupportedVersion, h.Version)
	}
	size, err := syncsafe(b[6:10])
	if err != nil {
		return nil, fmt.Errorf("tag size: %w", err)
	}
	h.Size = size
	return h, nil
}

func readHeader(r io.Reader) (*Header, error) {
	buf := make([]byte, headerSize)
	if _, err := io.ReadFull(r, buf); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, ErrNoTag
		}
		return nil, err
	}
	return parseHeader(buf)
}

// Decodes a 28-bit big endian integer stored as four 7-bit bytes.
func syncsafe(b []byte) (int, error) {
	var n int
	for _, c := range b {
		if c&0x80 != 0 {
			return 0, fmt.Errorf("invalid syncsafe byte 0x%02x", c)
		}
		n = n<<7 | int(c)
	}
	return n, nil
}

func bigEndian(b []byte) int {
	var n int
	for _, c := range b {
		n = n<<8 | int(c)
	}
	return n
}

// Reverses the unsynchronisation scheme: every 0xFF 0x00 pair becomes 0xFF.
func deunsync(b []byte) []byte {
	out := make([]byte, 0, len(b))
	for i := 0; i < len(b); i++ {
		out = append(out, b[i])
		if b[i] == 0xFF && i+1 < len(b) && b[i+1] == 0x00 {
			i++
		}
	}
	return out
}

// Returns the frame data that follows the extended header, if present.
func skipExtendedHeader(h *Header, body []byte) ([]byte, error) {
	if h.Flags&flagExtendedHeader == 0 {
		return body, nil
	}
	if len(body) < 4 {
		return nil, fmt.Errorf("truncated extended header")
	}
	var n int
	if h.Version == 4 {
		size, err := syncsafe(body[:4])
		if err != nil {
			return nil, fmt.Errorf("extended header size: %w", err)
		}
		// v2.4 counts the size field itself
		n = size
	} else {
		n = bigEndian(body[:4]) + 4
	}
	if n < 4 || n > len(body) {
		return nil, fmt.Errorf("extended header size %d out of range", n)
	}
	return body[n:], nil
}
