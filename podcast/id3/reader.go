package id3

import (
	"fmt"
	"io"
	"os"
)

const frameHeaderSize = 10

// v2.3 frame format flags
const (
	v23Compressed = 0x80
	v23Encrypted  = 0x40
	v23Grouped    = 0x20
)

// v2.4 frame format flags
const (
	v24Grouped           = 0x40
	v24Compressed        = 0x08
	v24Encrypted         = 0x04
	v24Unsynchronised    = 0x02
	v24DataLengthPresent = 0x01
)

type Tag struct {
	Header *Header
	Frames []Frame
}

// Returns the joined value of the first text frame with the given ID.
func (t *Tag) Text(id string) string {
	return textOf(t.Frames, id)
}

// Reads the ID3v2 tag at the start of r. Returns ErrNoTag when r does not
// begin with one.
func Read(r io.Reader) (*Tag, error) {
	h, err := readHeader(r)
	if err != nil {
		return nil, err
	}
	if h.Size > MaxTagSize {
		return nil, fmt.Errorf("tag size %d exceeds limit of %d bytes", h.Size, MaxTagSize)
	}

	body := make([]byte, h.Size)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, fmt.Errorf("reading tag body: %w", err)
	}

	// v2.4 applies unsynchronisation per frame instead
	if h.unsynchronised() && h.Version == 3 {
		body = deunsync(body)
	}

	body, err = skipExtendedHeader(h, body)
	if err != nil {
		return nil, err
	}

	return &Tag{Header: h, Frames: readFrames(body, h.Version)}, nil
}

func ReadFile(path string) (*Tag, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	tag, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return tag, nil
}

// Walks a sequence of frames until the data or padding runs out.
//
// Reading stops quietly at the first header that cannot be framed (bad ID,
// bad size, or a size past the end of the data), keeping what came before.
// Frames whose bodies fail to decode are kept as UnknownFrame.
func readFrames(b []byte, version byte) []Frame {
	frameSize := bigEndianSize
	if version == 4 {
		frameSize = v24FrameSize(b)
	}

	var frames []Frame
	for len(b) >= frameHeaderSize {
		if b[0] == 0 {
			break
		}

		id := string(b[0:4])
		if !validFrameID(id) {
			break
		}
		size, err := frameSize(b[4:8])
		if err != nil {
			break
		}
		format := b[9]

		b = b[frameHeaderSize:]
		if size > len(b) {
			break
		}
		body := b[:size]
		b = b[size:]

		f, err := frameFromBody(id, body, format, version)
		if err != nil {
			f = &UnknownFrame{ID: id, Data: body}
		}
		frames = append(frames, f)
	}
	return frames
}

type sizeFunc func([]byte) (int, error)

func syncsafeSize(b []byte) (int, error) {
	return syncsafe(b)
}

func bigEndianSize(b []byte) (int, error) {
	return bigEndian(b), nil
}

// Some encoders (iTunes among them) write v2.4 frame sizes as plain 32-bit
// integers. Syncsafe wins unless only big-endian sizes frame the data cleanly.
func v24FrameSize(b []byte) sizeFunc {
	if framesCleanly(b, syncsafeSize) || !framesCleanly(b, bigEndianSize) {
		return syncsafeSize
	}
	return bigEndianSize
}

// Reports whether every frame header in b parses with frameSize and the last
// frame ends exactly at padding or at the end of b.
func framesCleanly(b []byte, frameSize sizeFunc) bool {
	for len(b) >= frameHeaderSize && b[0] != 0 {
		if !validFrameID(string(b[0:4])) {
			return false
		}
		size, err := frameSize(b[4:8])
		if err != nil || size > len(b)-frameHeaderSize {
			return false
		}
		b = b[frameHeaderSize+size:]
	}
	return len(b) == 0 || b[0] == 0
}

// Strips the per-frame framing described by the format flags and decodes
// the remaining body.
func frameFromBody(id string, body []byte, format, version byte) (Frame, error) {
	if version == 4 {
		if format&(v24Compressed|v24Encrypted) != 0 {
			return &UnknownFrame{ID: id, Data: body}, nil
		}
		if format&v24Grouped != 0 {
			if len(body) < 1 {
				return nil, fmt.Errorf("frame %s: truncated group id", id)
			}
			body = body[1:]
		}
		if format&v24DataLengthPresent != 0 {
			if len(body) < 4 {
				return nil, fmt.Errorf("frame %s: truncated data length", id)
			}
			body = body[4:]
		}
		if format&v24Unsynchronised != 0 {
			body = deunsync(body)
		}
	} else {
		if format&(v23Compressed|v23Encrypted) != 0 {
			return &UnknownFrame{ID: id, Data: body}, nil
		}
		if format&v23Grouped != 0 {
			if len(body) < 1 {
				return nil, fmt.Errorf("frame %s: truncated group id", id)
			}
			body = body[1:]
		}
	}
	return decodeFrame(id, body, version)
}

func validFrameID(id string) bool {
	if len(id) != 4 {
		return false
	}
	for _, c := range []byte(id) {
		if (c < 'A' || c > 'Z') && (c < '0' || c > '9') {
			return false
		}
	}
	return true
}
