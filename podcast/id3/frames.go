package id3

import (
	"fmt"
	"strings"
	"time"
)

// A decoded frame. The concrete type is one of *TextFrame, *TimestampFrame,
// *URLFrame, *ChapterEntry, *ChapterTOC, *ImageFrame or *UnknownFrame.
type Frame interface {
	FrameID() string
}

// T*** frames other than TXXX.
type TextFrame struct {
	ID string
	// v2.4 allows several null-separated values; v2.3 frames hold one.
	Values []string
}

func (f *TextFrame) FrameID() string { return f.ID }

func (f *TextFrame) Text() string {
	return strings.Join(f.Values, "/")
}

// ID3v2.4 timestamp frames (TDRC, TDRL, TDEN, TDOR, TDTG). Precision is
// whatever the tag supplied, down to the second; Raw keeps the original text.
type TimestampFrame struct {
	ID   string
	Time time.Time
	Raw  string
}

func (f *TimestampFrame) FrameID() string { return f.ID }

var timestampFrames = map[string]bool{
	"TDRC": true,
	"TDRL": true,
	"TDEN": true,
	"TDOR": true,
	"TDTG": true,
}

// Accepted subsets of ISO 8601, most precise first.
var timestampLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02T15",
	"2006-01-02",
	"2006-01",
	"2006",
}

func parseTimestamp(s string) (time.Time, bool) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// W*** frames. Description is only set for WXXX.
type URLFrame struct {
	ID          string
	Description string
	URL         string
}

func (f *URLFrame) FrameID() string { return f.ID }

// CHAP frame from the ID3v2 chapter addendum.
type ChapterEntry struct {
	ElementID string
	Start     time.Duration
	End       time.Duration
	// Byte offsets into the audio; 0xFFFFFFFF means unused.
	StartOffset uint32
	EndOffset   uint32
	SubFrames   []Frame
}

func (f *ChapterEntry) FrameID() string { return "CHAP" }

// Returns the first embedded text frame with the given ID.
func (f *ChapterEntry) Text(id string) string {
	return textOf(f.SubFrames, id)
}

// Returns the URL of the first embedded URL frame with the given ID.
func (f *ChapterEntry) URL(id string) string {
	for _, sf := range f.SubFrames {
		if u, ok := sf.(*URLFrame); ok && u.ID == id {
			return u.URL
		}
	}
	return ""
}

// CTOC frame.
type ChapterTOC struct {
	ElementID string
	TopLevel  bool
	Ordered   bool
	ChildIDs  []string
	SubFrames []Frame
}

func (f *ChapterTOC) FrameID() string { return "CTOC" }

// APIC frame.
type ImageFrame struct {
	MIMEType    string
	PictureType byte
	Description string
	Data        []byte
}

func (f *ImageFrame) FrameID() string { return "APIC" }

// Any frame without a typed decoding, and frames that are compressed or
// encrypted.
type UnknownFrame struct {
	ID   string
	Data []byte
}

func (f *UnknownFrame) FrameID() string { return f.ID }

func textOf(frames []Frame, id string) string {
	for _, sf := range frames {
		if t, ok := sf.(*TextFrame); ok && t.ID == id {
			return t.Text()
		}
	}
	return ""
}

// Builds the typed frame for a frame body. version selects the framing of
// embedded sub-frames in CHAP and CTOC.
func decodeFrame(id string, body []byte, version byte) (Frame, error) {
	switch {
	case id == "CHAP":
		return decodeChapter(body, version)
	case id == "CTOC":
		return decodeTOC(body, version)
	case id == "APIC":
		return decodeImage(body)
	case id == "WXXX":
		return decodeUserURL(body)
	case id == "TXXX":
		return &UnknownFrame{ID: id, Data: body}, nil
	case timestampFrames[id]:
		tf, err := decodeText(id, body)
		if err != nil {
			return nil, err
		}
		if len(tf.Values) > 0 {
			if t, ok := parseTimestamp(tf.Values[0]); ok {
				return &TimestampFrame{ID: id, Time: t, Raw: tf.Values[0]}, nil
			}
		}
		// unparseable dates stay readable as text
		return tf, nil
	case id[0] == 'T':
		return decodeText(id, body)
	case id[0] == 'W':
		u, err := latin1(trimNulls(body))
		if err != nil {
			return nil, err
		}
		return &URLFrame{ID: id, URL: u}, nil
	default:
		return &UnknownFrame{ID: id, Data: body}, nil
	}
}

func decodeText(id string, body []byte) (*TextFrame, error) {
	if len(body) < 1 {
		return nil, fmt.Errorf("%s: empty frame", id)
	}
	vals, err := Encoding(body[0]).readStrings(body[1:])
	if err != nil {
		return nil, fmt.Errorf("%s: %w", id, err)
	}
	return &TextFrame{ID: id, Values: vals}, nil
}

func decodeUserURL(body []byte) (*URLFrame, error) {
	if len(body) < 1 {
		return nil, fmt.Errorf("WXXX: empty frame")
	}
	enc := Encoding(body[0])
	desc, rest, err := enc.readString(body[1:])
	if err != nil {
		return nil, fmt.Errorf("WXXX: %w", err)
	}
	u, err := latin1(trimNulls(rest))
	if err != nil {
		return nil, fmt.Errorf("WXXX: %w", err)
	}
	return &URLFrame{ID: "WXXX", Description: desc, URL: u}, nil
}

func decodeImage(body []byte) (*ImageFrame, error) {
	if len(body) < 1 {
		return nil, fmt.Errorf("APIC: empty frame")
	}
	enc := Encoding(body[0])
	mimeType, rest, err := EncodingISO88591.readString(body[1:])
	if err != nil {
		return nil, fmt.Errorf("APIC: %w", err)
	}
	if len(rest) < 1 {
		return nil, fmt.Errorf("APIC: missing picture type")
	}
	f := &ImageFrame{MIMEType: mimeType, PictureType: rest[0]}
	f.Description, rest, err = enc.readString(rest[1:])
	if err != nil {
		return nil, fmt.Errorf("APIC: %w", err)
	}
	f.Data = rest
	return f, nil
}

func decodeChapter(body []byte, version byte) (*ChapterEntry, error) {
	id, rest, err := EncodingISO88591.readString(body)
	if err != nil {
		return nil, fmt.Errorf("CHAP: %w", err)
	}
	if len(rest) < 16 {
		return nil, fmt.Errorf("CHAP %q: truncated timing", id)
	}
	ch := &ChapterEntry{
		ElementID:   id,
		Start:       time.Duration(bigEndian(rest[0:4])) * time.Millisecond,
		End:         time.Duration(bigEndian(rest[4:8])) * time.Millisecond,
		StartOffset: uint32(bigEndian(rest[8:12])),
		EndOffset:   uint32(bigEndian(rest[12:16])),
	}
	ch.SubFrames = readFrames(rest[16:], version)
	return ch, nil
}

const (
	tocTopLevel = 0x02
	tocOrdered  = 0x01
)

func decodeTOC(body []byte, version byte) (*ChapterTOC, error) {
	id, rest, err := EncodingISO88591.readString(body)
	if err != nil {
		return nil, fmt.Errorf("CTOC: %w", err)
	}
	if len(rest) < 2 {
		return nil, fmt.Errorf("CTOC %q: truncated", id)
	}
	toc := &ChapterTOC{
		ElementID: id,
		TopLevel:  rest[0]&tocTopLevel != 0,
		Ordered:   rest[0]&tocOrdered != 0,
	}
	count := int(rest[1])
	rest = rest[2:]
	for i := 0; i < count; i++ {
		if len(rest) == 0 {
			return nil, fmt.Errorf("CTOC %q: expected %d entries, found %d", id, count, i)
		}
		var child string
		child, rest, err = EncodingISO88591.readString(rest)
		if err != nil {
			return nil, fmt.Errorf("CTOC %q: %w", id, err)
		}
		toc.ChildIDs = append(toc.ChildIDs, child)
	}
	toc.SubFrames = readFrames(rest, version)
	return toc, nil
}

func trimNulls(b []byte) []byte {
	for len(b) > 0 && b[len(b)-1] == 0 {
		b = b[:len(b)-1]
	}
	return b
}
