package id3

import (
	"bytes"
	"fmt"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// Text encoding byte that prefixes most frame bodies.
type Encoding byte

const (
	EncodingISO88591 = Encoding(0)
	EncodingUTF16    = Encoding(1) // with byte order mark
	EncodingUTF16BE  = Encoding(2) // v2.4 only
	EncodingUTF8     = Encoding(3) // v2.4 only
)

func (e Encoding) decoder() (*encoding.Decoder, error) {
	switch e {
	case EncodingISO88591:
		return charmap.ISO8859_1.NewDecoder(), nil
	case EncodingUTF16:
		return unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder(), nil
	case EncodingUTF16BE:
		return unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewDecoder(), nil
	case EncodingUTF8:
		return unicode.UTF8.NewDecoder(), nil
	default:
		return nil, fmt.Errorf("unknown text encoding %d", e)
	}
}

func (e Encoding) terminator() []byte {
	if e == EncodingUTF16 || e == EncodingUTF16BE {
		return []byte{0, 0}
	}
	return []byte{0}
}

func (e Encoding) decode(b []byte) (string, error) {
	if len(b) == 0 {
		return "", nil
	}
	d, err := e.decoder()
	if err != nil {
		return "", err
	}
	out, err := d.Bytes(b)
	if err != nil {
		return "", fmt.Errorf("decoding text: %w", err)
	}
	return string(out), nil
}

// Splits b at the first string terminator for the encoding. UTF-16
// terminators only match on a code unit boundary. When there is no
// terminator the whole input is returned as the field.
func (e Encoding) cut(b []byte) (field, rest []byte) {
	term := e.terminator()
	if len(term) == 1 {
		if i := bytes.IndexByte(b, 0); i >= 0 {
			return b[:i], b[i+1:]
		}
		return b, nil
	}
	for i := 0; i+1 < len(b); i += 2 {
		if b[i] == 0 && b[i+1] == 0 {
			return b[:i], b[i+2:]
		}
	}
	return b, nil
}

// Decodes a null-terminated string and returns what follows it.
func (e Encoding) readString(b []byte) (string, []byte, error) {
	field, rest := e.cut(b)
	s, err := e.decode(field)
	if err != nil {
		return "", nil, err
	}
	return s, rest, nil
}

// Decodes every null-separated string in b. Trailing terminators are ignored.
func (e Encoding) readStrings(b []byte) ([]string, error) {
	var out []string
	for len(b) > 0 {
		s, rest, err := e.readString(b)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
		b = rest
	}
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return out, nil
}

func latin1(b []byte) (string, error) {
	return EncodingISO88591.decode(b)
}
