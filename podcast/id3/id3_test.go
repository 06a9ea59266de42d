package id3

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func syncsafeBytes(n int) []byte {
	return []byte{byte(n >> 21 & 0x7f), byte(n >> 14 & 0x7f), byte(n >> 7 & 0x7f), byte(n & 0x7f)}
}

func frameBytes(version byte, id string, format byte, body []byte) []byte {
	var buf bytes.Buffer
	buf.WriteString(id)
	if version == 4 {
		buf.Write(syncsafeBytes(len(body)))
	} else {
		binary.Write(&buf, binary.BigEndian, uint32(len(body)))
	}
	buf.Write([]byte{0, format})
	buf.Write(body)
	return buf.Bytes()
}

func tagBytes(version byte, flags byte, frames ...[]byte) []byte {
	body := bytes.Join(frames, nil)
	// padding
	body = append(body, make([]byte, 16)...)
	out := []byte{'I', 'D', '3', version, 0, flags}
	out = append(out, syncsafeBytes(len(body))...)
	return append(out, body...)
}

func textBody(s string) []byte {
	return append([]byte{byte(EncodingISO88591)}, s...)
}

func wxxxBody(desc, u string) []byte {
	b := []byte{byte(EncodingISO88591)}
	b = append(b, desc...)
	b = append(b, 0)
	return append(b, u...)
}

func chapBody(version byte, id string, startMs, endMs uint32, sub ...[]byte) []byte {
	var buf bytes.Buffer
	buf.WriteString(id)
	buf.WriteByte(0)
	binary.Write(&buf, binary.BigEndian, startMs)
	binary.Write(&buf, binary.BigEndian, endMs)
	binary.Write(&buf, binary.BigEndian, uint32(0xFFFFFFFF))
	binary.Write(&buf, binary.BigEndian, uint32(0xFFFFFFFF))
	for _, s := range sub {
		buf.Write(s)
	}
	return buf.Bytes()
}

func ctocBody(id string, flags byte, children []string, sub ...[]byte) []byte {
	var buf bytes.Buffer
	buf.WriteString(id)
	buf.WriteByte(0)
	buf.WriteByte(flags)
	buf.WriteByte(byte(len(children)))
	for _, c := range children {
		buf.WriteString(c)
		buf.WriteByte(0)
	}
	for _, s := range sub {
		buf.Write(s)
	}
	return buf.Bytes()
}

func podcastTag(version byte) []byte {
	return tagBytes(version, 0,
		frameBytes(version, "TIT2", 0, textBody("42: Supply Chains")),
		frameBytes(version, "CTOC", 0, ctocBody("toc", tocTopLevel|tocOrdered, []string{"ch1", "ch0"},
			frameBytes(version, "TIT2", 0, textBody("Contents")))),
		frameBytes(version, "CHAP", 0, chapBody(version, "ch0", 0, 61_500,
			frameBytes(version, "TIT2", 0, textBody("Intro")))),
		frameBytes(version, "CHAP", 0, chapBody(version, "ch1", 61_500, 125_000,
			frameBytes(version, "TIT2", 0, textBody("News @bob.test")),
			frameBytes(version, "WXXX", 0, wxxxBody("chapter url", "https://example.com/news")))),
	)
}

func TestReadChapters(t *testing.T) {
	for _, version := range []byte{3, 4} {
		t.Run(fmt.Sprintf("v2.%d", version), func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			tag, err := Read(bytes.NewReader(podcastTag(version)))
			require.NoError(err)
			assert.Equal(version, tag.Header.Version)
			require.Len(tag.Frames, 4)
			assert.Equal("42: Supply Chains", tag.Text("TIT2"))

			toc, ok := tag.Frames[1].(*ChapterTOC)
			require.True(ok)
			assert.Equal("toc", toc.ElementID)
			assert.True(toc.TopLevel)
			assert.True(toc.Ordered)
			assert.Equal([]string{"ch1", "ch0"}, toc.ChildIDs)
			require.Len(toc.SubFrames, 1)
			assert.Equal("Contents", toc.SubFrames[0].(*TextFrame).Text())

			ch0, ok := tag.Frames[2].(*ChapterEntry)
			require.True(ok)
			assert.Equal("ch0", ch0.ElementID)
			assert.Equal(61500*time.Millisecond, ch0.End)
			assert.Equal(uint32(0xFFFFFFFF), ch0.StartOffset)
			assert.Equal("Intro", ch0.Text("TIT2"))
			assert.Equal("", ch0.URL("WXXX"))

			ch1 := tag.Frames[3].(*ChapterEntry)
			assert.Equal(61500*time.Millisecond, ch1.Start)
			assert.Equal(125*time.Second, ch1.End)
			assert.Equal("News @bob.test", ch1.Text("TIT2"))
			assert.Equal("https://example.com/news", ch1.URL("WXXX"))
		})
	}
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "episode.mp3")
	data := append(podcastTag(4), 0xFF, 0xFB, 0x90, 0x00)
	require.NoError(t, os.WriteFile(path, data, 0644))

	tag, err := ReadFile(path)
	require.NoError(t, err)
	assert.Len(t, tag.Frames, 4)

	_, err = ReadFile(filepath.Join(t.TempDir(), "missing.mp3"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestNoTag(t *testing.T) {
	assert := assert.New(t)

	_, err := Read(bytes.NewReader(nil))
	assert.ErrorIs(err, ErrNoTag)

	_, err = Read(bytes.NewReader([]byte("fLaC\x00\x00\x00\x22\x12\x00\x12\x00")))
	assert.ErrorIs(err, ErrNoTag)

	_, err = Read(bytes.NewReader([]byte{'I', 'D', '3', 2, 0, 0, 0, 0, 0, 0}))
	assert.ErrorIs(err, ErrUnsupportedVersion)
}

func TestTextEncodings(t *testing.T) {
	cases := []struct {
		name string
		body []byte
		want []string
	}{
		{"latin1", []byte{0, 'C', 'a', 'f', 0xE9}, []string{"Café"}},
		{"latin1 terminated", []byte{0, 'a', 'b', 0}, []string{"ab"}},
		{"utf16 bom", []byte{1, 0xFF, 0xFE, 'H', 0, 0xE9, 0, 0, 0}, []string{"Hé"}},
		{"utf16 big endian bom", []byte{1, 0xFE, 0xFF, 0, 'H', 0, 0xE9}, []string{"Hé"}},
		{"utf16be", []byte{2, 0, 'O', 0, 'K'}, []string{"OK"}},
		{"utf8", append([]byte{3}, "naïve 🎧"...), []string{"naïve 🎧"}},
		{"multiple values", append([]byte{3}, "Rock\x00Jazz\x00"...), []string{"Rock", "Jazz"}},
		{"empty", []byte{0}, nil},
	}
	for _, c := range cases {
		f, err := decodeText("TCON", c.body)
		require.NoError(t, err, c.name)
		assert.Equal(t, c.want, f.Values, c.name)
	}

	_, err := decodeText("TIT2", []byte{9, 'x'})
	assert.Error(t, err)
	_, err = decodeText("TIT2", nil)
	assert.Error(t, err)
}

func TestTextFrameJoin(t *testing.T) {
	f := &TextFrame{ID: "TPE1", Values: []string{"Alice", "Bob"}}
	assert.Equal(t, "Alice/Bob", f.Text())
	assert.Equal(t, "TPE1", f.FrameID())
}

func TestURLFrames(t *testing.T) {
	assert := assert.New(t)

	f, err := decodeFrame("WOAF", []byte("https://example.com/ep\x00"), 3)
	assert.NoError(err)
	assert.Equal(&URLFrame{ID: "WOAF", URL: "https://example.com/ep"}, f)

	// UTF-16 description, latin1 url
	body := []byte{1, 0xFF, 0xFE, 'd', 0, 0, 0}
	body = append(body, "https://a.test/"...)
	f, err = decodeFrame("WXXX", body, 4)
	assert.NoError(err)
	assert.Equal(&URLFrame{ID: "WXXX", Description: "d", URL: "https://a.test/"}, f)
}

func TestImageFrame(t *testing.T) {
	body := []byte{0}
	body = append(body, "image/png\x00"...)
	body = append(body, 3)
	body = append(body, "cover\x00"...)
	body = append(body, 0x89, 'P', 'N', 'G')

	f, err := decodeFrame("APIC", body, 3)
	require.NoError(t, err)
	img, ok := f.(*ImageFrame)
	require.True(t, ok)
	assert.Equal(t, "image/png", img.MIMEType)
	assert.Equal(t, byte(3), img.PictureType)
	assert.Equal(t, "cover", img.Description)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, img.Data)
}

func TestFrameFlags(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	// v2.4 frame with data length indicator and unsynchronised body
	body := append([]byte{0, 0, 0, 3}, 0, 'a', 0xFF, 0x00, 'b')
	data := tagBytes(4, 0,
		frameBytes(4, "TPE1", v24DataLengthPresent|v24Unsynchronised, body),
		frameBytes(4, "TALB", v24Compressed, []byte{1, 2, 3}),
		frameBytes(4, "PRIV", 0, []byte("owner\x00data")),
	)
	tag, err := Read(bytes.NewReader(data))
	require.NoError(err)
	require.Len(tag.Frames, 3)

	tf := tag.Frames[0].(*TextFrame)
	assert.Equal([]string{"aÿb"}, tf.Values)
	assert.Equal(&UnknownFrame{ID: "TALB", Data: []byte{1, 2, 3}}, tag.Frames[1])
	assert.Equal("PRIV", tag.Frames[2].FrameID())
}

func TestTagUnsynchronisation(t *testing.T) {
	// v2.3 applies unsynchronisation to the whole tag body
	frame := frameBytes(3, "TIT2", 0, []byte{0, 'x', 0xFF, 'y'})
	var escaped []byte
	for _, c := range frame {
		escaped = append(escaped, c)
		if c == 0xFF {
			escaped = append(escaped, 0x00)
		}
	}
	data := []byte{'I', 'D', '3', 3, 0, flagUnsynchronisation}
	data = append(data, syncsafeBytes(len(escaped))...)
	data = append(data, escaped...)

	tag, err := Read(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, "xÿy", tag.Text("TIT2"))
}

func TestExtendedHeader(t *testing.T) {
	frame := frameBytes(4, "TIT2", 0, textBody("ext"))
	ext := append(syncsafeBytes(6), 1, 0)
	body := append(ext, frame...)
	data := []byte{'I', 'D', '3', 4, 0, flagExtendedHeader}
	data = append(data, syncsafeBytes(len(body))...)
	data = append(data, body...)

	tag, err := Read(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, "ext", tag.Text("TIT2"))
}

func TestMalformed(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	// frame claims more data than the tag holds; reading stops there
	title := frameBytes(3, "TIT2", 0, textBody("ok"))
	frame := frameBytes(3, "TPE1", 0, textBody("abc"))
	frame[7] = 200
	tag, err := Read(bytes.NewReader(tagBytes(3, 0, title, frame)))
	require.NoError(err)
	require.Len(tag.Frames, 1)
	assert.Equal("ok", tag.Text("TIT2"))

	tag, err = Read(bytes.NewReader(tagBytes(3, 0, title, frameBytes(3, "ti!2", 0, textBody("x")))))
	require.NoError(err)
	assert.Len(tag.Frames, 1)

	_, err = decodeChapter([]byte("ch0\x00\x00\x01"), 3)
	assert.Error(err)

	_, err = decodeTOC(append([]byte("toc\x00"), 0x03, 2, 'a', 0), 3)
	assert.Error(err)

	// truncated body
	data := tagBytes(3, 0, frameBytes(3, "TIT2", 0, textBody("abc")))
	_, err = Read(bytes.NewReader(data[:len(data)-20]))
	assert.Error(err)
}

func TestReadKeepsUndecodableFrames(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	bad := append([]byte{9}, "Somebody"...)
	tag, err := Read(bytes.NewReader(tagBytes(4, 0,
		frameBytes(4, "TPE1", 0, bad),
		frameBytes(4, "CHAP", 0, []byte("ch9\x00\x00")),
		frameBytes(4, "CHAP", 0, chapBody(4, "ch0", 0, 1000,
			frameBytes(4, "TIT2", 0, textBody("Intro")),
			frameBytes(4, "TIT3", 0, bad))),
	)))
	require.NoError(err)
	require.Len(tag.Frames, 3)

	unk, ok := tag.Frames[0].(*UnknownFrame)
	require.True(ok)
	assert.Equal("TPE1", unk.ID)
	assert.Equal(bad, unk.Data)

	assert.IsType(&UnknownFrame{}, tag.Frames[1])

	ch, ok := tag.Frames[2].(*ChapterEntry)
	require.True(ok)
	assert.Equal("Intro", ch.Text("TIT2"))
	require.Len(ch.SubFrames, 2)
	assert.IsType(&UnknownFrame{}, ch.SubFrames[1])
}

func TestReadNonSyncsafeSizes(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	// v2.3 frame headers carry plain big-endian sizes, as some v2.4 writers emit
	long := strings.Repeat("a", 300)
	tag, err := Read(bytes.NewReader(tagBytes(4, 0,
		frameBytes(3, "TIT2", 0, textBody(long)),
		frameBytes(3, "CHAP", 0, chapBody(4, "ch0", 0, 1000,
			frameBytes(3, "TIT2", 0, textBody("Intro "+long)))),
	)))
	require.NoError(err)
	assert.Equal(byte(4), tag.Header.Version)
	require.Len(tag.Frames, 2)
	assert.Equal(long, tag.Text("TIT2"))

	ch, ok := tag.Frames[1].(*ChapterEntry)
	require.True(ok)
	assert.Equal("Intro "+long, ch.Text("TIT2"))

	// small sizes read the same either way
	tag, err = Read(bytes.NewReader(podcastTag(4)))
	require.NoError(err)
	assert.Len(tag.Frames, 4)
}

func TestSyncsafe(t *testing.T) {
	n, err := syncsafe([]byte{0x00, 0x00, 0x02, 0x01})
	assert.NoError(t, err)
	assert.Equal(t, 257, n)

	n, err = syncsafe(syncsafeBytes(0x0FFFFFFF))
	assert.NoError(t, err)
	assert.Equal(t, 0x0FFFFFFF, n)

	_, err = syncsafe([]byte{0x80, 0, 0, 0})
	assert.Error(t, err)
}

func TestTimestampFrames(t *testing.T) {
	assert := assert.New(t)

	f, err := decodeFrame("TDRL", append([]byte{3}, "2024-05-01T09:30"...), 4)
	assert.NoError(err)
	ts, ok := f.(*TimestampFrame)
	assert.True(ok)
	assert.Equal(time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC), ts.Time)
	assert.Equal("2024-05-01T09:30", ts.Raw)

	f, err = decodeFrame("TDRC", textBody("2023"), 4)
	assert.NoError(err)
	assert.Equal(2023, f.(*TimestampFrame).Time.Year())

	f, err = decodeFrame("TDRC", textBody("spring 2023"), 4)
	assert.NoError(err)
	assert.Equal(&TextFrame{ID: "TDRC", Values: []string{"spring 2023"}}, f)
}
