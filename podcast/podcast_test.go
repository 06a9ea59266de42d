package podcast

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/mostlysecurity/chapterpost/podcast/id3"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chap(id, title, url string, start time.Duration) *id3.ChapterEntry {
	ch := &id3.ChapterEntry{
		ElementID: id,
		Start:     start,
		End:       start + time.Minute,
		SubFrames: []id3.Frame{&id3.TextFrame{ID: "TIT2", Values: []string{title}}},
	}
	if url != "" {
		ch.SubFrames = append(ch.SubFrames, &id3.URLFrame{ID: "WXXX", URL: url})
	}
	return ch
}

func TestFromTag(t *testing.T) {
	assert := assert.New(t)

	tag := &id3.Tag{Frames: []id3.Frame{
		&id3.TextFrame{ID: "TIT2", Values: []string{"42: Supply Chains"}},
		&id3.ChapterTOC{ElementID: "sub", ChildIDs: []string{"ch0"}},
		&id3.ChapterTOC{ElementID: "toc", TopLevel: true, Ordered: true, ChildIDs: []string{"ch2", "ch0", "ch1", "gone"}},
		chap("ch0", "Intro", "", 0),
		chap("ch1", "News", "https://example.com/news", time.Minute),
		chap("ch2", "Deep dive @bob.test", "https://example.com/deep", 2*time.Minute),
		&id3.UnknownFrame{ID: "PRIV"},
		&id3.TimestampFrame{ID: "TDRL", Time: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)},
		&id3.TimestampFrame{ID: "TDRC", Time: time.Date(2024, 4, 28, 0, 0, 0, 0, time.UTC)},
	}}

	m := FromTag(tag)
	assert.Equal("42: Supply Chains", m.Title)
	require.NotNil(t, m.Released)
	assert.Equal(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), *m.Released)
	assert.Equal([]string{"ch2", "ch0", "ch1", "gone"}, m.ChapterOrder)
	assert.Len(m.Chapters, 3)

	var ids []string
	for _, ch := range m.Ordered() {
		ids = append(ids, ch.ID)
	}
	assert.Equal([]string{"ch2", "ch0", "ch1"}, ids)

	linked := m.Linked()
	assert.Len(linked, 2)
	assert.Equal("Deep dive @bob.test", linked[0].Text)
	assert.Equal("https://example.com/deep", linked[0].URL)
	assert.Equal("https://example.com/news", linked[1].URL)
}

func TestFromTagWithoutTOC(t *testing.T) {
	tag := &id3.Tag{Frames: []id3.Frame{
		chap("b", "Second", "", time.Minute),
		chap("a", "First", "", 0),
		chap("c", "Also second", "", time.Minute),
	}}
	m := FromTag(tag)
	assert.Equal(t, "", m.Title)
	assert.Equal(t, []string{"a", "b", "c"}, m.ChapterOrder)
	assert.Empty(t, m.Linked())
}

func TestChapterJSON(t *testing.T) {
	m := &Metadata{
		Title:        "t",
		ChapterOrder: []string{"ch0"},
		Chapters: map[string]*Chapter{
			"ch0": {ID: "ch0", Text: "Intro", Start: 0, End: 90 * time.Second},
		},
	}
	b, err := json.Marshal(m)
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"t","chapterOrder":["ch0"],"chapters":{"ch0":{"id":"ch0","text":"Intro","start":"0s","end":"1m30s"}}}`, string(b))
}

func TestEpisodeTitle(t *testing.T) {
	cases := []struct {
		title   string
		episode int
		want    string
		err     error
	}{
		{"Supply Chains", 42, "Episode 42: Supply Chains", nil},
		{"Episode 42: Supply Chains", 42, "Episode 42: Supply Chains", nil},
		{"42: Supply Chains", 42, "Episode 42: Supply Chains", nil},
		{"7:Tight", 7, "Episode 7: Tight", nil},
		{"  padded  ", 3, "Episode 3: padded", nil},
		// a different episode number is just part of the title
		{"41: Old", 42, "Episode 42: 41: Old", nil},
		{"Episode 4: Wrong", 42, "Episode 42: Episode 4: Wrong", nil},
		{"", 42, "", ErrMissingTitle},
		{"   ", 42, "", ErrMissingTitle},
		{"Supply Chains", 0, "", ErrMissingEpisode},
		{"Supply Chains", -1, "", ErrMissingEpisode},
	}
	for _, c := range cases {
		got, err := EpisodeTitle(c.title, c.episode)
		if c.err != nil {
			assert.ErrorIs(t, err, c.err, c.title)
			continue
		}
		assert.NoError(t, err, c.title)
		assert.Equal(t, c.want, got, c.title)
	}
}
