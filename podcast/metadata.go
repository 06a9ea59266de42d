// Package podcast extracts episode and chapter metadata from podcast audio
// files and formats episode announcements.
package podcast

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/mostlysecurity/chapterpost/podcast/id3"
)

type Chapter struct {
	ID    string
	Text  string
	URL   string
	Start time.Duration
	End   time.Duration
}

type chapterJSON struct {
	ID    string `json:"id"`
	Text  string `json:"text"`
	URL   string `json:"url,omitempty"`
	Start string `json:"start"`
	End   string `json:"end"`
}

func (c *Chapter) MarshalJSON() ([]byte, error) {
	return json.Marshal(chapterJSON{
		ID:    c.ID,
		Text:  c.Text,
		URL:   c.URL,
		Start: c.Start.String(),
		End:   c.End.String(),
	})
}

type Metadata struct {
	// Episode title from TIT2.
	Title string `json:"title"`
	// From TDRL, falling back to TDRC.
	Released *time.Time `json:"released,omitempty"`
	// Chapter element IDs in table of contents order.
	ChapterOrder []string            `json:"chapterOrder"`
	Chapters     map[string]*Chapter `json:"chapters"`
}

// Returns chapters in table of contents order, skipping IDs with no
// matching CHAP frame.
func (m *Metadata) Ordered() []*Chapter {
	out := make([]*Chapter, 0, len(m.ChapterOrder))
	for _, id := range m.ChapterOrder {
		if ch, ok := m.Chapters[id]; ok {
			out = append(out, ch)
		}
	}
	return out
}

// Chapters that carry a URL, in table of contents order.
func (m *Metadata) Linked() []*Chapter {
	var out []*Chapter
	for _, ch := range m.Ordered() {
		if ch.URL != "" {
			out = append(out, ch)
		}
	}
	return out
}

func ReadFile(path string) (*Metadata, error) {
	tag, err := id3.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return FromTag(tag), nil
}

// Builds metadata from a parsed tag. Chapter order comes from the top-level
// CTOC frame (or the first CTOC when none is marked top-level). Without a
// CTOC, chapters are ordered by start time.
func FromTag(tag *id3.Tag) *Metadata {
	m := &Metadata{
		Title:    tag.Text("TIT2"),
		Chapters: make(map[string]*Chapter),
	}

	var toc *id3.ChapterTOC
	for _, f := range tag.Frames {
		switch f := f.(type) {
		case *id3.TimestampFrame:
			if f.ID == "TDRL" || (f.ID == "TDRC" && m.Released == nil) {
				t := f.Time
				m.Released = &t
			}
		case *id3.ChapterEntry:
			m.Chapters[f.ElementID] = &Chapter{
				ID:    f.ElementID,
				Text:  f.Text("TIT2"),
				URL:   f.URL("WXXX"),
				Start: f.Start,
				End:   f.End,
			}
		case *id3.ChapterTOC:
			if toc == nil || (f.TopLevel && !toc.TopLevel) {
				toc = f
			}
		}
	}

	if toc != nil {
		m.ChapterOrder = append(m.ChapterOrder, toc.ChildIDs...)
		return m
	}

	for id := range m.Chapters {
		m.ChapterOrder = append(m.ChapterOrder, id)
	}
	sort.Slice(m.ChapterOrder, func(i, j int) bool {
		a, b := m.Chapters[m.ChapterOrder[i]], m.Chapters[m.ChapterOrder[j]]
		if a.Start != b.Start {
			return a.Start < b.Start
		}
		return a.ID < b.ID
	})
	return m
}
