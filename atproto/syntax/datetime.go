package syntax

import (
	"time"
)

// Layout for record timestamps: millisecond precision at most, trailing zeros dropped, literal "Z" zone.
const DatetimeLayout = "2006-01-02T15:04:05.999Z"

// A record timestamp string such as createdAt.
type Datetime string

// Formats t in UTC with [DatetimeLayout]. A "+00:00" offset is never produced.
func DatetimeFromTime(t time.Time) Datetime {
	return Datetime(t.UTC().Format(DatetimeLayout))
}

func (d Datetime) String() string {
	return string(d)
}
