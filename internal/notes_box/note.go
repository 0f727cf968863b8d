package notes_box

import (
	"encoding/json"
	"time"
)

// DateLayout is RFC 3339 in UTC with exactly three fraction digits,
// e.g. 2019-05-30T17:30:31.098Z.
const DateLayout = "2006-01-02T15:04:05.000Z07:00"

type Note struct {
	ID        int       `json:"id"`
	Content   string    `json:"content"`
	Date      time.Time `json:"date"`
	Important bool      `json:"important"`
}

func (n Note) MarshalJSON() ([]byte, error) {
	type noteJSON struct {
		ID        int    `json:"id"`
		Content   string `json:"content"`
		Date      string `json:"date"`
		Important bool   `json:"important"`
	}
	return json.Marshal(noteJSON{
		ID:        n.ID,
		Content:   n.Content,
		Date:      n.Date.UTC().Format(DateLayout),
		Important: n.Important,
	})
}

// SeedNotes returns the notes the collection starts with.
func SeedNotes() []Note {
	return []Note{
		{
			ID:        1,
			Content:   "HTML is easy",
			Date:      time.Date(2019, time.May, 30, 17, 30, 31, 98_000_000, time.UTC),
			Important: true,
		},
		{
			ID:        2,
			Content:   "Browser can execute only Javascript",
			Date:      time.Date(2019, time.May, 30, 18, 39, 34, 91_000_000, time.UTC),
			Important: false,
		},
		{
			ID:        3,
			Content:   "GET and POST are the most important methods of HTTP protocol",
			Date:      time.Date(2019, time.May, 30, 19, 20, 14, 298_000_000, time.UTC),
			Important: true,
		},
	}
}
