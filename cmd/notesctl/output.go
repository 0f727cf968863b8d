package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	notesBox "github.com/2beens/notesservice/internal/notes_box"

	"gopkg.in/yaml.v3"
)

type format string

const (
	formatTable format = "table"
	formatJSON  format = "json"
	formatYAML  format = "yaml"
)

func parseOutputFormat(s string) (format, error) {
	switch f := format(s); f {
	case formatTable, formatJSON, formatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format [%s], use table, json or yaml", s)
	}
}

// yamlNote keeps the json field names and date layout in yaml output.
type yamlNote struct {
	ID        int    `yaml:"id"`
	Content   string `yaml:"content"`
	Date      string `yaml:"date"`
	Important bool   `yaml:"important"`
}

func toYAMLNotes(notes []notesBox.Note) []yamlNote {
	out := make([]yamlNote, 0, len(notes))
	for _, n := range notes {
		out = append(out, yamlNote{
			ID:        n.ID,
			Content:   n.Content,
			Date:      n.Date.UTC().Format(notesBox.DateLayout),
			Important: n.Important,
		})
	}
	return out
}

func writeNotes(w io.Writer, f format, notes []notesBox.Note) error {
	if notes == nil {
		notes = []notesBox.Note{}
	}

	switch f {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(notes)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(toYAMLNotes(notes))
	default:
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tIMPORTANT\tDATE\tCONTENT")
		for _, n := range notes {
			important := ""
			if n.Important {
				important = "*"
			}
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", n.ID, important, n.Date.Format(time.RFC3339), n.Content)
		}
		return tw.Flush()
	}
}

func writeNote(w io.Writer, f format, note *notesBox.Note) error {
	switch f {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(note)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(toYAMLNotes([]notesBox.Note{*note})[0])
	default:
		return writeNotes(w, f, []notesBox.Note{*note})
	}
}
