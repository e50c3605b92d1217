package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"unicode/utf8"

	"github.com/sadopc/timeline/internal/timeline"
)

// ToCSV writes one row per entry, sorted by date then group and track.
// The CSV is a flat report and is not accepted by ReadDocument.
func ToCSV(snap timeline.Snapshot, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	// Header
	if err := w.Write([]string{"Date", "Group", "Track", "Track ID", "Note", "Note Length"}); err != nil {
		return err
	}

	tracks := make(map[string]timeline.Track, len(snap.Tracks))
	for _, t := range snap.Tracks {
		tracks[t.ID] = t
	}

	entries := append([]timeline.Entry(nil), snap.Entries...)
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.Date != b.Date {
			return a.Date.Before(b.Date)
		}
		ta, tb := tracks[a.TrackID], tracks[b.TrackID]
		if ta.Group != tb.Group {
			return ta.Group < tb.Group
		}
		return ta.Name < tb.Name
	})

	for _, e := range entries {
		t, ok := tracks[e.TrackID]
		if !ok {
			t = timeline.Track{ID: e.TrackID, Group: "Unknown", Name: "Unknown"}
		}
		row := []string{
			e.Date.String(),
			t.Group,
			t.Name,
			t.ID,
			e.Note,
			fmt.Sprintf("%d", utf8.RuneCountInString(e.Note)),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	return w.Error()
}
