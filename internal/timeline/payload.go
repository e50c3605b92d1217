package timeline

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"cloud.google.com/go/civil"
)

// Payload is the canonical export document.
type Payload struct {
	Groups  []string       `json:"groups" yaml:"groups"`
	Tracks  []PayloadTrack `json:"tracks" yaml:"tracks"`
	Entries []PayloadEntry `json:"entries" yaml:"entries"`
}

type PayloadTrack struct {
	ID    string `json:"id" yaml:"id"`
	Group string `json:"group" yaml:"group"`
	Name  string `json:"name" yaml:"name"`
}

type PayloadEntry struct {
	Date    string `json:"date" yaml:"date"`
	TrackID string `json:"track_id" yaml:"track_id"`
	Note    string `json:"note" yaml:"note"`
}

// ExportPayload serialises the state into the canonical document. Entries
// are ordered by date, then track id.
func (s *State) ExportPayload() Payload {
	return payloadOf(s.Export())
}

func payloadOf(snap Snapshot) Payload {
	p := Payload{
		Groups:  make([]string, 0, len(snap.Groups)),
		Tracks:  make([]PayloadTrack, 0, len(snap.Tracks)),
		Entries: make([]PayloadEntry, 0, len(snap.Entries)),
	}
	for _, g := range snap.Groups {
		p.Groups = append(p.Groups, g.Name)
	}
	for _, t := range snap.Tracks {
		p.Tracks = append(p.Tracks, PayloadTrack{ID: t.ID, Group: t.Group, Name: t.Name})
	}
	entries := append([]Entry(nil), snap.Entries...)
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Date != entries[j].Date {
			return entries[i].Date.Before(entries[j].Date)
		}
		return entries[i].TrackID < entries[j].TrackID
	})
	for _, e := range entries {
		p.Entries = append(p.Entries, PayloadEntry{Date: e.Date.String(), TrackID: e.TrackID, Note: e.Note})
	}
	return p
}

// ImportDocument replaces the state with a decoded JSON or YAML document.
// Either the whole document applies or nothing does.
func (s *State) ImportDocument(doc map[string]any) error {
	snap, err := NormalizeDocument(doc, s.newID)
	if err != nil {
		s.log.Warn("import rejected", "error", err)
		return err
	}
	return s.Replace(snap)
}

// NormalizeDocument converts a generic decoded document into a snapshot.
// It accepts the canonical shape as well as the legacy one, where
// "projects" maps a project name to its group and entries carry
// "project", "group" and "percent". Legacy projects get fresh ids from
// newID; percent is dropped because sizing follows the note.
func NormalizeDocument(doc map[string]any, newID func() string) (Snapshot, error) {
	if doc == nil {
		return Snapshot{}, fmt.Errorf("empty document: %w", ErrMalformedPayload)
	}
	var snap Snapshot

	groups, err := listField(doc, "groups")
	if err != nil {
		return Snapshot{}, err
	}
	for i, g := range groups {
		name, ok := g.(string)
		if !ok {
			return Snapshot{}, malformed("groups[%d] is %T, want string", i, g)
		}
		snap.Groups = append(snap.Groups, Group{Name: strings.TrimSpace(name)})
	}

	rawTracks, hasTracks := doc["tracks"]
	if !hasTracks {
		rawTracks, hasTracks = doc["projects"]
	}
	if hasTracks && rawTracks != nil {
		switch v := rawTracks.(type) {
		case []any:
			for i, item := range v {
				m, ok := item.(map[string]any)
				if !ok {
					return Snapshot{}, malformed("tracks[%d] is %T, want mapping", i, item)
				}
				t, err := decodeTrack(i, m)
				if err != nil {
					return Snapshot{}, err
				}
				snap.Tracks = append(snap.Tracks, t)
			}
		case map[string]any:
			names := make([]string, 0, len(v))
			for name := range v {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				group, ok := v[name].(string)
				if !ok {
					return Snapshot{}, malformed("project %q maps to %T, want group name", name, v[name])
				}
				snap.Tracks = append(snap.Tracks, Track{
					ID:    newID(),
					Group: strings.TrimSpace(group),
					Name:  strings.TrimSpace(name),
				})
			}
		default:
			return Snapshot{}, malformed("tracks is %T, want list or mapping", rawTracks)
		}
	}

	entries, err := listField(doc, "entries")
	if err != nil {
		return Snapshot{}, err
	}
	// Later duplicates of the same (track, date) win, as repeated upserts would.
	pos := make(map[Entry]int)
	for i, item := range entries {
		m, ok := item.(map[string]any)
		if !ok {
			return Snapshot{}, malformed("entries[%d] is %T, want mapping", i, item)
		}
		e, err := decodeEntry(i, m, snap.Tracks)
		if err != nil {
			return Snapshot{}, err
		}
		key := Entry{TrackID: e.TrackID, Date: e.Date}
		if j, dup := pos[key]; dup {
			snap.Entries[j].Note = e.Note
			continue
		}
		pos[key] = len(snap.Entries)
		snap.Entries = append(snap.Entries, e)
	}

	if err := snap.Validate(); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

func malformed(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrMalformedPayload)...)
}

func listField(doc map[string]any, key string) ([]any, error) {
	v, ok := doc[key]
	if !ok || v == nil {
		return nil, nil
	}
	list, ok := v.([]any)
	if !ok {
		return nil, malformed("%s is %T, want list", key, v)
	}
	return list, nil
}

func stringField(m map[string]any, key string) (string, bool, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return "", false, nil
	}
	s, ok := v.(string)
	if !ok {
		return "", true, malformed("%s is %T, want string", key, v)
	}
	return s, true, nil
}

func decodeTrack(i int, m map[string]any) (Track, error) {
	var t Track
	var err error
	if t.ID, _, err = stringField(m, "id"); err != nil {
		return Track{}, fmt.Errorf("tracks[%d]: %w", i, err)
	}
	if t.Group, _, err = stringField(m, "group"); err != nil {
		return Track{}, fmt.Errorf("tracks[%d]: %w", i, err)
	}
	if t.Name, _, err = stringField(m, "name"); err != nil {
		return Track{}, fmt.Errorf("tracks[%d]: %w", i, err)
	}
	t.Group = strings.TrimSpace(t.Group)
	t.Name = strings.TrimSpace(t.Name)
	return t, nil
}

func decodeEntry(i int, m map[string]any, tracks []Track) (Entry, error) {
	var e Entry

	switch d := m["date"].(type) {
	case string:
		date, err := civil.ParseDate(strings.TrimSpace(d))
		if err != nil {
			return Entry{}, malformed("entries[%d] date %q", i, d)
		}
		e.Date = date
	case time.Time:
		e.Date = civil.DateOf(d)
	default:
		return Entry{}, malformed("entries[%d] date is %T, want YYYY-MM-DD", i, m["date"])
	}

	note, _, err := stringField(m, "note")
	if err != nil {
		return Entry{}, fmt.Errorf("entries[%d]: %w", i, err)
	}
	e.Note = note

	if p, ok := m["percent"]; ok && p != nil {
		switch p.(type) {
		case int, int64, float64, uint64:
		default:
			return Entry{}, malformed("entries[%d] percent is %T, want number", i, p)
		}
	}

	id, hasID, err := stringField(m, "track_id")
	if err != nil {
		return Entry{}, fmt.Errorf("entries[%d]: %w", i, err)
	}
	if hasID {
		e.TrackID = id
		return e, nil
	}

	project, hasProject, err := stringField(m, "project")
	if err != nil {
		return Entry{}, fmt.Errorf("entries[%d]: %w", i, err)
	}
	if !hasProject {
		return Entry{}, malformed("entries[%d] has neither track_id nor project", i)
	}
	group, hasGroup, err := stringField(m, "group")
	if err != nil {
		return Entry{}, fmt.Errorf("entries[%d]: %w", i, err)
	}
	project = strings.TrimSpace(project)
	group = strings.TrimSpace(group)

	// The project name decides. Legacy entries keep the group the project
	// had when they were written, so the group only breaks ties between
	// same-named tracks.
	var match []Track
	for _, t := range tracks {
		if t.Name == project {
			match = append(match, t)
		}
	}
	if len(match) > 1 && hasGroup && group != "" {
		var inGroup []Track
		for _, t := range match {
			if t.Group == group {
				inGroup = append(inGroup, t)
			}
		}
		if len(inGroup) > 0 {
			match = inGroup
		}
	}
	switch len(match) {
	case 0:
		return Entry{}, malformed("entries[%d] references unknown project %q", i, project)
	case 1:
		e.TrackID = match[0].ID
		return e, nil
	default:
		return Entry{}, malformed("entries[%d] project %q is ambiguous", i, project)
	}
}
