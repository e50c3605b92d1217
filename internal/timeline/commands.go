package timeline

import (
	"fmt"
	"strings"

	"cloud.google.com/go/civil"
)

// cleanName trims name. A blank name is ErrValidation rather than
// ErrDuplicateName: it collides with nothing, it is simply not a name.
func cleanName(kind, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%s name is empty: %w", kind, ErrValidation)
	}
	return name, nil
}

// AddGroup appends a new group.
func (s *State) AddGroup(name string) error {
	name, err := cleanName("group", name)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.groupIndex(name) >= 0 {
		s.log.Debug("add group rejected", "group", name, "reason", "duplicate")
		return fmt.Errorf("add group %q: %w", name, ErrDuplicateName)
	}
	s.groups = append(s.groups, Group{Name: name})
	s.log.Info("group added", "group", name)
	return nil
}

// RenameGroup renames a group in place and moves every track with it.
func (s *State) RenameGroup(oldName, newName string) error {
	newName, err := cleanName("group", newName)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.groupIndex(oldName)
	if i < 0 {
		return fmt.Errorf("rename group %q: %w", oldName, ErrNotFound)
	}
	if newName == oldName {
		return nil
	}
	if s.groupIndex(newName) >= 0 {
		return fmt.Errorf("rename group %q to %q: %w", oldName, newName, ErrDuplicateName)
	}

	s.groups[i].Name = newName
	moved := 0
	for j := range s.tracks {
		if s.tracks[j].Group == oldName {
			s.tracks[j].Group = newName
			moved++
		}
	}
	if s.settings.Visible != nil {
		for j, v := range s.settings.Visible {
			if v == oldName {
				s.settings.Visible[j] = newName
			}
		}
	}
	s.log.Info("group renamed", "from", oldName, "to", newName, "tracks", moved)
	return nil
}

// DeleteGroup removes a group that no track references.
func (s *State) DeleteGroup(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.groupIndex(name)
	if i < 0 {
		return fmt.Errorf("delete group %q: %w", name, ErrNotFound)
	}
	if n := len(s.tracksInGroup(name)); n > 0 {
		s.log.Debug("delete group rejected", "group", name, "tracks", n)
		return fmt.Errorf("delete group %q (%d tracks): %w", name, n, ErrHasDependents)
	}
	s.groups = append(s.groups[:i:i], s.groups[i+1:]...)
	s.log.Info("group deleted", "group", name)
	return nil
}

// AddTrack creates a track in group. Names are unique within a group only.
func (s *State) AddTrack(group, name string) (Track, error) {
	name, err := cleanName("track", name)
	if err != nil {
		return Track{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.groupIndex(group) < 0 {
		return Track{}, fmt.Errorf("add track to group %q: %w", group, ErrNotFound)
	}
	if s.trackNameTaken(group, name, "") {
		return Track{}, fmt.Errorf("add track %q to group %q: %w", name, group, ErrDuplicateName)
	}
	id := s.newID()
	for s.trackIndex(id) >= 0 {
		id = s.newID()
	}
	t := Track{ID: id, Group: group, Name: name}
	s.tracks = append(s.tracks, t)
	s.log.Info("track added", "group", group, "track", name, "id", id)
	return t, nil
}

// RenameTrack changes a track's display name.
func (s *State) RenameTrack(id, name string) error {
	name, err := cleanName("track", name)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.trackIndex(id)
	if i < 0 {
		return fmt.Errorf("rename track %q: %w", id, ErrNotFound)
	}
	t := s.tracks[i]
	if t.Name == name {
		return nil
	}
	if s.trackNameTaken(t.Group, name, id) {
		return fmt.Errorf("rename track %q to %q: %w", t.Name, name, ErrDuplicateName)
	}
	s.tracks[i].Name = name
	s.log.Info("track renamed", "id", id, "from", t.Name, "to", name)
	return nil
}

// DeleteTrack removes a track together with its entries.
func (s *State) DeleteTrack(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.trackIndex(id)
	if i < 0 {
		return fmt.Errorf("delete track %q: %w", id, ErrNotFound)
	}
	s.tracks = append(s.tracks[:i:i], s.tracks[i+1:]...)

	kept := s.entries[:0:0]
	removed := 0
	for _, e := range s.entries {
		if e.TrackID == id {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	s.entries = kept
	s.log.Info("track deleted", "id", id, "entries", removed)
	return nil
}

func (s *State) trackNameTaken(group, name, exceptID string) bool {
	for _, t := range s.tracks {
		if t.Group == group && t.Name == name && t.ID != exceptID {
			return true
		}
	}
	return false
}

// UpsertEntry sets the note for (trackID, date), replacing any existing one.
func (s *State) UpsertEntry(trackID string, date civil.Date, note string) error {
	if !date.IsValid() {
		return fmt.Errorf("entry date %v: %w", date, ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.trackIndex(trackID) < 0 {
		return fmt.Errorf("upsert entry for track %q: %w", trackID, ErrNotFound)
	}
	if i := s.entryIndex(trackID, date); i >= 0 {
		s.entries[i].Note = note
		s.log.Debug("entry updated", "track", trackID, "date", date.String(), "note_len", len(note))
		return nil
	}
	s.entries = append(s.entries, Entry{TrackID: trackID, Date: date, Note: note})
	s.log.Debug("entry added", "track", trackID, "date", date.String(), "note_len", len(note))
	return nil
}

// DeleteEntry removes the entry for (trackID, date). A missing entry is
// ErrNotFound.
func (s *State) DeleteEntry(trackID string, date civil.Date) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.entryIndex(trackID, date)
	if i < 0 {
		return fmt.Errorf("delete entry %s on track %q: %w", date, trackID, ErrNotFound)
	}
	s.entries = append(s.entries[:i:i], s.entries[i+1:]...)
	s.log.Debug("entry deleted", "track", trackID, "date", date.String())
	return nil
}

// Export returns a copy of the whole state.
func (s *State) Export() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Groups:  append([]Group(nil), s.groups...),
		Tracks:  append([]Track(nil), s.tracks...),
		Entries: append([]Entry(nil), s.entries...),
	}
}

// Replace swaps in snap after validating it. On error nothing changes.
func (s *State) Replace(snap Snapshot) error {
	if err := snap.Validate(); err != nil {
		return err
	}
	snap = Snapshot{
		Groups:  append([]Group(nil), snap.Groups...),
		Tracks:  append([]Track(nil), snap.Tracks...),
		Entries: append([]Entry(nil), snap.Entries...),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.groups, s.tracks, s.entries = snap.Groups, snap.Tracks, snap.Entries
	if s.settings.Visible != nil {
		var kept []string
		for _, v := range s.settings.Visible {
			if s.groupIndex(v) >= 0 {
				kept = append(kept, v)
			}
		}
		s.settings.Visible = append([]string{}, kept...)
		// A filter that matches nothing after an import falls back to all.
		if len(kept) == 0 {
			s.settings.Visible = nil
		}
	}
	s.log.Info("state replaced", "groups", len(s.groups), "tracks", len(s.tracks), "entries", len(s.entries))
	return nil
}

// Validate checks names, references and key uniqueness.
func (snap Snapshot) Validate() error {
	groups := make(map[string]bool, len(snap.Groups))
	for _, g := range snap.Groups {
		if strings.TrimSpace(g.Name) == "" {
			return fmt.Errorf("empty group name: %w", ErrMalformedPayload)
		}
		if groups[g.Name] {
			return fmt.Errorf("group %q listed twice: %w", g.Name, ErrMalformedPayload)
		}
		groups[g.Name] = true
	}

	type trackKey struct{ group, name string }
	ids := make(map[string]bool, len(snap.Tracks))
	names := make(map[trackKey]bool, len(snap.Tracks))
	for _, t := range snap.Tracks {
		switch {
		case t.ID == "":
			return fmt.Errorf("track %q has no id: %w", t.Name, ErrMalformedPayload)
		case strings.TrimSpace(t.Name) == "":
			return fmt.Errorf("track %q has no name: %w", t.ID, ErrMalformedPayload)
		case ids[t.ID]:
			return fmt.Errorf("track id %q listed twice: %w", t.ID, ErrMalformedPayload)
		case !groups[t.Group]:
			return fmt.Errorf("track %q references unknown group %q: %w", t.Name, t.Group, ErrMalformedPayload)
		case names[trackKey{t.Group, t.Name}]:
			return fmt.Errorf("track %q listed twice in group %q: %w", t.Name, t.Group, ErrMalformedPayload)
		}
		ids[t.ID] = true
		names[trackKey{t.Group, t.Name}] = true
	}

	type entryKey struct {
		track string
		date  civil.Date
	}
	seen := make(map[entryKey]bool, len(snap.Entries))
	for _, e := range snap.Entries {
		if !ids[e.TrackID] {
			return fmt.Errorf("entry on %s references unknown track %q: %w", e.Date, e.TrackID, ErrMalformedPayload)
		}
		if !e.Date.IsValid() {
			return fmt.Errorf("entry on track %q has invalid date: %w", e.TrackID, ErrMalformedPayload)
		}
		k := entryKey{e.TrackID, e.Date}
		if seen[k] {
			return fmt.Errorf("entry %s on track %q listed twice: %w", e.Date, e.TrackID, ErrMalformedPayload)
		}
		seen[k] = true
	}
	return nil
}
