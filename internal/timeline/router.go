package timeline

import (
	"fmt"

	"cloud.google.com/go/civil"
)

// Click is a raw interaction reported by the render adapter.
type Click struct {
	Row  RowID
	Date civil.Date
}

// IntentKind is the flow a click opens.
type IntentKind int

const (
	IntentNone IntentKind = iota
	IntentAddGroup
	IntentAddTrack
	IntentEditEntry
)

func (k IntentKind) String() string {
	switch k {
	case IntentAddGroup:
		return "add-group"
	case IntentAddTrack:
		return "add-track"
	case IntentEditEntry:
		return "edit-entry"
	}
	return "none"
}

// Intent is the decoded meaning of a click. For IntentEditEntry, Note holds
// the existing note and Exists reports whether there was one.
type Intent struct {
	Kind   IntentKind
	Group  string
	Track  Track
	Date   civil.Date
	Note   string
	Exists bool
}

// Response is what the user confirmed in the flow an intent opened.
type Response struct {
	Name   string // group or track name
	Note   string
	Delete bool
}

// Router maps clicks to command handlers. It keeps no state of its own
// beyond the store and the window of the current render.
type Router struct {
	state  *State
	window Window
}

func NewRouter(s *State, w Window) *Router {
	return &Router{state: s, window: w}
}

// SetWindow updates the window clicks are validated against.
func (r *Router) SetWindow(w Window) {
	r.window = w
}

// Resolve decodes a click by row identity, never by label.
func (r *Router) Resolve(c Click) Intent {
	switch c.Row.Kind {
	case RowNewGroup:
		return Intent{Kind: IntentAddGroup}
	case RowGroupHeader:
		if !r.state.HasGroup(c.Row.Group) {
			return Intent{}
		}
		return Intent{Kind: IntentAddTrack, Group: c.Row.Group}
	case RowTrack:
		if !r.window.Contains(c.Date) {
			return Intent{}
		}
		t, ok := r.state.Track(c.Row.TrackID)
		if !ok {
			return Intent{}
		}
		in := Intent{Kind: IntentEditEntry, Group: t.Group, Track: t, Date: c.Date}
		if e, ok := r.state.Entry(t.ID, c.Date); ok {
			in.Note = e.Note
			in.Exists = true
		}
		return in
	}
	return Intent{}
}

// Commit applies the confirmed response for in.
func (r *Router) Commit(in Intent, resp Response) error {
	switch in.Kind {
	case IntentAddGroup:
		return r.state.AddGroup(resp.Name)
	case IntentAddTrack:
		_, err := r.state.AddTrack(in.Group, resp.Name)
		return err
	case IntentEditEntry:
		if !r.window.Contains(in.Date) {
			return fmt.Errorf("date %s outside %s: %w", in.Date, r.window, ErrValidation)
		}
		if resp.Delete {
			return r.state.DeleteEntry(in.Track.ID, in.Date)
		}
		return r.state.UpsertEntry(in.Track.ID, in.Date, resp.Note)
	}
	return nil
}
