package tui

import (
	"errors"
	"strings"

	"github.com/sadopc/timeline/internal/timeline"
)

// viewState represents the currently active view.
type viewState int

const (
	viewTimeline viewState = iota
	viewGroups
	viewActivity
	viewSettings
	viewEntries
)

var viewNames = []string{"Timeline", "Groups", "Activity", "Settings", "Entries"}

// --- Messages ---

// stateChangedMsg reports a mutation of the workspace that has not been saved.
type stateChangedMsg struct{}

// settingsChangedMsg reports a change to the view settings.
type settingsChangedMsg struct{}

type statusMsg struct {
	text    string
	isError bool
}

type exportDoneMsg struct {
	path string
}

type importDoneMsg struct {
	path string
}

type savedMsg struct{}

// --- Helpers ---

// errorText renders domain errors as short user-facing messages.
func errorText(err error) string {
	switch {
	case errors.Is(err, timeline.ErrDuplicateName):
		return "That name is already taken"
	case errors.Is(err, timeline.ErrHasDependents):
		return "Group still has tracks; delete or move them first"
	case errors.Is(err, timeline.ErrNotFound):
		return "It no longer exists"
	case errors.Is(err, timeline.ErrMalformedPayload):
		return "Import rejected: " + err.Error()
	case errors.Is(err, timeline.ErrValidation):
		return "Invalid input: " + err.Error()
	}
	return err.Error()
}

// truncate cuts s to w cells, marking the cut with an ellipsis.
func truncate(s string, w int) string {
	r := []rune(s)
	if w <= 0 {
		return ""
	}
	if len(r) <= w {
		return s + strings.Repeat(" ", w-len(r))
	}
	if w == 1 {
		return "…"
	}
	return string(r[:w-1]) + "…"
}

func clamp(v, lo, hi int) int {
	if v > hi {
		v = hi
	}
	if v < lo {
		v = lo
	}
	return v
}
