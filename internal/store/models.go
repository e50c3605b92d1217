package store

type Setting struct {
	Key   string
	Value string
}

// Setting keys persisted alongside the workspace.
const (
	KeyWindowPreset  = "window_preset"
	KeyEndDate       = "end_date"
	KeyVisibleGroups = "visible_groups"
)
