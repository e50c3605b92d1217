package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"cloud.google.com/go/civil"

	"github.com/sadopc/timeline/internal/timeline"
)

func (s *Store) GetSetting(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err != nil {
		return "", fmt.Errorf("get setting %q: %w", key, err)
	}
	return value, nil
}

func (s *Store) SetSetting(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	return err
}

func (s *Store) GetAllSettings() ([]Setting, error) {
	rows, err := s.db.Query(`SELECT key, value FROM settings ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	defer rows.Close()

	var settings []Setting
	for rows.Next() {
		var s Setting
		if err := rows.Scan(&s.Key, &s.Value); err != nil {
			return nil, err
		}
		settings = append(settings, s)
	}
	return settings, rows.Err()
}

// SaveSettings persists the view settings. A zero end date is stored as ""
// and means "today" on load. A nil visible list (all groups) removes the key.
func (s *Store) SaveSettings(set timeline.Settings) error {
	preset := set.Preset
	if preset == "" {
		preset = timeline.DefaultPreset
	}
	if err := s.SetSetting(KeyWindowPreset, string(preset)); err != nil {
		return fmt.Errorf("save preset: %w", err)
	}

	end := ""
	if !set.EndDate.IsZero() {
		end = set.EndDate.String()
	}
	if err := s.SetSetting(KeyEndDate, end); err != nil {
		return fmt.Errorf("save end date: %w", err)
	}

	if set.Visible == nil {
		_, err := s.db.Exec(`DELETE FROM settings WHERE key = ?`, KeyVisibleGroups)
		return err
	}
	data, err := json.Marshal(set.Visible)
	if err != nil {
		return fmt.Errorf("encode visible groups: %w", err)
	}
	return s.SetSetting(KeyVisibleGroups, string(data))
}

// LoadSettings reads the view settings written by SaveSettings. Unknown or
// unparsable values fall back to their defaults.
func (s *Store) LoadSettings() (timeline.Settings, error) {
	set := timeline.Settings{Preset: timeline.DefaultPreset}

	v, err := s.optionalSetting(KeyWindowPreset)
	if err != nil {
		return set, err
	}
	if p, perr := timeline.ParsePreset(v); perr == nil {
		set.Preset = p
	}

	v, err = s.optionalSetting(KeyEndDate)
	if err != nil {
		return set, err
	}
	if d, derr := civil.ParseDate(v); derr == nil {
		set.EndDate = d
	}

	v, err = s.optionalSetting(KeyVisibleGroups)
	if err != nil {
		return set, err
	}
	if v != "" {
		var visible []string
		if err := json.Unmarshal([]byte(v), &visible); err == nil {
			if visible == nil {
				visible = []string{}
			}
			set.Visible = visible
		}
	}
	return set, nil
}

func (s *Store) optionalSetting(key string) (string, error) {
	v, err := s.GetSetting(key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return v, err
}
