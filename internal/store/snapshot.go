package store

import (
	"fmt"

	"cloud.google.com/go/civil"

	"github.com/sadopc/timeline/internal/timeline"
)

// SaveSnapshot replaces the stored workspace with snap in one transaction.
func (s *Store) SaveSnapshot(snap timeline.Snapshot) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range []string{`DELETE FROM entries`, `DELETE FROM tracks`, `DELETE FROM track_groups`} {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("clear workspace: %w", err)
		}
	}

	for i, g := range snap.Groups {
		if _, err := tx.Exec(`INSERT INTO track_groups (name, position) VALUES (?, ?)`, g.Name, i); err != nil {
			return fmt.Errorf("insert group %q: %w", g.Name, err)
		}
	}
	for i, t := range snap.Tracks {
		_, err := tx.Exec(
			`INSERT INTO tracks (id, group_name, name, position) VALUES (?, ?, ?, ?)`,
			t.ID, t.Group, t.Name, i,
		)
		if err != nil {
			return fmt.Errorf("insert track %q: %w", t.Name, err)
		}
	}
	for _, e := range snap.Entries {
		_, err := tx.Exec(
			`INSERT INTO entries (track_id, date, note) VALUES (?, ?, ?)`,
			e.TrackID, e.Date.String(), e.Note,
		)
		if err != nil {
			return fmt.Errorf("insert entry %s/%s: %w", e.TrackID, e.Date, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}
	return nil
}

// LoadSnapshot reads the stored workspace. An empty database yields an empty
// snapshot.
func (s *Store) LoadSnapshot() (timeline.Snapshot, error) {
	var snap timeline.Snapshot

	rows, err := s.db.Query(`SELECT name FROM track_groups ORDER BY position, name`)
	if err != nil {
		return snap, fmt.Errorf("list groups: %w", err)
	}
	for rows.Next() {
		var g timeline.Group
		if err := rows.Scan(&g.Name); err != nil {
			rows.Close()
			return snap, err
		}
		snap.Groups = append(snap.Groups, g)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return snap, err
	}

	rows, err = s.db.Query(`SELECT id, group_name, name FROM tracks ORDER BY position, id`)
	if err != nil {
		return snap, fmt.Errorf("list tracks: %w", err)
	}
	for rows.Next() {
		var t timeline.Track
		if err := rows.Scan(&t.ID, &t.Group, &t.Name); err != nil {
			rows.Close()
			return snap, err
		}
		snap.Tracks = append(snap.Tracks, t)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return snap, err
	}

	rows, err = s.db.Query(`SELECT track_id, date, note FROM entries ORDER BY date, track_id`)
	if err != nil {
		return snap, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var e timeline.Entry
		var date string
		if err := rows.Scan(&e.TrackID, &date, &e.Note); err != nil {
			return snap, err
		}
		e.Date, err = civil.ParseDate(date)
		if err != nil {
			return snap, fmt.Errorf("entry %s: bad date %q: %w", e.TrackID, date, err)
		}
		snap.Entries = append(snap.Entries, e)
	}
	return snap, rows.Err()
}

// Counts returns the number of stored groups, tracks and entries.
func (s *Store) Counts() (groups, tracks, entries int, err error) {
	err = s.db.QueryRow(
		`SELECT (SELECT COUNT(*) FROM track_groups), (SELECT COUNT(*) FROM tracks), (SELECT COUNT(*) FROM entries)`,
	).Scan(&groups, &tracks, &entries)
	if err != nil {
		err = fmt.Errorf("count workspace: %w", err)
	}
	return
}
