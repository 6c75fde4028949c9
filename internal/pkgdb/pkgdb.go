// Package pkgdb persists the per-package install state under the install
// root. The unpack engine writes half-unpacked before extraction and
// unpacked after; an interrupted install is detectable from whichever state
// was last durably written.
package pkgdb

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/ralt/xpkg/internal/models"
	"github.com/ralt/xpkg/internal/utils"
)

// DBFile is the state database, relative to the install root.
const DBFile = "var/db/xpkg/pkgdb.json"

// Entry is one installed (or partially installed) package record.
type Entry struct {
	Name             string              `json:"name"`
	Version          string              `json:"version"`
	Pkgver           string              `json:"pkgver"`
	State            models.InstallState `json:"state"`
	Hold             bool                `json:"hold,omitempty"`
	AutomaticInstall bool                `json:"automatic-install,omitempty"`
}

// DB is the persisted install-state store for one install root. It is not
// safe for concurrent use; callers serialize access to a root themselves.
type DB struct {
	path    string
	entries map[string]*Entry
}

// Open loads the state database for an install root, starting empty when
// none exists yet.
func Open(root string) (*DB, error) {
	db := &DB{
		path:    filepath.Join(root, DBFile),
		entries: make(map[string]*Entry),
	}
	data, err := os.ReadFile(db.path)
	if err != nil {
		if os.IsNotExist(err) {
			return db, nil
		}
		return nil, err
	}
	var entries []*Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("corrupt package database %s: %w", db.path, err)
	}
	for _, e := range entries {
		db.entries[e.Name] = e
	}
	return db, nil
}

// Get returns the record for a package, or nil when it was never installed.
func (db *DB) Get(name string) *Entry {
	return db.entries[name]
}

// Entries returns all package records sorted by name.
func (db *DB) Entries() []*Entry {
	entries := make([]*Entry, 0, len(db.entries))
	for _, e := range db.entries {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries
}

// State returns the persisted install state for a package, defaulting to
// not-installed.
func (db *DB) State(name string) models.InstallState {
	if e := db.entries[name]; e != nil {
		return e.State
	}
	return models.StateNotInstalled
}

// SetState durably records the install state for a package, creating its
// record if needed. The write is atomic by replacement.
func (db *DB) SetState(name, version, pkgver string, state models.InstallState) error {
	if !state.Valid() {
		return fmt.Errorf("invalid install state %q for %s", state, name)
	}
	e := db.entries[name]
	if e == nil {
		e = &Entry{Name: name}
		db.entries[name] = e
	}
	e.Version = version
	e.Pkgver = pkgver
	e.State = state
	return db.save()
}

// Remove drops a package record and persists the database.
func (db *DB) Remove(name string) error {
	if _, ok := db.entries[name]; !ok {
		return nil
	}
	delete(db.entries, name)
	return db.save()
}

func (db *DB) save() error {
	entries := make([]*Entry, 0, len(db.entries))
	for _, e := range db.entries {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	return utils.ReplaceFile(db.path, data, 0644)
}
