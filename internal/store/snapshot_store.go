// Package store persists named tree snapshots in a Pebble database.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/lumipallolabs/walletmap/internal/model"
)

// ErrNotFound is returned when a snapshot does not exist
var ErrNotFound = errors.New("snapshot not found")

var namePattern = regexp.MustCompile(`^[A-Za-z0-9._-]{1,64}$`)

// ValidateName checks a snapshot name
func ValidateName(name string) error {
	if !namePattern.MatchString(name) {
		return fmt.Errorf("invalid snapshot name %q: use 1-64 of A-Z a-z 0-9 . _ -", name)
	}
	return nil
}

// Meta describes a stored snapshot
type Meta struct {
	Name      string    `json:"name"`
	UpdatedAt time.Time `json:"updatedAt"`
	Leaves    int       `json:"leaves"`
	Total     float64   `json:"total"`
}

// SnapshotStore handles snapshot storage operations
type SnapshotStore struct {
	db  *PebbleDB
	now func() time.Time
}

// NewSnapshotStore creates a new SnapshotStore
func NewSnapshotStore(db *PebbleDB) *SnapshotStore {
	return &SnapshotStore{db: db, now: time.Now}
}

// Save stores tree under name, replacing any previous snapshot
func (s *SnapshotStore) Save(name string, tree *model.Node) (Meta, error) {
	if err := ValidateName(name); err != nil {
		return Meta{}, err
	}
	if tree == nil {
		return Meta{}, errors.New("snapshot tree is empty")
	}

	data, err := json.Marshal(tree)
	if err != nil {
		return Meta{}, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	meta := Meta{
		Name:      name,
		UpdatedAt: s.now().UTC(),
		Leaves:    len(model.Leaves(tree)),
		Total:     tree.TotalValue(),
	}
	metaData, err := json.Marshal(meta)
	if err != nil {
		return Meta{}, fmt.Errorf("failed to encode snapshot meta: %w", err)
	}

	batch := s.db.NewBatch()
	defer batch.Close()
	if err := batch.Put(CFSnapshots, []byte(name), data); err != nil {
		return Meta{}, err
	}
	if err := batch.Put(CFMeta, []byte(name), metaData); err != nil {
		return Meta{}, err
	}
	if err := batch.Commit(); err != nil {
		return Meta{}, fmt.Errorf("failed to write snapshot %s: %w", name, err)
	}
	return meta, nil
}

// Get loads the snapshot stored under name
func (s *SnapshotStore) Get(name string) (*model.Node, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	data, err := s.db.Get(CFSnapshots, []byte(name))
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, ErrNotFound
	}

	var tree model.Node
	if err := json.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot %s: %w", name, err)
	}
	return &tree, nil
}

// List returns the metadata of every snapshot, ordered by name
func (s *SnapshotStore) List() ([]Meta, error) {
	iter, err := s.db.NewIterator(CFMeta)
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	metas := []Meta{}
	for ; iter.Valid(); iter.Next() {
		var meta Meta
		if err := json.Unmarshal(iter.Value(), &meta); err != nil {
			return nil, fmt.Errorf("failed to decode meta for %s: %w", iter.Key(), err)
		}
		metas = append(metas, meta)
	}
	return metas, nil
}

// Delete removes the snapshot stored under name
func (s *SnapshotStore) Delete(name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	data, err := s.db.Get(CFMeta, []byte(name))
	if err != nil {
		return err
	}
	if data == nil {
		return ErrNotFound
	}

	batch := s.db.NewBatch()
	defer batch.Close()
	if err := batch.Delete(CFSnapshots, []byte(name)); err != nil {
		return err
	}
	if err := batch.Delete(CFMeta, []byte(name)); err != nil {
		return err
	}
	return batch.Commit()
}
