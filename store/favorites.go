package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/kendall-kelly/technician-finder-api/models"
	"go.uber.org/zap"
)

// Favorites is a device's set of favorite technician ids
type Favorites struct {
	kv      KV
	catalog *LocalStore
	logger  *zap.Logger
}

// NewFavorites creates the favorite set stored next to catalog
func NewFavorites(kv KV, catalog *LocalStore, logger *zap.Logger) *Favorites {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Favorites{kv: kv, catalog: catalog, logger: logger}
}

// Toggle adds or removes id and returns whether it is a favorite afterwards
func (f *Favorites) Toggle(ctx context.Context, id string) (bool, error) {
	ids, err := f.load(ctx)
	if err != nil {
		var corrupt *CorruptDataError
		if !errors.As(err, &corrupt) {
			return false, fmt.Errorf("read favorites: %w", err)
		}
		f.logger.Warn("discarding corrupt favorites", zap.Error(err))
		ids = nil
	}

	next := make([]string, 0, len(ids)+1)
	removed := false
	for _, existing := range ids {
		if existing == id {
			removed = true
			continue
		}
		next = append(next, existing)
	}
	if !removed {
		next = append(next, id)
	}

	data, err := json.Marshal(next)
	if err != nil {
		return false, fmt.Errorf("encode favorites: %w", err)
	}
	if err := f.kv.Set(ctx, KeyFavorites, string(data)); err != nil {
		return false, fmt.Errorf("write favorites: %w", err)
	}
	return !removed, nil
}

// IsFavorite reports whether id is in the set. Read failures count as "no".
func (f *Favorites) IsFavorite(ctx context.Context, id string) bool {
	ids, err := f.load(ctx)
	if err != nil {
		f.logger.Warn("failed to read favorites", zap.Error(err))
		return false
	}
	for _, existing := range ids {
		if existing == id {
			return true
		}
	}
	return false
}

// List returns the favorite records in catalog order. Ids no longer in the
// catalog are skipped.
func (f *Favorites) List(ctx context.Context) []models.TechnicianRecord {
	ids, err := f.load(ctx)
	if err != nil {
		f.logger.Warn("failed to read favorites", zap.Error(err))
		return []models.TechnicianRecord{}
	}

	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}

	out := []models.TechnicianRecord{}
	for _, r := range f.catalog.GetAll(ctx) {
		if _, ok := set[r.ID]; ok {
			out = append(out, r)
		}
	}
	return out
}

func (f *Favorites) load(ctx context.Context) ([]string, error) {
	raw, err := f.kv.Get(ctx, KeyFavorites)
	if errors.Is(err, ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return nil, &CorruptDataError{Key: KeyFavorites, Err: err}
	}
	return ids, nil
}
