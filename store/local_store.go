// Package store persists a device's technician catalog and favorites in a key-value medium.
//
// A LocalStore assumes a single cooperative writer per device: there are no locks,
// and two concurrent mutations of the same catalog are last-writer-wins.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kendall-kelly/technician-finder-api/models"
	"go.uber.org/zap"
)

// Keys used in the KV namespace
const (
	KeyTechnicians = "technicians"
	KeyInitialized = "initialized"
	KeyFavorites   = "favorites"
)

// LocalStore is a device's technician catalog
type LocalStore struct {
	kv     KV
	logger *zap.Logger
	now    func() time.Time
}

// NewLocalStore creates a store over kv
func NewLocalStore(kv KV, logger *zap.Logger) *LocalStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LocalStore{kv: kv, logger: logger, now: time.Now}
}

// Initialize seeds the catalog on first run, and re-seeds it when the stored
// schema marker differs from CurrentSchemaVersion. Re-seeding discards edits.
// It reports whether seeding happened.
func (s *LocalStore) Initialize(ctx context.Context) (bool, error) {
	marker, err := s.kv.Get(ctx, KeyInitialized)
	switch {
	case err == nil && marker == CurrentSchemaVersion:
		return false, nil
	case err != nil && !errors.Is(err, ErrKeyNotFound):
		return false, fmt.Errorf("read schema marker: %w", err)
	}

	if err := s.writeAll(ctx, SeedTechnicians()); err != nil {
		return false, err
	}
	if err := s.kv.Set(ctx, KeyInitialized, CurrentSchemaVersion); err != nil {
		return false, fmt.Errorf("write schema marker: %w", err)
	}

	s.logger.Info("local catalog seeded",
		zap.String("previousVersion", marker),
		zap.String("version", CurrentSchemaVersion),
	)
	return true, nil
}

// GetAll returns the stored catalog. Missing, unreadable or corrupt data yields
// an empty list; the failure is logged, never returned.
func (s *LocalStore) GetAll(ctx context.Context) []models.TechnicianRecord {
	records, err := s.load(ctx)
	if err != nil {
		s.logger.Warn("failed to read local catalog", zap.Error(err))
		return []models.TechnicianRecord{}
	}
	return records
}

// Add appends a new record built from form, with a fresh id and zeroed counters
func (s *LocalStore) Add(ctx context.Context, form models.TechnicianForm) (models.TechnicianRecord, error) {
	records, err := s.loadForWrite(ctx)
	if err != nil {
		return models.TechnicianRecord{}, err
	}

	record := models.TechnicianRecord{ID: s.newID()}
	record.ApplyForm(form)
	records = append(records, record)

	if err := s.writeAll(ctx, records); err != nil {
		return models.TechnicianRecord{}, err
	}
	return record, nil
}

// Update overwrites the form fields of the record with the given id.
// It returns nil when no such record exists.
func (s *LocalStore) Update(ctx context.Context, id string, form models.TechnicianForm) (*models.TechnicianRecord, error) {
	records, err := s.loadForWrite(ctx)
	if err != nil {
		return nil, err
	}

	for i := range records {
		if records[i].ID != id {
			continue
		}
		records[i].ApplyForm(form)
		if err := s.writeAll(ctx, records); err != nil {
			return nil, err
		}
		updated := records[i]
		return &updated, nil
	}
	return nil, nil
}

// Delete removes the record with the given id. It returns false when no such record exists.
func (s *LocalStore) Delete(ctx context.Context, id string) (bool, error) {
	records, err := s.loadForWrite(ctx)
	if err != nil {
		return false, err
	}

	for i := range records {
		if records[i].ID != id {
			continue
		}
		remaining := append(records[:i:i], records[i+1:]...)
		if err := s.writeAll(ctx, remaining); err != nil {
			return false, err
		}
		return true, nil
	}
	return false, nil
}

// ResetToSeed replaces the catalog with the seed list. The schema marker is left as is.
func (s *LocalStore) ResetToSeed(ctx context.Context) error {
	return s.writeAll(ctx, SeedTechnicians())
}

// load reads and decodes the catalog. A missing key is an empty catalog.
func (s *LocalStore) load(ctx context.Context) ([]models.TechnicianRecord, error) {
	raw, err := s.kv.Get(ctx, KeyTechnicians)
	if errors.Is(err, ErrKeyNotFound) {
		return []models.TechnicianRecord{}, nil
	}
	if err != nil {
		return nil, err
	}

	var records []models.TechnicianRecord
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		return nil, &CorruptDataError{Key: KeyTechnicians, Err: err}
	}
	if records == nil {
		records = []models.TechnicianRecord{}
	}
	return records, nil
}

// loadForWrite is load for mutating paths: corrupt data is replaced, but a
// failing medium is reported so a write never clobbers data it could not read.
func (s *LocalStore) loadForWrite(ctx context.Context) ([]models.TechnicianRecord, error) {
	records, err := s.load(ctx)
	var corrupt *CorruptDataError
	if errors.As(err, &corrupt) {
		s.logger.Warn("discarding corrupt local catalog", zap.Error(err))
		return []models.TechnicianRecord{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read local catalog: %w", err)
	}
	return records, nil
}

func (s *LocalStore) writeAll(ctx context.Context, records []models.TechnicianRecord) error {
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode local catalog: %w", err)
	}
	if err := s.kv.Set(ctx, KeyTechnicians, string(data)); err != nil {
		return fmt.Errorf("write local catalog: %w", err)
	}
	return nil
}

// newID builds "<unix millis>-<8 hex chars>"
func (s *LocalStore) newID() string {
	return fmt.Sprintf("%d-%s", s.now().UnixMilli(), uuid.NewString()[:8])
}

// CorruptDataError reports a stored value that could not be decoded
type CorruptDataError struct {
	Key string
	Err error
}

func (e *CorruptDataError) Error() string {
	return fmt.Sprintf("corrupt data under %q: %v", e.Key, e.Err)
}

func (e *CorruptDataError) Unwrap() error {
	return e.Err
}
