package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/JJKdiasdusen/StopAddiction-Beta/internal/models"

	"go.uber.org/zap"
)

// DefaultKey is the name under which the collection is persisted.
const DefaultKey = "stop_addiction_results"

var (
	// ErrNotFound is returned by a Backend when nothing is stored under a key.
	ErrNotFound = errors.New("key not found")
	// ErrPersistenceRead marks stored content that could not be read or parsed.
	ErrPersistenceRead = errors.New("persistence read failed")
	// ErrPersistenceWrite marks a collection that could not be written.
	ErrPersistenceWrite = errors.New("persistence write failed")
)

// Backend persists opaque blobs under string keys.
type Backend interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// ResponseStore keeps the submitted records as one JSON array under one key,
// most recent first. It holds no cached copy: every read goes to the backend.
type ResponseStore struct {
	log     *zap.Logger
	backend Backend
	key     string

	// mu serializes read-modify-write cycles within this process.
	mu sync.Mutex
}

// New creates a ResponseStore over backend.
func New(log *zap.Logger, backend Backend, key string) *ResponseStore {
	if key == "" {
		key = DefaultKey
	}
	return &ResponseStore{log: log, backend: backend, key: key}
}

// Key returns the persistence key.
func (s *ResponseStore) Key() string {
	return s.key
}

// Append inserts rec at the head of the collection and writes the whole
// collection back. Unparsable existing content is left untouched.
func (s *ResponseStore) Append(ctx context.Context, rec models.StoredRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPersistenceWrite, err)
	}

	rec.SurveyResponse = rec.SurveyResponse.Clone()
	records = append([]models.StoredRecord{rec}, records...)

	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("%w: encode collection: %w", ErrPersistenceWrite, err)
	}
	if err := s.backend.Save(ctx, s.key, data); err != nil {
		return fmt.Errorf("%w: %w", ErrPersistenceWrite, err)
	}
	return nil
}

// ListAll returns every record, most recent first. A missing or unreadable
// collection is reported as empty; read failures are only logged.
func (s *ResponseStore) ListAll(ctx context.Context) []models.StoredRecord {
	records, err := s.load(ctx)
	if err != nil {
		s.log.Error("Failed to read stored responses, treating as empty",
			zap.String("key", s.key),
			zap.Error(err),
		)
		return []models.StoredRecord{}
	}
	return records
}

// Clear removes the whole collection.
func (s *ResponseStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.backend.Delete(ctx, s.key); err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("%w: clear: %w", ErrPersistenceWrite, err)
	}
	return nil
}

// Close releases the backend.
func (s *ResponseStore) Close() error {
	return s.backend.Close()
}

func (s *ResponseStore) load(ctx context.Context) ([]models.StoredRecord, error) {
	data, err := s.backend.Load(ctx, s.key)
	if errors.Is(err, ErrNotFound) {
		return []models.StoredRecord{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistenceRead, err)
	}
	return decode(data)
}

func decode(data []byte) ([]models.StoredRecord, error) {
	var records []models.StoredRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: decode collection: %w", ErrPersistenceRead, err)
	}
	if records == nil {
		records = []models.StoredRecord{}
	}
	for i := range records {
		if records[i].Reasons == nil {
			records[i].Reasons = []string{}
		}
	}
	return records, nil
}
