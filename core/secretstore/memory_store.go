package secretstore

import (
	"context"
	"sync"
	"time"
)

// Compile-time check that MemoryStore implements Store.
var _ Store = (*MemoryStore)(nil)

type memoryRecord struct {
	value            string
	createdAt        time.Time
	versionCreatedAt time.Time
}

// MemoryStore is an in-process Store for tests and dry runs.
type MemoryStore struct {
	mu      sync.RWMutex
	secrets map[string]memoryRecord
	now     func() time.Time
}

// MemoryOption configures a MemoryStore.
type MemoryOption func(*MemoryStore)

// WithClock overrides the time source used to stamp writes.
func WithClock(now func() time.Time) MemoryOption {
	return func(s *MemoryStore) {
		if now != nil {
			s.now = now
		}
	}
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		secrets: make(map[string]memoryRecord),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Seed stores a secret with explicit timestamps, bypassing the clock.
func (s *MemoryStore) Seed(name, value string, versionCreatedAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.secrets[name] = memoryRecord{
		value:            value,
		createdAt:        versionCreatedAt,
		versionCreatedAt: versionCreatedAt,
	}
}

func (s *MemoryStore) GetMetadata(ctx context.Context, name string) (*Metadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.secrets[name]
	if !ok {
		return nil, ErrNotFound
	}
	return &Metadata{
		Name:             name,
		CreatedAt:        rec.createdAt,
		VersionCreatedAt: rec.versionCreatedAt,
	}, nil
}

func (s *MemoryStore) GetValue(ctx context.Context, name string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.secrets[name]
	if !ok {
		return "", ErrNotFound
	}
	return rec.value, nil
}

func (s *MemoryStore) Create(ctx context.Context, name, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if name == "" {
		return ErrInvalidName
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.secrets[name]; ok {
		return ErrAlreadyExists
	}
	now := s.now()
	s.secrets[name] = memoryRecord{value: value, createdAt: now, versionCreatedAt: now}
	return nil
}

func (s *MemoryStore) Update(ctx context.Context, name, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.secrets[name]
	if !ok {
		return ErrNotFound
	}
	rec.value = value
	rec.versionCreatedAt = s.now()
	s.secrets[name] = rec
	return nil
}

// Len returns the number of stored secrets.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.secrets)
}
