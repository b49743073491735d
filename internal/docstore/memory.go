package docstore

import (
	"context"
	"fmt"
	"sync"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// MemoryStore is a process-local Store. Writes and reads copy the field
// maps so callers never share state with the store.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string][]Document
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: make(map[string][]Document)}
}

func (s *MemoryStore) List(ctx context.Context, collection string) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	docs := make([]Document, 0, len(s.collections[collection]))
	for _, d := range s.collections[collection] {
		docs = append(docs, Document{ID: d.ID, Fields: d.Fields.Clone()})
	}
	return docs, nil
}

func (s *MemoryStore) Add(ctx context.Context, collection string, fields Fields) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("failed to generate nanoid: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.collections[collection] = append(s.collections[collection], Document{ID: id, Fields: fields.Clone()})
	return id, nil
}

func (s *MemoryStore) Set(ctx context.Context, collection, id string, fields Fields) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	docs := s.collections[collection]
	for i := range docs {
		if docs[i].ID == id {
			docs[i].Fields = fields.Clone()
			return nil
		}
	}
	s.collections[collection] = append(docs, Document{ID: id, Fields: fields.Clone()})
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, collection, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	docs := s.collections[collection]
	for i := range docs {
		if docs[i].ID == id {
			s.collections[collection] = append(docs[:i:i], docs[i+1:]...)
			return nil
		}
	}
	return nil
}

func (s *MemoryStore) Close(ctx context.Context) error { return nil }
