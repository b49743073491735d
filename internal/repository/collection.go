package repository

import (
	"context"
	"slices"
	"sync"

	"pokeapp/internal/docstore"
	"pokeapp/internal/domain"
	"pokeapp/internal/schema"

	"github.com/rs/zerolog"
)

// CollectionRepository mirrors one document collection in memory. The
// mirror is only ever swapped as a whole, so readers always see a complete
// snapshot. Operations are not serialised against each other: when a load
// races a write, whichever completes last decides the mirror.
type CollectionRepository[T any] struct {
	store  docstore.Store
	schema schema.Schema[T]
	logger zerolog.Logger

	mu    sync.RWMutex
	items []domain.Entry[T]
}

func NewCollectionRepository[T any](store docstore.Store, s schema.Schema[T], logger zerolog.Logger) *CollectionRepository[T] {
	return &CollectionRepository[T]{
		store:  store,
		schema: s,
		logger: logger.With().Str("collection", s.Collection()).Logger(),
		items:  []domain.Entry[T]{},
	}
}

func (r *CollectionRepository[T]) Collection() string {
	return r.schema.Collection()
}

// Items returns a copy of the current mirror.
func (r *CollectionRepository[T]) Items() []domain.Entry[T] {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.items)
}

func (r *CollectionRepository[T]) Get(id string) (domain.Entry[T], bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if i := indexOf(r.items, id); i >= 0 {
		return r.items[i], true
	}
	return domain.Entry[T]{}, false
}

// Load replaces the mirror with the remote collection in server order.
func (r *CollectionRepository[T]) Load(ctx context.Context) ([]domain.Entry[T], error) {
	docs, err := r.store.List(ctx, r.Collection())
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to load collection")
		return nil, domain.NewTransportError("load "+r.Collection(), err)
	}

	loaded := make([]domain.Entry[T], 0, len(docs))
	seen := make(map[string]struct{}, len(docs))
	for _, doc := range docs {
		if _, dup := seen[doc.ID]; dup {
			r.logger.Warn().Str("id", doc.ID).Msg("duplicate document id, keeping first")
			continue
		}
		seen[doc.ID] = struct{}{}

		dec := r.schema.Decode(doc.Fields)
		if !dec.Clean() {
			for _, d := range dec.Defaulted {
				r.logger.Debug().Str("id", doc.ID).Str("field", d.Field).Str("reason", d.Reason).Msg("field defaulted")
			}
		}
		loaded = append(loaded, domain.Entry[T]{ID: doc.ID, Value: dec.Value})
	}

	r.mu.Lock()
	r.items = loaded
	r.mu.Unlock()

	r.logger.Debug().Int("count", len(loaded)).Msg("collection loaded")
	return slices.Clone(loaded), nil
}

// Create appends the value under the id the store assigns.
func (r *CollectionRepository[T]) Create(ctx context.Context, value T) (domain.Entry[T], error) {
	id, err := r.store.Add(ctx, r.Collection(), r.schema.Encode(value))
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to create document")
		return domain.Entry[T]{}, domain.NewTransportError("create in "+r.Collection(), err)
	}

	entry := domain.Entry[T]{ID: id, Value: value}

	r.mu.Lock()
	next := slices.Clone(r.items)
	if i := indexOf(next, id); i >= 0 {
		// a concurrent load already picked the new document up
		next[i] = entry
	} else {
		next = append(next, entry)
	}
	r.items = next
	r.mu.Unlock()

	r.logger.Debug().Str("id", id).Msg("document created")
	return entry, nil
}

// Update fully replaces the value stored under id. Ids missing from the
// mirror are rejected with a NotFoundError before anything is written.
func (r *CollectionRepository[T]) Update(ctx context.Context, id string, value T) (domain.Entry[T], error) {
	if _, ok := r.Get(id); !ok {
		return domain.Entry[T]{}, &domain.NotFoundError{Collection: r.Collection(), ID: id}
	}

	if err := r.store.Set(ctx, r.Collection(), id, r.schema.Encode(value)); err != nil {
		r.logger.Error().Err(err).Str("id", id).Msg("failed to update document")
		return domain.Entry[T]{}, domain.NewTransportError("update "+r.Collection()+"/"+id, err)
	}

	entry := domain.Entry[T]{ID: id, Value: value}

	r.mu.Lock()
	next := slices.Clone(r.items)
	if i := indexOf(next, id); i >= 0 {
		next[i] = entry
	}
	r.items = next
	r.mu.Unlock()

	r.logger.Debug().Str("id", id).Msg("document updated")
	return entry, nil
}

// Delete removes id remotely and then from the mirror. An id the mirror does
// not hold is a local no-op and never an error.
func (r *CollectionRepository[T]) Delete(ctx context.Context, id string) error {
	_, known := r.Get(id)

	if err := r.store.Delete(ctx, r.Collection(), id); err != nil {
		if !known {
			r.logger.Warn().Err(err).Str("id", id).Msg("remote delete of unknown id failed")
			return nil
		}
		r.logger.Error().Err(err).Str("id", id).Msg("failed to delete document")
		return domain.NewTransportError("delete "+r.Collection()+"/"+id, err)
	}

	r.mu.Lock()
	if i := indexOf(r.items, id); i >= 0 {
		next := make([]domain.Entry[T], 0, len(r.items)-1)
		next = append(next, r.items[:i]...)
		next = append(next, r.items[i+1:]...)
		r.items = next
	}
	r.mu.Unlock()

	r.logger.Debug().Str("id", id).Bool("known", known).Msg("document deleted")
	return nil
}

func (r *CollectionRepository[T]) LoadAsync(ctx context.Context) *Future[[]domain.Entry[T]] {
	return Go(ctx, r.Load)
}

func (r *CollectionRepository[T]) CreateAsync(ctx context.Context, value T) *Future[domain.Entry[T]] {
	return Go(ctx, func(ctx context.Context) (domain.Entry[T], error) {
		return r.Create(ctx, value)
	})
}

func (r *CollectionRepository[T]) UpdateAsync(ctx context.Context, id string, value T) *Future[domain.Entry[T]] {
	return Go(ctx, func(ctx context.Context) (domain.Entry[T], error) {
		return r.Update(ctx, id, value)
	})
}

func (r *CollectionRepository[T]) DeleteAsync(ctx context.Context, id string) *Future[struct{}] {
	return Go(ctx, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, r.Delete(ctx, id)
	})
}

func indexOf[T any](items []domain.Entry[T], id string) int {
	return slices.IndexFunc(items, func(e domain.Entry[T]) bool { return e.ID == id })
}
