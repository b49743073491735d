// Package docstore is the remote document database the repositories sync
// against. Documents are schemaless field maps addressed by collection name
// and a store-assigned id.
package docstore

import (
	"context"
)

// Fields holds primitive values only: string, bool, int/int32/int64,
// float64, nil, []any and map[string]any. Numbers may come back from a
// backend with a different Go type than they were written with.
type Fields map[string]any

type Document struct {
	ID     string
	Fields Fields
}

type Store interface {
	// List returns every document of the collection in insertion order.
	List(ctx context.Context, collection string) ([]Document, error)

	// Add writes a new document and returns the id the store assigned to it.
	Add(ctx context.Context, collection string, fields Fields) (string, error)

	// Set replaces the whole document, creating it when missing.
	Set(ctx context.Context, collection, id string, fields Fields) error

	// Delete removes the document. Deleting a missing document succeeds.
	Delete(ctx context.Context, collection, id string) error

	Close(ctx context.Context) error
}

func (f Fields) Clone() Fields {
	if f == nil {
		return Fields{}
	}
	out := make(Fields, len(f))
	for k, v := range f {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return map[string]any(Fields(val).Clone())
	case Fields:
		return map[string]any(val.Clone())
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return v
	}
}
