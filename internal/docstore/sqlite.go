package docstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// SQLiteStore keeps every collection in one documents table. Fields are
// persisted as protobuf Struct JSON, so numbers are read back as float64
// the same way a hosted document database hands them out.
type SQLiteStore struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewSQLiteStore(db *sql.DB, logger zerolog.Logger) *SQLiteStore {
	return &SQLiteStore{
		db:     db,
		logger: logger.With().Str("store", "sqlite").Logger(),
	}
}

func (s *SQLiteStore) List(ctx context.Context, collection string) ([]Document, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, fields FROM documents WHERE collection = ? ORDER BY seq`, collection)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", collection, err)
	}
	defer rows.Close()

	docs := []Document{}
	for rows.Next() {
		var id, raw string
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, fmt.Errorf("failed to scan %s document: %w", collection, err)
		}

		fields, err := unmarshalFields([]byte(raw))
		if err != nil {
			// one corrupt row must not hide the rest of the collection
			s.logger.Warn().Err(err).Str("collection", collection).Str("id", id).Msg("unreadable document fields")
			fields = Fields{}
		}
		docs = append(docs, Document{ID: id, Fields: fields})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate %s: %w", collection, err)
	}

	s.logger.Debug().Str("collection", collection).Int("count", len(docs)).Msg("listed documents")
	return docs, nil
}

func (s *SQLiteStore) Add(ctx context.Context, collection string, fields Fields) (string, error) {
	raw, err := marshalFields(fields)
	if err != nil {
		return "", err
	}

	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("failed to generate nanoid: %w", err)
	}

	now := time.Now().UTC()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO documents (collection, id, fields, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		collection, id, string(raw), now, now)
	if err != nil {
		return "", fmt.Errorf("failed to insert into %s: %w", collection, err)
	}

	s.logger.Debug().Str("collection", collection).Str("id", id).Msg("document added")
	return id, nil
}

func (s *SQLiteStore) Set(ctx context.Context, collection, id string, fields Fields) error {
	raw, err := marshalFields(fields)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	// the conflict branch keeps seq so a replaced document keeps its position
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO documents (collection, id, fields, created_at, updated_at) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (collection, id) DO UPDATE SET fields = excluded.fields, updated_at = excluded.updated_at`,
		collection, id, string(raw), now, now)
	if err != nil {
		return fmt.Errorf("failed to set %s/%s: %w", collection, id, err)
	}

	s.logger.Debug().Str("collection", collection).Str("id", id).Msg("document set")
	return nil
}

func (s *SQLiteStore) Delete(ctx context.Context, collection, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE collection = ? AND id = ?`, collection, id)
	if err != nil {
		return fmt.Errorf("failed to delete %s/%s: %w", collection, id, err)
	}

	affected, _ := res.RowsAffected()
	s.logger.Debug().Str("collection", collection).Str("id", id).Int64("affected", affected).Msg("document deleted")
	return nil
}

func (s *SQLiteStore) Close(ctx context.Context) error {
	return s.db.Close()
}

func marshalFields(fields Fields) ([]byte, error) {
	st, err := structpb.NewStruct(normalizeForStruct(fields))
	if err != nil {
		return nil, fmt.Errorf("unsupported field value: %w", err)
	}
	raw, err := protojson.Marshal(st)
	if err != nil {
		return nil, fmt.Errorf("failed to encode fields: %w", err)
	}
	return raw, nil
}

func unmarshalFields(raw []byte) (Fields, error) {
	var st structpb.Struct
	if err := protojson.Unmarshal(raw, &st); err != nil {
		return nil, fmt.Errorf("failed to decode fields: %w", err)
	}
	return Fields(st.AsMap()), nil
}

// structpb only understands map[string]any, so named map types are
// unwrapped first.
func normalizeForStruct(fields Fields) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		out[k] = normalizeValue(v)
	}
	return out
}

func normalizeValue(v any) any {
	switch val := v.(type) {
	case Fields:
		return normalizeForStruct(val)
	case map[string]any:
		return normalizeForStruct(Fields(val))
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = normalizeValue(item)
		}
		return out
	case []string:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = item
		}
		return out
	default:
		return v
	}
}
