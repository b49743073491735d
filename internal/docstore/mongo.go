package docstore

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore maps each document collection to a Mongo collection. Ids are
// ObjectID hex strings, which also gives insertion order on _id.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
	logger zerolog.Logger
}

func ConnectMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}
	return client, nil
}

func NewMongoStore(client *mongo.Client, database string, logger zerolog.Logger) *MongoStore {
	return &MongoStore{
		client: client,
		db:     client.Database(database),
		logger: logger.With().Str("store", "mongo").Str("database", database).Logger(),
	}
}

func (s *MongoStore) List(ctx context.Context, collection string) ([]Document, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := s.db.Collection(collection).Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", collection, err)
	}
	defer cursor.Close(ctx)

	docs := []Document{}
	for cursor.Next(ctx) {
		var raw bson.M
		if err := cursor.Decode(&raw); err != nil {
			s.logger.Warn().Err(err).Str("collection", collection).Msg("skipping undecodable document")
			continue
		}

		id := idString(raw["_id"])
		delete(raw, "_id")
		docs = append(docs, Document{ID: id, Fields: fromBSON(raw)})
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate %s: %w", collection, err)
	}

	s.logger.Debug().Str("collection", collection).Int("count", len(docs)).Msg("listed documents")
	return docs, nil
}

func (s *MongoStore) Add(ctx context.Context, collection string, fields Fields) (string, error) {
	oid := primitive.NewObjectID()
	doc := toBSON(fields)
	doc["_id"] = oid

	if _, err := s.db.Collection(collection).InsertOne(ctx, doc); err != nil {
		return "", fmt.Errorf("failed to insert into %s: %w", collection, err)
	}

	s.logger.Debug().Str("collection", collection).Str("id", oid.Hex()).Msg("document added")
	return oid.Hex(), nil
}

func (s *MongoStore) Set(ctx context.Context, collection, id string, fields Fields) error {
	filter := bson.M{"_id": idFilterValue(id)}
	opts := options.Replace().SetUpsert(true)

	if _, err := s.db.Collection(collection).ReplaceOne(ctx, filter, toBSON(fields), opts); err != nil {
		return fmt.Errorf("failed to set %s/%s: %w", collection, id, err)
	}

	s.logger.Debug().Str("collection", collection).Str("id", id).Msg("document set")
	return nil
}

func (s *MongoStore) Delete(ctx context.Context, collection, id string) error {
	res, err := s.db.Collection(collection).DeleteOne(ctx, bson.M{"_id": idFilterValue(id)})
	if err != nil {
		return fmt.Errorf("failed to delete %s/%s: %w", collection, id, err)
	}

	s.logger.Debug().Str("collection", collection).Str("id", id).Int64("affected", res.DeletedCount).Msg("document deleted")
	return nil
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// ids written by other clients may be plain strings
func idFilterValue(id string) any {
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		return oid
	}
	return id
}

func idString(v any) string {
	switch id := v.(type) {
	case primitive.ObjectID:
		return id.Hex()
	case string:
		return id
	default:
		return fmt.Sprint(id)
	}
}

func toBSON(fields Fields) bson.M {
	doc := bson.M{}
	for k, v := range fields {
		doc[k] = normalizeValue(v)
	}
	return doc
}

func fromBSON(doc bson.M) Fields {
	out := make(Fields, len(doc))
	for k, v := range doc {
		out[k] = fromBSONValue(v)
	}
	return out
}

func fromBSONValue(v any) any {
	switch val := v.(type) {
	case bson.M:
		return map[string]any(fromBSON(val))
	case bson.D:
		return map[string]any(fromBSON(val.Map()))
	case bson.A:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = fromBSONValue(item)
		}
		return out
	case primitive.DateTime:
		return val.Time().UTC().Format(time.RFC3339Nano)
	case primitive.ObjectID:
		return val.Hex()
	default:
		return v
	}
}
