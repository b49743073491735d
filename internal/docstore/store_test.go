package docstore_test

import (
	"context"
	"path/filepath"
	"testing"

	"pokeapp/internal/config"
	"pokeapp/internal/database"
	"pokeapp/internal/docstore"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type StoreSuite struct {
	suite.Suite
	newStore func(t *testing.T) docstore.Store
	store    docstore.Store
	ctx      context.Context
}

func (s *StoreSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = s.newStore(s.T())
}

func (s *StoreSuite) TearDownTest() {
	s.NoError(s.store.Close(s.ctx))
}

func (s *StoreSuite) TestAddAssignsDistinctIDs() {
	id1, err := s.store.Add(s.ctx, "entrenadores", docstore.Fields{"nombre": "Ash"})
	s.Require().NoError(err)
	id2, err := s.store.Add(s.ctx, "entrenadores", docstore.Fields{"nombre": "Misty"})
	s.Require().NoError(err)

	s.NotEmpty(id1)
	s.NotEqual(id1, id2)
}

func (s *StoreSuite) TestListKeepsInsertionOrder() {
	names := []string{"Ash", "Misty", "Brock"}
	for _, n := range names {
		_, err := s.store.Add(s.ctx, "entrenadores", docstore.Fields{"nombre": n})
		s.Require().NoError(err)
	}

	docs, err := s.store.List(s.ctx, "entrenadores")
	s.Require().NoError(err)
	s.Require().Len(docs, 3)
	for i, n := range names {
		s.Equal(n, docs[i].Fields["nombre"])
	}
}

func (s *StoreSuite) TestCollectionsAreIsolated() {
	_, err := s.store.Add(s.ctx, "entrenadores", docstore.Fields{"nombre": "Ash"})
	s.Require().NoError(err)

	docs, err := s.store.List(s.ctx, "batallas")
	s.Require().NoError(err)
	s.Empty(docs)
}

func (s *StoreSuite) TestSetReplacesInPlace() {
	first, err := s.store.Add(s.ctx, "batallas", docstore.Fields{"ganador": "Indefinido", "entrenador1": "Ash"})
	s.Require().NoError(err)
	_, err = s.store.Add(s.ctx, "batallas", docstore.Fields{"ganador": "Misty"})
	s.Require().NoError(err)

	err = s.store.Set(s.ctx, "batallas", first, docstore.Fields{"ganador": "Ash"})
	s.Require().NoError(err)

	docs, err := s.store.List(s.ctx, "batallas")
	s.Require().NoError(err)
	s.Require().Len(docs, 2)
	s.Equal(first, docs[0].ID)
	s.Equal("Ash", docs[0].Fields["ganador"])
	// replace, not merge
	s.NotContains(docs[0].Fields, "entrenador1")
}

func (s *StoreSuite) TestDeleteIsIdempotent() {
	id, err := s.store.Add(s.ctx, "entrenadores", docstore.Fields{"nombre": "Ash"})
	s.Require().NoError(err)

	s.Require().NoError(s.store.Delete(s.ctx, "entrenadores", id))
	s.Require().NoError(s.store.Delete(s.ctx, "entrenadores", id))

	docs, err := s.store.List(s.ctx, "entrenadores")
	s.Require().NoError(err)
	s.Empty(docs)
}

func (s *StoreSuite) TestNumbersSurviveRoundTrip() {
	_, err := s.store.Add(s.ctx, "entrenadores", docstore.Fields{"edad": int64(10)})
	s.Require().NoError(err)

	docs, err := s.store.List(s.ctx, "entrenadores")
	s.Require().NoError(err)
	s.Require().Len(docs, 1)
	s.EqualValues(10, docs[0].Fields["edad"])
}

func TestMemoryStore(t *testing.T) {
	suite.Run(t, &StoreSuite{newStore: func(t *testing.T) docstore.Store {
		return docstore.NewMemoryStore()
	}})
}

func TestSQLiteStore(t *testing.T) {
	suite.Run(t, &StoreSuite{newStore: func(t *testing.T) docstore.Store {
		cfg := &config.Config{DBPath: filepath.Join(t.TempDir(), "test.db")}
		db, err := database.New(cfg, zerolog.Nop())
		require.NoError(t, err)
		return docstore.NewSQLiteStore(db, zerolog.Nop())
	}})
}

func TestSQLiteStore_NumbersComeBackAsFloat(t *testing.T) {
	cfg := &config.Config{DBPath: filepath.Join(t.TempDir(), "test.db")}
	db, err := database.New(cfg, zerolog.Nop())
	require.NoError(t, err)
	store := docstore.NewSQLiteStore(db, zerolog.Nop())
	defer store.Close(context.Background())

	_, err = store.Add(context.Background(), "entrenadores", docstore.Fields{"edad": 10, "tipos": []string{"fire"}})
	require.NoError(t, err)

	docs, err := store.List(context.Background(), "entrenadores")
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, float64(10), docs[0].Fields["edad"])
	assert.Equal(t, []any{"fire"}, docs[0].Fields["tipos"])
}

func TestSQLiteStore_RejectsUnsupportedValues(t *testing.T) {
	cfg := &config.Config{DBPath: filepath.Join(t.TempDir(), "test.db")}
	db, err := database.New(cfg, zerolog.Nop())
	require.NoError(t, err)
	store := docstore.NewSQLiteStore(db, zerolog.Nop())
	defer store.Close(context.Background())

	_, err = store.Add(context.Background(), "entrenadores", docstore.Fields{"bad": struct{}{}})
	assert.Error(t, err)
}

func TestMemoryStore_CopiesFields(t *testing.T) {
	store := docstore.NewMemoryStore()
	fields := docstore.Fields{"nombre": "Ash"}

	_, err := store.Add(context.Background(), "entrenadores", fields)
	require.NoError(t, err)
	fields["nombre"] = "Gary"

	docs, err := store.List(context.Background(), "entrenadores")
	require.NoError(t, err)
	assert.Equal(t, "Ash", docs[0].Fields["nombre"])
}

func TestMemoryStore_CancelledContext(t *testing.T) {
	store := docstore.NewMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.List(ctx, "entrenadores")
	assert.ErrorIs(t, err, context.Canceled)
}
