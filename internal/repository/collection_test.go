package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"pokeapp/internal/docstore"
	"pokeapp/internal/domain"
	"pokeapp/internal/schema"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) List(ctx context.Context, collection string) ([]docstore.Document, error) {
	args := m.Called(ctx, collection)
	docs, _ := args.Get(0).([]docstore.Document)
	return docs, args.Error(1)
}

func (m *mockStore) Add(ctx context.Context, collection string, fields docstore.Fields) (string, error) {
	args := m.Called(ctx, collection, fields)
	return args.String(0), args.Error(1)
}

func (m *mockStore) Set(ctx context.Context, collection, id string, fields docstore.Fields) error {
	return m.Called(ctx, collection, id, fields).Error(0)
}

func (m *mockStore) Delete(ctx context.Context, collection, id string) error {
	return m.Called(ctx, collection, id).Error(0)
}

func (m *mockStore) Close(ctx context.Context) error { return nil }

var errStoreDown = errors.New("store unreachable")

type TrainerRepositorySuite struct {
	suite.Suite
	ctx   context.Context
	store *docstore.MemoryStore
	repo  *CollectionRepository[domain.Trainer]
}

func (s *TrainerRepositorySuite) SetupTest() {
	s.ctx = context.Background()
	s.store = docstore.NewMemoryStore()
	s.repo = NewCollectionRepository[domain.Trainer](s.store, schema.TrainerSchema{}, zerolog.Nop())
}

func (s *TrainerRepositorySuite) TestCreateThenDelete() {
	ash := domain.Trainer{Name: "Ash", Age: 10, Region: "Kanto"}

	entry, err := s.repo.Create(s.ctx, ash)
	s.Require().NoError(err)
	s.NotEmpty(entry.ID)
	s.Equal([]domain.Entry[domain.Trainer]{{ID: entry.ID, Value: ash}}, s.repo.Items())

	s.Require().NoError(s.repo.Delete(s.ctx, entry.ID))
	s.Empty(s.repo.Items())

	docs, err := s.store.List(s.ctx, "entrenadores")
	s.Require().NoError(err)
	s.Empty(docs)
}

func (s *TrainerRepositorySuite) TestCreateAppends() {
	names := []string{"Ash", "Misty", "Brock"}
	for _, n := range names {
		_, err := s.repo.Create(s.ctx, domain.Trainer{Name: n})
		s.Require().NoError(err)
	}

	items := s.repo.Items()
	s.Require().Len(items, 3)
	for i, n := range names {
		s.Equal(n, items[i].Value.Name)
	}
}

func (s *TrainerRepositorySuite) TestUpdateReplacesInPlace() {
	a, _ := s.repo.Create(s.ctx, domain.Trainer{Name: "Ash", Age: 10, Region: "Kanto"})
	b, _ := s.repo.Create(s.ctx, domain.Trainer{Name: "Misty", Age: 12, Region: "Kanto"})
	c, _ := s.repo.Create(s.ctx, domain.Trainer{Name: "Brock", Age: 15, Region: "Kanto"})

	updated := domain.Trainer{Name: "Misty", Age: 13, Region: "Johto"}
	_, err := s.repo.Update(s.ctx, b.ID, updated)
	s.Require().NoError(err)

	items := s.repo.Items()
	s.Require().Len(items, 3)
	s.Equal(a, items[0])
	s.Equal(domain.Entry[domain.Trainer]{ID: b.ID, Value: updated}, items[1])
	s.Equal(c, items[2])

	// the store holds the full replacement too
	reloaded, err := s.repo.Load(s.ctx)
	s.Require().NoError(err)
	s.Equal(items, reloaded)
}

func (s *TrainerRepositorySuite) TestUpdateUnknownIDIsNotFound() {
	_, err := s.repo.Create(s.ctx, domain.Trainer{Name: "Ash"})
	s.Require().NoError(err)
	before := s.repo.Items()

	_, err = s.repo.Update(s.ctx, "missing", domain.Trainer{Name: "Gary"})
	s.ErrorIs(err, domain.ErrNotFound)
	var nf *domain.NotFoundError
	s.Require().ErrorAs(err, &nf)
	s.Equal("missing", nf.ID)

	s.Equal(before, s.repo.Items())
	docs, _ := s.store.List(s.ctx, "entrenadores")
	s.Len(docs, 1)
}

func (s *TrainerRepositorySuite) TestDeleteUnknownIDIsNoop() {
	e, _ := s.repo.Create(s.ctx, domain.Trainer{Name: "Ash"})

	s.NoError(s.repo.Delete(s.ctx, "missing"))
	s.Equal([]domain.Entry[domain.Trainer]{e}, s.repo.Items())
}

func (s *TrainerRepositorySuite) TestLoadIsIdempotent() {
	for _, n := range []string{"Ash", "Misty"} {
		_, err := s.store.Add(s.ctx, "entrenadores", docstore.Fields{"nombre": n, "edad": 10, "region": "Kanto"})
		s.Require().NoError(err)
	}

	first, err := s.repo.Load(s.ctx)
	s.Require().NoError(err)
	second, err := s.repo.Load(s.ctx)
	s.Require().NoError(err)

	s.Len(first, 2)
	s.Equal(first, second)
	s.Equal(second, s.repo.Items())
}

func (s *TrainerRepositorySuite) TestLoadDefaultsBadFields() {
	_, err := s.store.Add(s.ctx, "entrenadores", docstore.Fields{"nombre": 42, "edad": "ten"})
	s.Require().NoError(err)
	_, err = s.store.Add(s.ctx, "entrenadores", docstore.Fields{"nombre": "Ash", "edad": 10, "region": "Kanto"})
	s.Require().NoError(err)

	items, err := s.repo.Load(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(items, 2)
	s.Equal(domain.Trainer{Name: "Desconocido", Age: 0, Region: "Desconocida"}, items[0].Value)
	s.Equal(domain.Trainer{Name: "Ash", Age: 10, Region: "Kanto"}, items[1].Value)
}

func (s *TrainerRepositorySuite) TestLoadReplacesWholesale() {
	_, err := s.repo.Create(s.ctx, domain.Trainer{Name: "Ash"})
	s.Require().NoError(err)

	// another client removes everything behind our back
	other := NewCollectionRepository[domain.Trainer](s.store, schema.TrainerSchema{}, zerolog.Nop())
	_, err = other.Load(s.ctx)
	s.Require().NoError(err)
	for _, e := range other.Items() {
		s.Require().NoError(other.Delete(s.ctx, e.ID))
	}

	_, err = s.repo.Load(s.ctx)
	s.Require().NoError(err)
	s.Empty(s.repo.Items())
}

func (s *TrainerRepositorySuite) TestItemsReturnsCopy() {
	_, err := s.repo.Create(s.ctx, domain.Trainer{Name: "Ash"})
	s.Require().NoError(err)

	items := s.repo.Items()
	items[0].Value.Name = "Gary"

	s.Equal("Ash", s.repo.Items()[0].Value.Name)
}

func (s *TrainerRepositorySuite) TestMirrorKeepsUniqueIDsAcrossSequence() {
	var ids []string
	for i := 0; i < 5; i++ {
		e, err := s.repo.Create(s.ctx, domain.Trainer{Name: "T", Age: i})
		s.Require().NoError(err)
		ids = append(ids, e.ID)
	}
	s.Require().NoError(s.repo.Delete(s.ctx, ids[1]))
	_, err := s.repo.Update(s.ctx, ids[3], domain.Trainer{Name: "U", Age: 30})
	s.Require().NoError(err)
	s.Require().NoError(s.repo.Delete(s.ctx, ids[1]))
	e, err := s.repo.Create(s.ctx, domain.Trainer{Name: "V"})
	s.Require().NoError(err)

	items := s.repo.Items()
	got := make([]string, len(items))
	for i, it := range items {
		got[i] = it.ID
	}
	s.Equal([]string{ids[0], ids[2], ids[3], ids[4], e.ID}, got)
	s.Equal(30, items[2].Value.Age)
}

func (s *TrainerRepositorySuite) TestAsyncOperations() {
	created, err := s.repo.CreateAsync(s.ctx, domain.Trainer{Name: "Ash", Age: 10, Region: "Kanto"}).Await(s.ctx)
	s.Require().NoError(err)

	_, err = s.repo.UpdateAsync(s.ctx, created.ID, domain.Trainer{Name: "Ash", Age: 11, Region: "Kanto"}).Await(s.ctx)
	s.Require().NoError(err)

	items, err := s.repo.LoadAsync(s.ctx).Await(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(items, 1)
	s.Equal(11, items[0].Value.Age)

	_, err = s.repo.DeleteAsync(s.ctx, created.ID).Await(s.ctx)
	s.Require().NoError(err)
	s.Empty(s.repo.Items())

	_, err = s.repo.UpdateAsync(s.ctx, created.ID, domain.Trainer{}).Await(s.ctx)
	s.ErrorIs(err, domain.ErrNotFound)
}

func TestTrainerRepositorySuite(t *testing.T) {
	suite.Run(t, new(TrainerRepositorySuite))
}

func newMockedBattles(t *testing.T) (*mockStore, *CollectionRepository[domain.Battle]) {
	t.Helper()
	store := new(mockStore)
	repo := NewCollectionRepository[domain.Battle](store, schema.BattleSchema{}, zerolog.Nop())

	store.On("List", mock.Anything, "batallas").Return([]docstore.Document{
		{ID: "b1", Fields: docstore.Fields{"entrenador1": "Ash", "entrenador2": "Gary", "ganador": "Ash"}},
		{ID: "b2", Fields: docstore.Fields{"entrenador1": "Misty", "entrenador2": "Brock", "ganador": "Indefinido"}},
	}, nil).Once()
	_, err := repo.Load(context.Background())
	require.NoError(t, err)
	return store, repo
}

func TestLoadFailureKeepsSnapshot(t *testing.T) {
	store, repo := newMockedBattles(t)
	before := repo.Items()

	store.On("List", mock.Anything, "batallas").Return(nil, errStoreDown).Once()
	_, err := repo.Load(context.Background())

	assert.ErrorIs(t, err, domain.ErrTransport)
	assert.ErrorIs(t, err, errStoreDown)
	assert.Equal(t, before, repo.Items())
	store.AssertExpectations(t)
}

func TestCreateFailureKeepsSnapshot(t *testing.T) {
	store, repo := newMockedBattles(t)
	before := repo.Items()

	store.On("Add", mock.Anything, "batallas", mock.Anything).Return("", errStoreDown).Once()
	_, err := repo.Create(context.Background(), domain.Battle{Participant1: "A", Participant2: "B", Outcome: "A"})

	assert.ErrorIs(t, err, domain.ErrTransport)
	assert.Equal(t, before, repo.Items())
}

func TestUpdateFailureKeepsSnapshot(t *testing.T) {
	store, repo := newMockedBattles(t)
	before := repo.Items()

	store.On("Set", mock.Anything, "batallas", "b2", mock.Anything).Return(errStoreDown).Once()
	_, err := repo.Update(context.Background(), "b2", domain.Battle{Participant1: "Misty", Participant2: "Brock", Outcome: "Misty"})

	assert.ErrorIs(t, err, domain.ErrTransport)
	assert.Equal(t, before, repo.Items())
}

func TestUpdateWritesEncodedFields(t *testing.T) {
	store, repo := newMockedBattles(t)

	want := docstore.Fields{"entrenador1": "Misty", "entrenador2": "Brock", "ganador": "Brock"}
	store.On("Set", mock.Anything, "batallas", "b2", want).Return(nil).Once()

	_, err := repo.Update(context.Background(), "b2", domain.Battle{Participant1: "Misty", Participant2: "Brock", Outcome: "Brock"})
	require.NoError(t, err)
	assert.Equal(t, "Brock", repo.Items()[1].Value.Outcome)
	store.AssertExpectations(t)
}

func TestDeleteFailure(t *testing.T) {
	store, repo := newMockedBattles(t)
	before := repo.Items()

	store.On("Delete", mock.Anything, "batallas", "b1").Return(errStoreDown).Once()
	err := repo.Delete(context.Background(), "b1")
	assert.ErrorIs(t, err, domain.ErrTransport)
	assert.Equal(t, before, repo.Items())

	// unknown ids swallow the remote failure
	store.On("Delete", mock.Anything, "batallas", "zzz").Return(errStoreDown).Once()
	assert.NoError(t, repo.Delete(context.Background(), "zzz"))
	assert.Equal(t, before, repo.Items())
}

func TestLoadSkipsDuplicateIDs(t *testing.T) {
	store := new(mockStore)
	repo := NewCollectionRepository[domain.Battle](store, schema.BattleSchema{}, zerolog.Nop())
	store.On("List", mock.Anything, "batallas").Return([]docstore.Document{
		{ID: "b1", Fields: docstore.Fields{"ganador": "Ash"}},
		{ID: "b1", Fields: docstore.Fields{"ganador": "Gary"}},
	}, nil)

	items, err := repo.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Ash", items[0].Value.Outcome)
}

func TestFutureAwaitHonoursContext(t *testing.T) {
	release := make(chan struct{})
	f := Go(context.Background(), func(ctx context.Context) (int, error) {
		<-release
		return 7, nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := f.Await(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	close(release)
	v, err := f.Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, v)
}

func TestFuturePropagatesError(t *testing.T) {
	f := Go(context.Background(), func(ctx context.Context) (string, error) {
		return "", errStoreDown
	})
	<-f.Done()

	_, err := f.Await(context.Background())
	assert.ErrorIs(t, err, errStoreDown)
}
