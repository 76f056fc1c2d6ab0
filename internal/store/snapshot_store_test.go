package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumipallolabs/walletmap/internal/model"
)

func openStore(t *testing.T) *SnapshotStore {
	t.Helper()
	db, err := NewPebbleDB(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	s := NewSnapshotStore(db)
	s.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }
	return s
}

func sampleTree() *model.Node {
	return &model.Node{Type: model.TypeRoot, Children: []*model.Node{
		{Type: model.TypeChain, Name: "Ethereum", Children: []*model.Node{
			{Type: model.TypeLeaf, Value: 40, Chain: "Ethereum", Address: "aaa", LogoURL: "eth.png"},
		}},
		{Type: model.TypeLeaf, Value: 2, Chain: "Polygon", Address: "bbb"},
	}}
}

func TestSaveAndGet(t *testing.T) {
	s := openStore(t)

	meta, err := s.Save("main", sampleTree())
	require.NoError(t, err)
	assert.Equal(t, Meta{Name: "main", UpdatedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC), Leaves: 2, Total: 42}, meta)

	got, err := s.Get("main")
	require.NoError(t, err)
	assert.Equal(t, sampleTree(), got)
}

func TestSaveReplaces(t *testing.T) {
	s := openStore(t)
	_, err := s.Save("main", sampleTree())
	require.NoError(t, err)

	replacement := &model.Node{Type: model.TypeRoot, Children: []*model.Node{{Type: model.TypeLeaf, Value: 1}}}
	_, err = s.Save("main", replacement)
	require.NoError(t, err)

	got, err := s.Get("main")
	require.NoError(t, err)
	assert.Len(t, got.Children, 1)
	assert.Equal(t, 1.0, got.TotalValue())
}

func TestGetMissing(t *testing.T) {
	s := openStore(t)

	_, err := s.Get("nothing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.Delete("nothing"), ErrNotFound)
}

func TestListSortedByName(t *testing.T) {
	s := openStore(t)
	for _, name := range []string{"zeta", "alpha", "m.2024-05"} {
		_, err := s.Save(name, sampleTree())
		require.NoError(t, err)
	}

	metas, err := s.List()
	require.NoError(t, err)

	var names []string
	for _, m := range metas {
		names = append(names, m.Name)
	}
	assert.Equal(t, []string{"alpha", "m.2024-05", "zeta"}, names)
}

func TestListEmpty(t *testing.T) {
	metas, err := openStore(t).List()
	require.NoError(t, err)
	assert.Empty(t, metas)
	assert.NotNil(t, metas)
}

func TestDelete(t *testing.T) {
	s := openStore(t)
	_, err := s.Save("gone", sampleTree())
	require.NoError(t, err)

	require.NoError(t, s.Delete("gone"))

	_, err = s.Get("gone")
	assert.ErrorIs(t, err, ErrNotFound)
	metas, err := s.List()
	require.NoError(t, err)
	assert.Empty(t, metas)
}

func TestValidateName(t *testing.T) {
	for _, name := range []string{"a", "main", "wallet_2024-05.v1"} {
		assert.NoError(t, ValidateName(name), name)
	}
	for _, name := range []string{"", "has space", "../etc", "x/y", string(make([]byte, 65))} {
		assert.Error(t, ValidateName(name), name)
	}

	_, err := openStore(t).Save("bad name", sampleTree())
	assert.Error(t, err)
}

func TestSaveNilTree(t *testing.T) {
	_, err := openStore(t).Save("empty", nil)
	assert.Error(t, err)
}

func TestPrefixUpperBound(t *testing.T) {
	assert.Equal(t, []byte("snp;"), prefixUpperBound([]byte("snp:")))
	assert.Equal(t, []byte{0x02}, prefixUpperBound([]byte{0x01, 0xff}))
	assert.Nil(t, prefixUpperBound([]byte{0xff}))
	assert.Nil(t, prefixUpperBound(nil))
}
