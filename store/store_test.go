package store_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/go-recordstore/recordstore/store"
)

func newStore(t *testing.T, initialCapacity int) (*store.RecordsStore, string) {
	path := filepath.Join(t.TempDir(), "records.db")
	s, err := store.Create(path, initialCapacity)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, path
}

func TestInsertReadRoundTrip(t *testing.T) {
	s, _ := newStore(t, 8)

	require.NoError(t, s.Insert("alpha", []byte("hello world")))

	rec, err := s.Read("alpha")
	require.NoError(t, err)
	require.Equal(t, "hello world", string(rec.Bytes))
	require.True(t, s.Exists("alpha"))
	require.Equal(t, 1, s.Size())
}

func TestInsertDuplicateKeyFails(t *testing.T) {
	s, _ := newStore(t, 8)

	require.NoError(t, s.Insert("alpha", []byte("v1")))
	err := s.Insert("alpha", []byte("v2"))
	require.ErrorIs(t, err, store.ErrKeyExists)
}

func TestInsertEmptyPayloadFails(t *testing.T) {
	s, _ := newStore(t, 8)

	err := s.Insert("alpha", []byte{})
	require.ErrorIs(t, err, store.ErrEmptyPayload)
	require.Equal(t, 0, s.Size())
	require.False(t, s.Exists("alpha"))
}

func TestUpdateInPlaceToEmptyPayloadSucceeds(t *testing.T) {
	s, _ := newStore(t, 8)

	require.NoError(t, s.Insert("alpha", []byte("hello")))
	require.NoError(t, s.Update("alpha", []byte{}))

	rec, err := s.Read("alpha")
	require.NoError(t, err)
	require.Empty(t, rec.Bytes)
}

func TestReadMissingKeyFails(t *testing.T) {
	s, _ := newStore(t, 8)

	_, err := s.Read("nope")
	require.ErrorIs(t, err, store.ErrKeyNotFound)
}

func TestUpdateInPlaceWhenSmaller(t *testing.T) {
	s, _ := newStore(t, 8)

	require.NoError(t, s.Insert("alpha", []byte("0123456789")))
	require.NoError(t, s.Update("alpha", []byte("short")))

	rec, err := s.Read("alpha")
	require.NoError(t, err)
	require.Equal(t, "short", string(rec.Bytes))
	require.Equal(t, 1, s.Size())
}

func TestUpdateGrowingRelocates(t *testing.T) {
	s, _ := newStore(t, 8)

	require.NoError(t, s.Insert("alpha", []byte("ab")))
	require.NoError(t, s.Insert("beta", []byte("cd")))

	bigger := make([]byte, 256)
	for i := range bigger {
		bigger[i] = byte(i)
	}
	require.NoError(t, s.Update("alpha", bigger))

	rec, err := s.Read("alpha")
	require.NoError(t, err)
	require.Equal(t, bigger, rec.Bytes)

	rec2, err := s.Read("beta")
	require.NoError(t, err)
	require.Equal(t, "cd", string(rec2.Bytes))
	require.Equal(t, 2, s.Size())
}

func TestDeleteThenReinsert(t *testing.T) {
	s, _ := newStore(t, 8)

	require.NoError(t, s.Insert("alpha", []byte("a")))
	require.NoError(t, s.Insert("beta", []byte("b")))
	require.NoError(t, s.Insert("gamma", []byte("c")))

	require.NoError(t, s.Delete("beta"))
	require.False(t, s.Exists("beta"))
	require.Equal(t, 2, s.Size())

	require.NoError(t, s.Insert("delta", []byte("d")))
	require.Equal(t, 3, s.Size())

	for _, kv := range []struct{ key, want string }{
		{"alpha", "a"}, {"gamma", "c"}, {"delta", "d"},
	} {
		rec, err := s.Read(kv.key)
		require.NoError(t, err)
		require.Equal(t, kv.want, string(rec.Bytes))
	}
}

func TestDeleteLastKeyShrinksFile(t *testing.T) {
	s, path := newStore(t, 8)

	emptyInfo, err := os.Stat(path)
	require.NoError(t, err)

	require.NoError(t, s.Insert("only", []byte("payload")))
	grownInfo, err := os.Stat(path)
	require.NoError(t, err)
	require.Greater(t, grownInfo.Size(), emptyInfo.Size())

	require.NoError(t, s.Delete("only"))
	require.Equal(t, 0, s.Size())

	shrunkInfo, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, emptyInfo.Size(), shrunkInfo.Size())

	_, err = s.Read("only")
	require.ErrorIs(t, err, store.ErrKeyNotFound)
}

func TestDeleteMissingKeyFails(t *testing.T) {
	s, _ := newStore(t, 8)
	require.ErrorIs(t, s.Delete("nope"), store.ErrKeyNotFound)
}

func TestDeleteMiddleCoalescesIntoPredecessor(t *testing.T) {
	s, _ := newStore(t, 4)

	require.NoError(t, s.Insert("k1", []byte{1}))
	require.NoError(t, s.Insert("k2", []byte{2, 2}))
	require.NoError(t, s.Insert("k3", []byte{3, 3, 3}))

	require.NoError(t, s.Delete("k2"))

	rec1, err := s.Read("k1")
	require.NoError(t, err)
	require.Equal(t, []byte{1}, rec1.Bytes)

	rec3, err := s.Read("k3")
	require.NoError(t, err)
	require.Equal(t, []byte{3, 3, 3}, rec3.Bytes)

	require.False(t, s.Exists("k2"))
	require.Equal(t, 2, s.Size())

	// k1's record absorbed k2's freed capacity; a payload up to the
	// combined size should now fit in place without relocating.
	require.NoError(t, s.Update("k1", []byte{9, 9, 9}))
	rec1Again, err := s.Read("k1")
	require.NoError(t, err)
	require.Equal(t, []byte{9, 9, 9}, rec1Again.Bytes)
}

func TestDeleteFirstShiftsSuccessor(t *testing.T) {
	s, _ := newStore(t, 4)

	require.NoError(t, s.Insert("k1", []byte{1}))
	require.NoError(t, s.Insert("k2", []byte{2, 2}))
	require.NoError(t, s.Insert("k3", []byte{3, 3, 3}))

	require.NoError(t, s.Delete("k1"))

	require.False(t, s.Exists("k1"))
	require.Equal(t, 2, s.Size())

	rec2, err := s.Read("k2")
	require.NoError(t, err)
	require.Equal(t, []byte{2, 2}, rec2.Bytes)

	rec3, err := s.Read("k3")
	require.NoError(t, err)
	require.Equal(t, []byte{3, 3, 3}, rec3.Bytes)

	// k2's record absorbed k1's freed leading capacity.
	require.NoError(t, s.Update("k2", []byte{8, 8, 8}))
	rec2Again, err := s.Read("k2")
	require.NoError(t, err)
	require.Equal(t, []byte{8, 8, 8}, rec2Again.Bytes)
}

func TestIndexGrowthRelocatesData(t *testing.T) {
	// initialCapacity of 1 forces ensureIndexSpace to relocate the first
	// data record to end-of-file once a second key is inserted.
	s, _ := newStore(t, 1)

	require.NoError(t, s.Insert("alpha", []byte("first record")))
	require.NoError(t, s.Insert("beta", []byte("second record")))
	require.NoError(t, s.Insert("gamma", []byte("third record")))

	for _, kv := range []struct{ key, want string }{
		{"alpha", "first record"}, {"beta", "second record"}, {"gamma", "third record"},
	} {
		rec, err := s.Read(kv.key)
		require.NoError(t, err)
		require.Equal(t, kv.want, string(rec.Bytes))
	}
	require.Equal(t, 3, s.Size())
}

func TestInsertKeyTooLargeLeavesStoreUntouched(t *testing.T) {
	s, _ := newStore(t, 8)

	longKey := make([]byte, 100)
	for i := range longKey {
		longKey[i] = 'a'
	}

	err := s.Insert(string(longKey), []byte("x"))
	require.ErrorIs(t, err, store.ErrKeyTooLarge)
	require.Equal(t, 0, s.Size())
}

func TestCreateExistingPathFails(t *testing.T) {
	_, path := newStore(t, 8)

	_, err := store.Create(path, 8)
	require.ErrorIs(t, err, store.ErrStoreExists)
}

func TestOpenMissingPathFails(t *testing.T) {
	_, err := store.Open(filepath.Join(t.TempDir(), "missing.db"), store.ModeReadWrite)
	require.ErrorIs(t, err, store.ErrStoreNotFound)
}

func TestReopenPreservesData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.db")

	s1, err := store.Create(path, 8)
	require.NoError(t, err)
	require.NoError(t, s1.Insert("alpha", []byte("persisted")))
	require.NoError(t, s1.Close())

	s2, err := store.Open(path, store.ModeReadWrite)
	require.NoError(t, err)
	defer s2.Close()

	rec, err := s2.Read("alpha")
	require.NoError(t, err)
	require.Equal(t, "persisted", string(rec.Bytes))
}

func TestKeysSnapshot(t *testing.T) {
	s, _ := newStore(t, 8)

	require.NoError(t, s.Insert("alpha", []byte("a")))
	require.NoError(t, s.Insert("beta", []byte("b")))

	keys := s.Keys()
	require.ElementsMatch(t, []string{"alpha", "beta"}, keys)
}
