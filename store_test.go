package text2img_gan

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func checkStore(t *testing.T, store Store) {
	t.Helper()
	_, err := store.Load(GeneratorArtifact)
	assert.ErrorIs(t, err, ErrPersistence)

	require.NoError(t, store.Save(GeneratorArtifact, []byte{1, 2, 3}))
	data, err := store.Load(GeneratorArtifact)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, data)

	require.NoError(t, store.Save(GeneratorArtifact, []byte{4}))
	data, err = store.Load(GeneratorArtifact)
	require.NoError(t, err)
	assert.Equal(t, []byte{4}, data)

	assert.ErrorIs(t, store.Save("", []byte{1}), ErrPersistence)
	assert.ErrorIs(t, store.Save("../escape", []byte{1}), ErrPersistence)
	_, err = store.Load("../escape")
	assert.ErrorIs(t, err, ErrPersistence)
	_, err = store.Load("")
	assert.ErrorIs(t, err, ErrPersistence)
}

func TestMemStore(t *testing.T) {
	store := NewMemStore()
	checkStore(t, store)

	data, err := store.Load(GeneratorArtifact)
	require.NoError(t, err)
	data[0] = 42
	again, err := store.Load(GeneratorArtifact)
	require.NoError(t, err)
	assert.Equal(t, []byte{4}, again)
	assert.NoError(t, store.Close())
}

func TestDirStore(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "models")
	store, err := NewDirStore(dir)
	require.NoError(t, err)
	checkStore(t, store)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, GeneratorArtifact+".gob", entries[0].Name())

	_, err = store.Load(DiscriminatorArtifact)
	assert.ErrorIs(t, err, ErrPersistence)
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestBadgerStore(t *testing.T) {
	store, err := NewBadgerStore("")
	require.NoError(t, err)
	defer store.Close()
	checkStore(t, store)

	_, err = store.Load(DiscriminatorArtifact)
	assert.ErrorIs(t, err, ErrPersistence)
	assert.ErrorIs(t, err, badger.ErrKeyNotFound)
}

func TestBadgerStoreOnDisk(t *testing.T) {
	dir := t.TempDir()
	store, err := NewBadgerStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Save(DiscriminatorArtifact, []byte("weights")))
	require.NoError(t, store.Close())

	reopened, err := NewBadgerStore(dir)
	require.NoError(t, err)
	defer reopened.Close()
	data, err := reopened.Load(DiscriminatorArtifact)
	require.NoError(t, err)
	assert.Equal(t, []byte("weights"), data)
}
