package upload

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(zap.NewNop().Sugar(), t.TempDir())
	require.NoError(t, err)
	return store
}

func TestStoreSaveAndStat(t *testing.T) {
	store := newTestStore(t)

	written, err := store.Save("a/b.jpg", strings.NewReader("hello"), 10)
	require.NoError(t, err)
	assert.Equal(t, int64(5), written)

	size, err := store.Stat("a/b.jpg")
	require.NoError(t, err)
	assert.Equal(t, int64(5), size)
}

func TestStoreRejectsOversizedBody(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Save("big.bin", strings.NewReader("0123456789"), 5)
	assert.ErrorIs(t, err, ErrTooLarge)

	// the partial file must not survive
	_, err = store.Stat("big.bin")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStoreRejectsTraversal(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Save("../escape.bin", strings.NewReader("x"), 10)
	assert.ErrorIs(t, err, ErrInvalidPath)

	_, err = store.Save("/abs.bin", strings.NewReader("x"), 10)
	assert.ErrorIs(t, err, ErrInvalidPath)

	_, err = store.Stat("")
	assert.ErrorIs(t, err, ErrInvalidPath)
}

func TestStoreStatMissing(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Stat("nope.jpg")
	assert.ErrorIs(t, err, ErrNotFound)
}
