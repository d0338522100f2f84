package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiskStoreRoundTrip(t *testing.T) {
	store, err := NewDiskStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Put("logos/abc/logo.svg", []byte("<svg/>")))
	assert.True(t, store.Exists("logos/abc/logo.svg"))

	data, err := store.Get("logos/abc/logo.svg")
	require.NoError(t, err)
	assert.Equal(t, []byte("<svg/>"), data)

	require.NoError(t, store.Delete("logos/abc/logo.svg"))
	assert.False(t, store.Exists("logos/abc/logo.svg"))
}

func TestDiskStoreDeleteMissingKeyIsNoop(t *testing.T) {
	store, err := NewDiskStore(t.TempDir())
	require.NoError(t, err)

	assert.NoError(t, store.Delete("never/written.svg"))
}

func TestDiskStoreRejectsTraversal(t *testing.T) {
	store, err := NewDiskStore(t.TempDir())
	require.NoError(t, err)

	err = store.Put("../outside.txt", []byte("x"))
	require.Error(t, err)

	assert.False(t, store.Exists(""))
}
