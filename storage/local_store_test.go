package storage

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLocalStore_Set_Get_Remove(t *testing.T) {
	req := require.New(t)
	store, err := NewLocalStore(t.TempDir())
	req.NoError(err)

	_, found, err := store.Get("messages")
	req.NoError(err)
	req.False(found)

	req.NoError(store.Set("messages", []byte(`[]`)))
	value, found, err := store.Get("messages")
	req.NoError(err)
	req.True(found)
	req.Equal(`[]`, string(value))

	req.NoError(store.Remove("messages"))
	req.NoError(store.Remove("messages"))
	_, found, err = store.Get("messages")
	req.NoError(err)
	req.False(found)
}

func TestLocalStore_Leaves_No_Temp_File(t *testing.T) {
	req := require.New(t)
	dir := t.TempDir()
	store, err := NewLocalStore(dir)
	req.NoError(err)

	req.NoError(store.Set("messages", []byte(`[1]`)))
	req.NoError(store.Set("messages", []byte(`[2]`)))

	entries, err := os.ReadDir(dir)
	req.NoError(err)
	req.Len(entries, 1)
	req.Equal("messages.json", entries[0].Name())
}

func TestLocalStore_WroteLast(t *testing.T) {
	req := require.New(t)
	dir := t.TempDir()
	mine, err := NewLocalStore(dir)
	req.NoError(err)
	sibling, err := NewLocalStore(dir)
	req.NoError(err)

	req.NoError(mine.Set("messages", []byte(`[1]`)))
	req.True(mine.WroteLast("messages", []byte(`[1]`)))
	req.False(mine.WroteLast("messages", []byte(`[2]`)))
	req.False(sibling.WroteLast("messages", []byte(`[1]`)))
}

func TestKeyOf(t *testing.T) {
	req := require.New(t)

	key, ok := keyOf("/tmp/store/messages.json")
	req.True(ok)
	req.Equal("messages", key)

	_, ok = keyOf("/tmp/store/.messages-1234.tmp")
	req.False(ok)
	_, ok = keyOf("/tmp/store/notes.txt")
	req.False(ok)
}
