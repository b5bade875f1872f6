package storage

import (
	"chat-relay/domain"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSessionStore(t *testing.T) {
	req := require.New(t)
	store, err := NewLocalStore(t.TempDir())
	req.NoError(err)
	first := NewSessionStore(store, "tab-1")
	second := NewSessionStore(store, "tab-2")

	// Given nobody logged in yet
	_, ok, err := first.Load()
	req.NoError(err)
	req.False(ok)

	// When the first instance logs in
	req.NoError(first.Save("SAMUEL"))

	// Then only that instance remembers it
	identity, ok, err := first.Load()
	req.NoError(err)
	req.True(ok)
	req.Equal(domain.Identity("SAMUEL"), identity)
	_, ok, err = second.Load()
	req.NoError(err)
	req.False(ok)

	// When it logs out
	req.NoError(first.Clear())
	_, ok, err = first.Load()
	req.NoError(err)
	req.False(ok)
}
