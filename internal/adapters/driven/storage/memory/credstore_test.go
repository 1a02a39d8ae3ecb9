package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orderlens/orderlens/internal/core/domain"
)

func TestCredentialsStore_GetMissing(t *testing.T) {
	store := NewCredentialsStore()

	_, err := store.GetToken(context.Background(), "google")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCredentialsStore_SaveAndGet(t *testing.T) {
	store := NewCredentialsStore()

	require.NoError(t, store.SaveToken(context.Background(), "google", []byte(`{"access_token":"abc"}`)))

	got, err := store.GetToken(context.Background(), "google")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"access_token":"abc"}`), got)
}

func TestCredentialsStore_ReturnsCopy(t *testing.T) {
	store := NewCredentialsStore()

	require.NoError(t, store.SaveToken(context.Background(), "google", []byte("original")))

	got, err := store.GetToken(context.Background(), "google")
	require.NoError(t, err)
	got[0] = 'X'

	again, err := store.GetToken(context.Background(), "google")
	require.NoError(t, err)
	assert.Equal(t, []byte("original"), again)
}

func TestCredentialsStore_Delete(t *testing.T) {
	store := NewCredentialsStore()

	require.NoError(t, store.SaveToken(context.Background(), "google", []byte("tok")))
	require.NoError(t, store.DeleteToken(context.Background(), "google"))

	_, err := store.GetToken(context.Background(), "google")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// Deleting a missing provider is not an error.
	assert.NoError(t, store.DeleteToken(context.Background(), "missing"))
}

func TestCredentialsStore_ProvidersAreIsolated(t *testing.T) {
	store := NewCredentialsStore()

	require.NoError(t, store.SaveToken(context.Background(), "google", []byte("g")))
	require.NoError(t, store.SaveToken(context.Background(), "outlook", []byte("o")))

	got, err := store.GetToken(context.Background(), "google")
	require.NoError(t, err)
	assert.Equal(t, []byte("g"), got)

	got, err = store.GetToken(context.Background(), "outlook")
	require.NoError(t, err)
	assert.Equal(t, []byte("o"), got)
}
