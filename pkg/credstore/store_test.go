package credstore_test

import (
	"context"
	"testing"

	"github.com/aussiebroadwan/lobby/pkg/credstore"
	"github.com/aussiebroadwan/lobby/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

func TestMemory(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m := credstore.NewMemory()

	_, ok, err := m.Get(ctx, credstore.KeyToken)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, m.Set(ctx, credstore.KeyToken, "a"))
	require.NoError(t, m.Set(ctx, credstore.KeyToken, "b"))

	v, ok, err := m.Get(ctx, credstore.KeyToken)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "b", v)

	require.NoError(t, m.Remove(ctx, credstore.KeyToken))
	require.NoError(t, m.Remove(ctx, credstore.KeyToken))
	require.Zero(t, m.Len())
}

func TestSealed(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	sealer, err := cryptox.NewSealer([]byte("master"))
	require.NoError(t, err)

	inner := credstore.NewMemory()
	s := credstore.NewSealed(inner, sealer)

	require.NoError(t, s.Set(ctx, credstore.KeyToken, "tok"))

	raw, ok, err := inner.Get(ctx, credstore.KeyToken)
	require.NoError(t, err)
	require.True(t, ok)
	require.NotEqual(t, "tok", raw)

	v, ok, err := s.Get(ctx, credstore.KeyToken)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "tok", v)

	t.Run("value moved between keys is rejected", func(t *testing.T) {
		require.NoError(t, inner.Set(ctx, credstore.KeyUser, raw))
		_, _, err := s.Get(ctx, credstore.KeyUser)
		require.Error(t, err)
	})

	t.Run("plaintext left by an unsealed store is rejected", func(t *testing.T) {
		require.NoError(t, inner.Set(ctx, "legacy", "not base64!"))
		_, _, err := s.Get(ctx, "legacy")
		require.Error(t, err)
	})

	t.Run("absent", func(t *testing.T) {
		require.NoError(t, s.Remove(ctx, credstore.KeyToken))
		_, ok, err := s.Get(ctx, credstore.KeyToken)
		require.NoError(t, err)
		require.False(t, ok)
	})
}
